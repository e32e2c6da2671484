package ttn

import (
	"context"
	"testing"

	"github.com/TheThingsNetwork/ttn/core/types"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/gridcube/ack"
)

type fakePub struct {
	devID string
	dl    *types.DownlinkMessage
}

func (f *fakePub) Publish(devID string, dl *types.DownlinkMessage) error {
	f.devID = devID
	f.dl = dl
	return nil
}

func TestTransmit(t *testing.T) {
	pub := &fakePub{}
	tx := NewTransmitter(pub, "gridcube", 10)
	require.NoError(t, tx.Transmit(context.Background(), ack.NewMessage("dev1", 7, 3)))

	require.Equal(t, "dev1", pub.devID)
	require.Equal(t, []byte{13, 7, 3}, pub.dl.PayloadRaw)
	require.Equal(t, uint8(10), pub.dl.FPort)
	require.Equal(t, "gridcube", pub.dl.AppID)
}
