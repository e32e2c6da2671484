// Package ttn sends acknowledgments as The Things Network downlinks.
package ttn

import (
	"context"
	"fmt"

	"github.com/TheThingsNetwork/ttn/core/types"

	"github.com/akhenakh/gridcube/ack"
)

// Publisher is satisfied by the go-app-sdk ApplicationPubSub.
type Publisher interface {
	Publish(devID string, downlink *types.DownlinkMessage) error
}

type Transmitter struct {
	pub   Publisher
	appID string
	fPort uint8
}

func NewTransmitter(pub Publisher, appID string, fPort uint8) *Transmitter {
	return &Transmitter{pub: pub, appID: appID, fPort: fPort}
}

func (t *Transmitter) Transmit(ctx context.Context, msg *ack.Message) error {
	dl := &types.DownlinkMessage{
		AppID:      t.appID,
		DevID:      msg.DeviceID,
		FPort:      t.fPort,
		PayloadRaw: msg.Frame,
	}
	if err := t.pub.Publish(msg.DeviceID, dl); err != nil {
		return fmt.Errorf("failed to publish downlink to %s: %w", msg.DeviceID, err)
	}
	return nil
}
