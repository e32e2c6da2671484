// Package iotwireless sends acknowledgments through AWS IoT Wireless to
// Sidewalk devices.
package iotwireless

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotwireless"
	"github.com/aws/aws-sdk-go-v2/service/iotwireless/types"

	"github.com/akhenakh/gridcube/ack"
)

const (
	// DefaultTransmitMode is the transmit mode every ack is sent with.
	DefaultTransmitMode = 0

	DefaultMessageType = "CUSTOM_COMMAND_ID_NOTIFY"
)

// API is the part of the IoT Wireless client used here.
type API interface {
	SendDataToWirelessDevice(ctx context.Context, params *iotwireless.SendDataToWirelessDeviceInput, optFns ...func(*iotwireless.Options)) (*iotwireless.SendDataToWirelessDeviceOutput, error)
}

type Config struct {
	TransmitMode int32
	// Sidewalk message type, empty to send without Sidewalk metadata
	MessageType string
}

type Transmitter struct {
	client API
	cfg    Config
}

func NewTransmitter(client API, cfg Config) *Transmitter {
	return &Transmitter{client: client, cfg: cfg}
}

func (t *Transmitter) Transmit(ctx context.Context, msg *ack.Message) error {
	in := &iotwireless.SendDataToWirelessDeviceInput{
		Id:           aws.String(msg.DeviceID),
		PayloadData:  aws.String(msg.PayloadData),
		TransmitMode: aws.Int32(t.cfg.TransmitMode),
	}
	if t.cfg.MessageType != "" {
		in.WirelessMetadata = &types.WirelessMetadata{
			Sidewalk: &types.SidewalkSendDataToDevice{
				MessageType: types.MessageType(t.cfg.MessageType),
				Seq:         aws.Int32(int32(msg.MessageNumber)),
			},
		}
	}

	if _, err := t.client.SendDataToWirelessDevice(ctx, in); err != nil {
		return fmt.Errorf("failed to send data to wireless device %s: %w", msg.DeviceID, err)
	}
	return nil
}
