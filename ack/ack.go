// Package ack builds and sends the 3 byte acknowledgment frame replied to a
// device after one of its uplinks has been handled.
package ack

import (
	"context"
	"encoding/base64"

	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/akhenakh/gridcube/codec"
	"github.com/akhenakh/gridcube/metrics"
)

// FrameMarker is the first byte of every acknowledgment.
const FrameMarker = 13

// Message is one acknowledgment ready to be transmitted.
type Message struct {
	DeviceID      string
	AckTag        uint8
	MessageNumber uint8
	Frame         []byte
	// PayloadData is Frame base64 encoded
	PayloadData string
}

// Transmitter delivers an acknowledgment to a device.
type Transmitter interface {
	Transmit(ctx context.Context, msg *Message) error
}

// Frame returns [13, ackTag, messageNumber].
func Frame(ackTag, messageNumber uint8) []byte {
	return codec.NewWriter(3).Uint8(FrameMarker).Uint8(ackTag).Uint8(messageNumber).Bytes()
}

func NewMessage(deviceID string, ackTag, messageNumber uint8) *Message {
	f := Frame(ackTag, messageNumber)
	return &Message{
		DeviceID:      deviceID,
		AckTag:        ackTag,
		MessageNumber: messageNumber,
		Frame:         f,
		PayloadData:   base64.StdEncoding.EncodeToString(f),
	}
}

type Sender struct {
	logger log.Logger
	tx     Transmitter
}

func NewSender(logger log.Logger, tx Transmitter) *Sender {
	return &Sender{
		logger: log.With(logger, "component", "ack"),
		tx:     tx,
	}
}

// Send transmits an ack, failures are logged and never returned: the data
// has already been stored when an ack is sent.
func (s *Sender) Send(ctx context.Context, deviceID string, ackTag, messageNumber uint8) {
	msg := NewMessage(deviceID, ackTag, messageNumber)
	if err := s.tx.Transmit(ctx, msg); err != nil {
		metrics.AckCounter.WithLabelValues(metrics.ResultFailure).Inc()
		level.Error(s.logger).Log(
			"msg", "can't send ack",
			"device_id", deviceID,
			"ack_tag", ackTag,
			"message_number", messageNumber,
			"error", err,
		)
		return
	}
	metrics.AckCounter.WithLabelValues(metrics.ResultSuccess).Inc()
	level.Debug(s.logger).Log("msg", "ack sent", "device_id", deviceID, "payload", msg.PayloadData)
}

// LogTransmitter only logs acks, used when no downlink path is configured.
type LogTransmitter struct {
	Logger log.Logger
}

func (t LogTransmitter) Transmit(ctx context.Context, msg *Message) error {
	level.Info(t.Logger).Log(
		"msg", "ack not transmitted, no downlink configured",
		"device_id", msg.DeviceID,
		"payload", msg.PayloadData,
	)
	return nil
}
