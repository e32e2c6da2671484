package gridcube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TheThingsNetwork/ttn/core/types"
	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/akhenakh/gridcube/metrics"
	"github.com/akhenakh/gridcube/payload"
)

// SampleWriter persists a decoded sample.
type SampleWriter interface {
	Write(ctx context.Context, s *payload.Sample) error
}

// Acker replies to a device, it never fails from the caller's point of view.
type Acker interface {
	Send(ctx context.Context, deviceID string, ackTag, messageNumber uint8)
}

type Server struct {
	appName string
	logger  log.Logger
	sink    SampleWriter
	acker   Acker
	config  Config
}

type Config struct {
	// Via labels uplinks received through HandleUplink
	Via string
}

func NewServer(appName string, logger log.Logger, sink SampleWriter, acker Acker, cfg Config) *Server {
	logger = log.With(logger, "component", "server")
	if cfg.Via == "" {
		cfg.Via = metrics.ReceivedViaLambda
	}
	return &Server{
		appName: appName,
		logger:  logger,
		sink:    sink,
		acker:   acker,
		config:  cfg,
	}
}

// HandleUplink is the gateway entry point, failures are reported in the
// Response and the returned error is always nil.
func (s *Server) HandleUplink(ctx context.Context, env Envelope) (Response, error) {
	return s.handle(ctx, s.config.Via, env), nil
}

func (s *Server) handle(ctx context.Context, via string, env Envelope) (resp Response) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HandleUplink")
	defer span.Finish()

	start := time.Now()
	defer func() {
		metrics.HandleDuration.Observe(time.Since(start).Seconds())
	}()

	defer func() {
		if r := recover(); r != nil {
			level.Error(s.logger).Log("msg", "panic recovered while handling uplink", "panic", r)
			metrics.ErrorCounter.Inc()
			ext.Error.Set(span, true)
			resp = FailureResponse(fmt.Errorf("internal error: %v", r))
		}
	}()

	metrics.MsgReceivedCounter.WithLabelValues(via).Inc()

	deviceID := env.Uplink.WirelessDeviceID
	span.SetTag("device_id", deviceID)

	buf, err := env.Payload()
	if err == nil {
		err = s.Route(ctx, deviceID, buf)
	}
	if err != nil {
		metrics.ErrorCounter.Inc()
		ext.Error.Set(span, true)
		level.Warn(s.logger).Log("msg", "can't process uplink", "device_id", deviceID, "error", err)
		return FailureResponse(err)
	}

	return SuccessResponse(deviceID)
}

// Route decodes buf, persists the sample then acknowledges it.
// Unknown payload types are ignored. Decode and store errors are returned
// and no ack is sent for them.
func (s *Server) Route(ctx context.Context, deviceID string, buf []byte) error {
	sample, err := payload.Decode(deviceID, buf)
	if errors.Is(err, payload.ErrUnknownType) {
		metrics.UnknownTypeCounter.Inc()
		level.Info(s.logger).Log("msg", "ignoring unknown payload type", "device_id", deviceID, "payload_type", buf[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}

	metrics.PayloadCounter.WithLabelValues(sample.Type.String()).Inc()
	level.Debug(s.logger).Log(
		"msg", "decoded uplink",
		"device_id", deviceID,
		"payload_type", sample.Type,
		"message_number", sample.MessageNumber,
	)

	if err := s.sink.Write(ctx, sample); err != nil {
		return err
	}

	s.acker.Send(ctx, deviceID, sample.AckTag(), sample.MessageNumber)
	return nil
}

// HandleMessage handles uplinks from TTN, the raw payload uses the same
// layout as the gateway's.
func (s *Server) HandleMessage(ctx context.Context, msg *types.UplinkMessage) {
	metrics.MsgReceivedCounter.WithLabelValues(metrics.ReceivedViaTTN).Inc()
	if len(msg.PayloadRaw) == 0 {
		level.Debug(s.logger).Log("msg", "received msg with empty payload", "device_id", msg.DevID)
		return
	}

	if err := s.Route(ctx, msg.DevID, msg.PayloadRaw); err != nil {
		metrics.ErrorCounter.Inc()
		level.Error(s.logger).Log("msg", "can't process TTN uplink", "device_id", msg.DevID, "error", err)
	}
}
