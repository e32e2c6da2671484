package storage

import (
	"context"
	"fmt"
	"time"

	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/akhenakh/gridcube/metrics"
	"github.com/akhenakh/gridcube/payload"
)

type SinkConfig struct {
	// ZeroFillLatest writes every known measure on a latest sample, the ones
	// not carried by the payload set to 0. Off, only the payload's measures
	// are written.
	ZeroFillLatest bool
}

// Sink persists decoded samples to the time series store, the latest sample
// store and the device info store. Store errors are returned, fan out errors
// are only logged.
type Sink struct {
	logger  log.Logger
	ts      TimeSeriesWriter
	latest  LatestWriter
	devices DeviceInfoWriter
	fanout  Publisher
	cfg     SinkConfig

	now func() time.Time
}

func NewSink(logger log.Logger, ts TimeSeriesWriter, latest LatestWriter, devices DeviceInfoWriter, cfg SinkConfig) *Sink {
	return &Sink{
		logger:  log.With(logger, "component", "sink"),
		ts:      ts,
		latest:  latest,
		devices: devices,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WithFanout sets an optional publisher receiving every written sample.
func (s *Sink) WithFanout(p Publisher) *Sink {
	s.fanout = p
	return s
}

// Write persists sample, writes are sequential and not transactional.
func (s *Sink) Write(ctx context.Context, sample *payload.Sample) error {
	if err := s.write(ctx, sample); err != nil {
		return err
	}

	if s.fanout != nil {
		if err := s.fanout.Publish(ctx, sample); err != nil {
			countInsert(metrics.StoreFanout, err)
			level.Warn(s.logger).Log("msg", "can't publish sample", "device_id", sample.DeviceID, "error", err)
		} else {
			countInsert(metrics.StoreFanout, nil)
		}
	}
	return nil
}

func (s *Sink) write(ctx context.Context, sample *payload.Sample) error {
	if ms := sample.Measures(); len(ms) > 0 {
		t := sample.Time()
		err := s.ts.WritePoint(ctx, Point{DeviceID: sample.DeviceID, Time: t, Measures: ms})
		countInsert(metrics.StoreTimeSeries, err)
		if err != nil {
			return fmt.Errorf("time series write: %w", err)
		}

		err = s.latest.PutLatest(ctx, s.latestSample(sample.DeviceID, t, ms))
		countInsert(metrics.StoreLatest, err)
		if err != nil {
			return fmt.Errorf("latest sample write: %w", err)
		}

		return s.touch(ctx, sample.DeviceID, nil)
	}

	if name, value, ok := sample.Attribute(); ok {
		return s.touch(ctx, sample.DeviceID, map[string]string{name: value})
	}

	return nil
}

func (s *Sink) touch(ctx context.Context, deviceID string, attrs map[string]string) error {
	err := s.devices.TouchDevice(ctx, deviceID, s.now().UTC(), attrs)
	countInsert(metrics.StoreDeviceInfo, err)
	if err != nil {
		return fmt.Errorf("device info update: %w", err)
	}
	return nil
}

func (s *Sink) latestSample(deviceID string, t time.Time, ms []payload.Measure) LatestSample {
	ls := LatestSample{
		DeviceID: deviceID,
		Time:     t,
		Measures: make(map[string]int64, len(payload.AllMeasures)),
	}
	if s.cfg.ZeroFillLatest {
		for _, name := range payload.AllMeasures {
			ls.Measures[name] = 0
		}
	}
	for _, m := range ms {
		ls.Measures[m.Name] = m.Value
	}
	return ls
}

func countInsert(store string, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	metrics.InsertCounter.WithLabelValues(store, result).Inc()
}
