package storage

import (
	"context"
	"time"

	"github.com/akhenakh/gridcube/payload"
)

// Point is one time series write, every measure shares the device and time.
type Point struct {
	DeviceID string
	Time     time.Time
	Measures []payload.Measure
}

// LatestSample is the wide table record keyed by device and time.
type LatestSample struct {
	DeviceID string           `json:"deviceId"`
	Time     time.Time        `json:"-"`
	Measures map[string]int64 `json:"measures"`
}

// DeviceInfo is the per device metadata record, UpdatedAt is the last time
// any uplink touched it.
type DeviceInfo struct {
	DeviceID   string            `json:"deviceId"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type TimeSeriesWriter interface {
	WritePoint(ctx context.Context, p Point) error
}

type LatestWriter interface {
	PutLatest(ctx context.Context, s LatestSample) error
}

type DeviceInfoWriter interface {
	// TouchDevice sets updatedAt and merges attrs, attrs may be nil.
	TouchDevice(ctx context.Context, deviceID string, at time.Time, attrs map[string]string) error
}

// Publisher fans decoded samples out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, s *payload.Sample) error
}
