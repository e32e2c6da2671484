package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ViaLabel          = "via"
	ReceivedViaLambda = "lambda"
	ReceivedViaHTTP   = "http"
	ReceivedViaTTN    = "ttn"

	TypeLabel = "type"

	StoreLabel      = "store"
	StoreTimeSeries = "timeseries"
	StoreLatest     = "latest"
	StoreDeviceInfo = "device_info"
	StoreFanout     = "fanout"

	ResultLabel   = "result"
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	MsgReceivedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridcube",
			Name:      "received_msg_total",
			Help:      "The total number of received uplinks",
		},
		[]string{ViaLabel},
	)

	PayloadCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridcube",
			Name:      "decoded_payload_total",
			Help:      "The total number of decoded payloads per type",
		},
		[]string{TypeLabel},
	)

	UnknownTypeCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gridcube",
			Name:      "unknown_type_total",
			Help:      "The total number of uplinks with an unknown payload type",
		},
	)

	ErrorCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gridcube",
			Name:      "error_total",
			Help:      "The total number of failed uplinks",
		},
	)

	InsertCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridcube",
			Name:      "insert_total",
			Help:      "The total number of writes per store",
		},
		[]string{StoreLabel, ResultLabel},
	)

	AckCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridcube",
			Name:      "ack_total",
			Help:      "The total number of acknowledgments sent",
		},
		[]string{ResultLabel},
	)

	HandleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gridcube",
			Name:      "handle_duration_seconds",
			Help:      "Time spent handling one uplink",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
