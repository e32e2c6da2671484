package main

import (
	"context"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iotwireless"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/namsral/flag"

	"github.com/akhenakh/gridcube"
	"github.com/akhenakh/gridcube/ack"
	ackiot "github.com/akhenakh/gridcube/ack/iotwireless"
	"github.com/akhenakh/gridcube/metrics"
	"github.com/akhenakh/gridcube/storage"
	"github.com/akhenakh/gridcube/storage/dynamo"
	"github.com/akhenakh/gridcube/storage/kafka"
	"github.com/akhenakh/gridcube/storage/timestream"
)

const appName = "uplink-lambda"

var (
	version = "no version from LDFLAGS"

	_ = flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	timestreamDatabase = flag.String("timestreamDatabase", "gridcube", "Timestream database name")
	timestreamTable    = flag.String("timestreamTable", "samples", "Timestream table name")
	latestTable        = flag.String("latestTable", "gridcube-latest", "DynamoDB table holding the latest sample per device")
	deviceTable        = flag.String("deviceTable", "gridcube-devices", "DynamoDB table holding the device info")

	transmitMode       = flag.Int("transmitMode", ackiot.DefaultTransmitMode, "IoT Wireless transmit mode used for acks")
	sidewalkAckEnabled = flag.Bool("sidewalkAckEnabled", true, "Send acks through IoT Wireless, log them otherwise")
	zeroFillLatest     = flag.Bool("zeroFillLatest", false, "Write every measure on the latest sample, 0 when absent")

	kafkaBrokers = flag.String("kafkaBrokers", "", "Comma separated Kafka brokers, empty disables the sample fan out")
	kafkaTopic   = flag.String("kafkaTopic", "gridcube-samples", "Kafka topic for the sample fan out")

	logLevel = flag.String("logLevel", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	logger := log.NewJSONLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "caller", log.DefaultCaller, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "app", appName)
	logger = level.NewFilter(logger, levelOption(*logLevel))

	stdlog.SetOutput(log.NewStdlibAdapter(logger))

	level.Info(logger).Log("msg", "cold start", "version", version)

	ctx := context.Background()

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		level.Error(logger).Log("msg", "unable to load AWS config", "error", err)
		os.Exit(2)
	}

	ts, err := timestream.NewWriter(timestreamwrite.NewFromConfig(awsCfg), *timestreamDatabase, *timestreamTable)
	if err != nil {
		level.Error(logger).Log("msg", "can't create timestream writer", "error", err)
		os.Exit(2)
	}

	ddb, err := dynamo.NewStore(dynamodb.NewFromConfig(awsCfg), *latestTable, *deviceTable)
	if err != nil {
		level.Error(logger).Log("msg", "can't create dynamodb store", "error", err)
		os.Exit(2)
	}

	sink := storage.NewSink(logger, ts, ddb, ddb, storage.SinkConfig{ZeroFillLatest: *zeroFillLatest})

	// lambda.Start never returns, closers run on SIGTERM
	var closers []io.Closer
	if *kafkaBrokers != "" {
		pub := kafka.NewPublisher(kafka.NewWriter(strings.Split(*kafkaBrokers, ","), *kafkaTopic))
		closers = append(closers, pub)
		sink.WithFanout(pub)
		level.Info(logger).Log("msg", "sample fan out enabled", "topic", *kafkaTopic)
	}

	var tx ack.Transmitter = ack.LogTransmitter{Logger: logger}
	if *sidewalkAckEnabled {
		tx = ackiot.NewTransmitter(iotwireless.NewFromConfig(awsCfg), ackiot.Config{
			TransmitMode: int32(*transmitMode),
			MessageType:  ackiot.DefaultMessageType,
		})
	}

	s := gridcube.NewServer(appName, logger, sink, ack.NewSender(logger, tx), gridcube.Config{
		Via: metrics.ReceivedViaLambda,
	})

	lambda.StartWithOptions(s.HandleUplink, lambda.WithEnableSIGTERM(closeAll(logger, closers...)))
}

// closeAll returns a func closing every closer, errors are only logged.
func closeAll(logger log.Logger, closers ...io.Closer) func() {
	return func() {
		level.Info(logger).Log("msg", "shutting down", "closers", len(closers))
		for _, c := range closers {
			if err := c.Close(); err != nil {
				level.Warn(logger).Log("msg", "can't close", "error", err)
			}
		}
	}
}

func levelOption(l string) level.Option {
	switch strings.ToLower(l) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
