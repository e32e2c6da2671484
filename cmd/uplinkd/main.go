package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ttnsdk "github.com/TheThingsNetwork/go-app-sdk"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iotwireless"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	grpc_middleware "github.com/mwitkow/go-grpc-middleware"
	grpc_opentracing "github.com/mwitkow/go-grpc-middleware/tracing/opentracing"
	"github.com/namsral/flag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/akhenakh/gridcube"
	"github.com/akhenakh/gridcube/ack"
	ackiot "github.com/akhenakh/gridcube/ack/iotwireless"
	ackttn "github.com/akhenakh/gridcube/ack/ttn"
	"github.com/akhenakh/gridcube/metrics"
	"github.com/akhenakh/gridcube/storage"
	badgerstore "github.com/akhenakh/gridcube/storage/badger"
	"github.com/akhenakh/gridcube/storage/dynamo"
	"github.com/akhenakh/gridcube/storage/kafka"
	"github.com/akhenakh/gridcube/storage/timestream"
)

const appName = "uplinkd"

var (
	version = "no version from LDFLAGS"

	_ = flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	store  = flag.String("store", "badger", "Where samples are written: badger or aws")
	dbPath = flag.String("dbPath", "gridcube.db", "DB path")

	timestreamDatabase = flag.String("timestreamDatabase", "gridcube", "Timestream database name")
	timestreamTable    = flag.String("timestreamTable", "samples", "Timestream table name")
	latestTable        = flag.String("latestTable", "gridcube-latest", "DynamoDB table holding the latest sample per device")
	deviceTable        = flag.String("deviceTable", "gridcube-devices", "DynamoDB table holding the device info")
	transmitMode       = flag.Int("transmitMode", ackiot.DefaultTransmitMode, "IoT Wireless transmit mode used for acks")
	sidewalkAckEnabled = flag.Bool("sidewalkAckEnabled", false, "Send acks through IoT Wireless")
	zeroFillLatest     = flag.Bool("zeroFillLatest", false, "Write every measure on the latest sample, 0 when absent")

	kafkaBrokers = flag.String("kafkaBrokers", "", "Comma separated Kafka brokers, empty disables the sample fan out")
	kafkaTopic   = flag.String("kafkaTopic", "gridcube-samples", "Kafka topic for the sample fan out")

	ttnAppID        = flag.String("ttnAppID", "", "The things network application ID, empty disables TTN")
	ttnAppAccessKey = flag.String("ttnAppAccessKey", "", "The things network access key")
	ttnAckFPort     = flag.Int("ttnAckFPort", 1, "The things network port used for ack downlinks")

	httpMetricsPort = flag.Int("httpMetricsPort", 8888, "http port")
	httpAPIPort     = flag.Int("httpAPIPort", 9201, "http API port")
	healthPort      = flag.Int("healthPort", 6666, "grpc health port")

	httpServer        *http.Server
	grpcHealthServer  *grpc.Server
	httpMetricsServer *http.Server
)

func main() {
	flag.Parse()

	logger := log.NewJSONLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "caller", log.DefaultCaller, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "app", appName)
	logger = level.NewFilter(logger, level.AllowAll())

	stdlog.SetOutput(log.NewStdlibAdapter(logger))

	level.Info(logger).Log("msg", "Starting app", "version", version)

	fPort, err := ackFPort(*ttnAckFPort)
	if err != nil {
		level.Error(logger).Log("msg", "invalid ttnAckFPort", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)

	// catch termination
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	var sink *storage.Sink
	var iotClient *iotwireless.Client
	sinkCfg := storage.SinkConfig{ZeroFillLatest: *zeroFillLatest}

	switch *store {
	case "badger":
		opts := badger.DefaultOptions(*dbPath)
		opts.Logger = nil
		opts.TableLoadingMode = options.FileIO

		bdb, err := badger.Open(opts)
		if err != nil {
			level.Error(logger).Log("msg", "failed to open DB", "error", err, "path", *dbPath)
			os.Exit(2)
		}
		defer bdb.Close()

		bs := &badgerstore.Store{DB: bdb}
		sink = storage.NewSink(logger, bs, bs, bs, sinkCfg)
	case "aws":
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
		sink = storage.NewSink(logger, ts, ddb, ddb, sinkCfg)
		iotClient = iotwireless.NewFromConfig(awsCfg)
	default:
		level.Error(logger).Log("msg", "unknown store", "store", *store)
		os.Exit(2)
	}

	if *kafkaBrokers != "" {
		pub := kafka.NewPublisher(kafka.NewWriter(strings.Split(*kafkaBrokers, ","), *kafkaTopic))
		defer pub.Close()
		sink.WithFanout(pub)
		level.Info(logger).Log("msg", "sample fan out enabled", "topic", *kafkaTopic)
	}

	// TTN client
	var pubsub ttnsdk.ApplicationPubSub
	if *ttnAppID != "" {
		ttnCfg := ttnsdk.NewCommunityConfig(appName)
		ttnCfg.ClientVersion = version

		client := ttnCfg.NewClient(*ttnAppID, *ttnAppAccessKey)
		defer client.Close()

		pubsub, err = client.PubSub()
		if err != nil {
			level.Error(logger).Log("msg", "can't get pub/sub", "error", err)
			os.Exit(2)
		}
		defer pubsub.Close()
	}

	var tx ack.Transmitter
	switch {
	case pubsub != nil:
		tx = ackttn.NewTransmitter(pubsub, *ttnAppID, fPort)
	case iotClient != nil && *sidewalkAckEnabled:
		tx = ackiot.NewTransmitter(iotClient, ackiot.Config{
			TransmitMode: int32(*transmitMode),
			MessageType:  ackiot.DefaultMessageType,
		})
	default:
		tx = ack.LogTransmitter{Logger: logger}
	}

	s := gridcube.NewServer(appName, logger, sink, ack.NewSender(logger, tx), gridcube.Config{
		Via: metrics.ReceivedViaHTTP,
	})

	// gRPC Health Server
	healthServer := health.NewServer()
	g.Go(func() error {
		grpcHealthServer = grpc.NewServer(
			// MaxConnectionAge is just to avoid long connection, to facilitate load balancing
			// MaxConnectionAgeGrace will torn them, default to infinity
			grpc.KeepaliveParams(keepalive.ServerParameters{MaxConnectionAge: 2 * time.Minute}),
			grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
				grpc_opentracing.StreamServerInterceptor(),
				grpc_prometheus.StreamServerInterceptor,
			)),
			grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
				grpc_opentracing.UnaryServerInterceptor(),
				grpc_prometheus.UnaryServerInterceptor,
			)),
		)

		healthpb.RegisterHealthServer(grpcHealthServer, healthServer)
		grpc_prometheus.Register(grpcHealthServer)

		haddr := fmt.Sprintf(":%d", *healthPort)
		hln, err := net.Listen("tcp", haddr)
		if err != nil {
			level.Error(logger).Log("msg", "gRPC Health server: failed to listen", "error", err)
			os.Exit(2)
		}
		level.Info(logger).Log("msg", fmt.Sprintf("gRPC health server serving at %s", haddr))
		return grpcHealthServer.Serve(hln)
	})

	// web server metrics
	g.Go(func() error {
		httpMetricsServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", *httpMetricsPort),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		level.Info(logger).Log("msg", fmt.Sprintf("HTTP Metrics server serving at :%d", *httpMetricsPort))

		// Register Prometheus metrics handler.
		http.Handle("/metrics", promhttp.Handler())

		if err := httpMetricsServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	// web server
	g.Go(func() error {
		r := mux.NewRouter()
		r.HandleFunc("/api/uplink", s.UplinkHandler).Methods(http.MethodPost)

		httpServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", *httpAPIPort),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			Handler: handlers.CombinedLoggingHandler(
				log.NewStdlibAdapter(log.With(logger, "component", "http")),
				handlers.CompressHandler(r),
			),
		}
		level.Info(logger).Log("msg", fmt.Sprintf("HTTP API server serving at :%d", *httpAPIPort))

		healthServer.SetServingStatus(fmt.Sprintf("grpc.health.v1.%s", appName), healthpb.HealthCheckResponse_SERVING)

		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	// TTN subscriptions
	if pubsub != nil {
		g.Go(func() error {
			logger := log.With(logger, "component", "ttnclient")

			// Get a publish/subscribe client for all devices
			allDevicesPubSub := pubsub.AllDevices()

			// This also stops existing subscriptions
			defer allDevicesPubSub.Close()

			msgs, err := allDevicesPubSub.SubscribeUplink()
			if err != nil {
				level.Error(logger).Log("msg", "can't subscribe to uplinks", "error", err)
				return err
			}
			level.Info(logger).Log("msg", "subscribed to uplink messages")

			for {
				select {
				case <-ctx.Done():
					level.Info(logger).Log("msg", "unsubscribing to uplink messages")

					if err = allDevicesPubSub.UnsubscribeUplink(); err != nil {
						level.Error(logger).Log("msg", "can't unsubscribe from uplinks", "error", err)
						return err
					}
					return nil
				case msg := <-msgs:
					if msg == nil {
						break
					}
					s.HandleMessage(ctx, msg)
				}
			}
		})
	}

	select {
	case <-interrupt:
		cancel()
		break
	case <-ctx.Done():
		break
	}

	level.Warn(logger).Log("msg", "received shutdown signal")

	healthServer.SetServingStatus(fmt.Sprintf("grpc.health.v1.%s", appName), healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpMetricsServer != nil {
		_ = httpMetricsServer.Shutdown(shutdownCtx)
	}

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if grpcHealthServer != nil {
		grpcHealthServer.GracefulStop()
	}

	err = g.Wait()
	if err != nil {
		level.Error(logger).Log("msg", "server returning an error", "error", err)
		os.Exit(2)
	}
}

// ackFPort checks p is a LoRaWAN application port, 1 to 223.
func ackFPort(p int) (uint8, error) {
	if p < 1 || p > 223 {
		return 0, fmt.Errorf("port %d out of range 1..223", p)
	}
	return uint8(p), nil
}
