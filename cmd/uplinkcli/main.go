package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v2"
	_ "github.com/mbobakov/grpc-consul-resolver"
	"google.golang.org/grpc"
	"google.golang.org/grpc/balancer/roundrobin"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	badgerstore "github.com/akhenakh/gridcube/storage/badger"
)

var (
	dbPath    = flag.String("dbPath", "gridcube.db", "DB path, the daemon must be stopped")
	deviceID  = flag.String("deviceID", "", "the device to query, list devices if empty")
	count     = flag.Int("count", 10, "how many points to return")
	healthURI = flag.String("healthURI", "", "uplinkd grpc health URI, e.g. consul://127.0.0.1:8500/uplinkd, check health only when set")
	service   = flag.String("service", "grpc.health.v1.uplinkd", "the health service name")
)

func main() {
	flag.Parse()

	if *healthURI != "" {
		checkHealth()
		return
	}

	opts := badger.DefaultOptions(*dbPath).WithReadOnly(true)
	opts.Logger = nil

	bdb, err := badger.Open(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer bdb.Close()

	s := &badgerstore.Store{DB: bdb}

	if *deviceID == "" {
		devices, err := s.Devices()
		if err != nil {
			log.Fatal(err)
		}
		for _, d := range devices {
			fmt.Println(d)
		}
		return
	}

	info, err := s.DeviceInfo(*deviceID)
	if err != nil {
		log.Fatal(err)
	}
	printJSON("device", info)

	latest, err := s.Latest(*deviceID)
	if err != nil {
		log.Fatal(err)
	}
	printJSON("latest", latest)

	points, err := s.Points(*deviceID, *count)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range points {
		printJSON(p.Time.UTC().Format(time.RFC3339), p.Measures)
	}
}

func checkHealth() {
	conn, err := grpc.Dial(*healthURI,
		grpc.WithInsecure(),
		grpc.WithBalancerName(roundrobin.Name), //nolint:staticcheck
	)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: *service})
	if err != nil {
		log.Fatal(err)
	}

	log.Println(*service, resp.Status)
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		os.Exit(1)
	}
}

func printJSON(label string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(label, string(b))
}
