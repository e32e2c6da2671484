package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"io/ioutil"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/akhenakh/gridcube"
	"github.com/akhenakh/gridcube/gpstime"
	"github.com/akhenakh/gridcube/payload"
)

var (
	addr     = flag.String("addr", "http://localhost:9201/api/uplink", "uplinkd ingest URL")
	deviceID = flag.String("deviceID", "fake-gridcube", "The wireless device id sent")
	count    = flag.Int("count", 10, "How many uplinks to send")
	interval = flag.Duration("interval", time.Second, "Delay between uplinks")
)

func main() {
	flag.Parse()

	c := &http.Client{Timeout: 5 * time.Second}

	for i := 0; i < *count; i++ {
		s := fakeSample(uint8(i))
		env := gridcube.Envelope{Uplink: gridcube.Uplink{
			WirelessDeviceID: *deviceID,
			PayloadData:      base64.StdEncoding.EncodeToString(payload.Encode(s)),
		}}
		b, err := json.Marshal(env)
		if err != nil {
			log.Fatal(err)
		}

		req, err := http.NewRequest(http.MethodPost, *addr, bytes.NewReader(b))
		if err != nil {
			log.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(gridcube.RequestIDHeader, uuid.New().String())

		resp, err := c.Do(req)
		if err != nil {
			log.Fatal(err)
		}
		body, _ := ioutil.ReadAll(resp.Body)
		resp.Body.Close()

		log.Println("sent", s.Type, env.Uplink.PayloadData, resp.StatusCode, string(body))

		time.Sleep(*interval)
	}
}

func fakeSample(msgNum uint8) *payload.Sample {
	s := &payload.Sample{
		Type:          payload.Type(rand.Intn(9)),
		MessageNumber: msgNum,
		GPSTime:       gpstime.FromTime(time.Now()),
	}
	switch s.Type {
	case payload.InstantPower:
		s.Value = uint64(rand.Intn(5000))
	case payload.CumulativeEnergy:
		s.Value = uint64(rand.Intn(1 << 20))
	case payload.OperationalStateReport:
		s.State = payload.OperationalState(rand.Intn(15))
	case payload.ConnectionInfo:
		s.NetworkType = uint8(rand.Intn(3))
		s.RSSI = int8(-40 - rand.Intn(80))
	case payload.ModelNumber:
		s.Text = "GC-100"
	case payload.SerialNumber:
		s.Text = "GC100-000042"
	case payload.FirmwareVersion, payload.GridcubeFirmwareVersion:
		s.Text = "1.4.2"
	}
	return s
}
