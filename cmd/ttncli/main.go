package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	ttnsdk "github.com/TheThingsNetwork/go-app-sdk"

	"github.com/akhenakh/gridcube/payload"
)

const appName = "ttncli"

var (
	appID        = flag.String("appID", "gridcube", "The things network application ID")
	appAccessKey = flag.String("appAccessKey", "", "The things network access key")
)

func main() {
	flag.Parse()

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	config := ttnsdk.NewCommunityConfig(appName)
	config.ClientVersion = "1.0"

	client := config.NewClient(*appID, *appAccessKey)
	defer client.Close()

	pubsub, err := client.PubSub()
	if err != nil {
		log.Fatal("can't get pub/sub", err)
	}

	allDevicesPubSub := pubsub.AllDevices()
	defer allDevicesPubSub.Close()

	msgs, err := allDevicesPubSub.SubscribeUplink()
	if err != nil {
		log.Fatal("can't subscribe to uplinks", err)
	}

	// catch termination
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Println("unsubscribe from all devices")
				if err = allDevicesPubSub.UnsubscribeUplink(); err != nil {
					log.Fatal("can't unsubscribe from uplink msg", err)
				}
				return
			case msg := <-msgs:
				if msg == nil || len(msg.PayloadRaw) == 0 {
					continue
				}

				log.Println("received msg", msg.DevID, "data", hex.EncodeToString(msg.PayloadRaw))

				s, err := payload.Decode(msg.DevID, msg.PayloadRaw)
				if err != nil {
					log.Println("can't decode payload", err)
					continue
				}
				b, _ := json.Marshal(s)
				log.Println("decoded", s.Type, string(b))
			}
		}
	}()

	<-interrupt
	cancel()
}
