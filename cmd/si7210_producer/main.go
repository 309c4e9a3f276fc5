package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"periph.io/x/host/v3"

	"github.com/mikesmitty/si7210/internal/config"
	"github.com/mikesmitty/si7210/internal/hw"
	"github.com/mikesmitty/si7210/internal/publish"
	"github.com/mikesmitty/si7210/internal/sampler"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if _, err := host.Init(); err != nil {
		log.Fatalf("periph host init failed: %v", err)
	}

	bus, dev, err := hw.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()
	defer dev.Halt()

	pub, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
	if err != nil {
		log.Fatal(err)
	}
	defer pub.Close()
	log.Printf("connected to MQTT broker at %s, publishing on %s", cfg.MQTTBroker, cfg.MQTTTopic)

	s := sampler.New(dev)
	samples, err := s.SenseContinuous(cfg.SampleInterval())
	if err != nil {
		log.Fatal(err)
	}
	defer s.Halt()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	for {
		select {
		case smp, ok := <-samples:
			if !ok {
				log.Printf("sampling stopped: %v", s.Err())
				return
			}
			if err := pub.Publish(smp, dev.Opts()); err != nil {
				log.Printf("publish error: %v", err)
			}
		case <-sig:
			log.Println("shutting down")
			return
		}
	}
}
