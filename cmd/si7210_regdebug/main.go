package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"periph.io/x/host/v3"

	"github.com/mikesmitty/si7210/internal/config"
	"github.com/mikesmitty/si7210/internal/hw"
	"github.com/mikesmitty/si7210/internal/regdebug"
)

func main() {
	log.Println("starting Si7210 register debug tool")

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

	if ok, err := dev.CheckGood(); err != nil || !ok {
		log.Printf("warning: unexpected identity (good=%t, err=%v), continuing anyway", ok, err)
	}

	http.Handle("/ws", regdebug.New(dev, log.Default()))

	log.Printf("register debug tool listening on %s", cfg.DebugListen)
	if err := http.ListenAndServe(cfg.DebugListen, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
