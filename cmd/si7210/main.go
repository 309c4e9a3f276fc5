package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"periph.io/x/host/v3"

	"github.com/mikesmitty/si7210"
	"github.com/mikesmitty/si7210/internal/config"
	"github.com/mikesmitty/si7210/internal/hw"
	"github.com/mikesmitty/si7210/internal/sampler"
)

func main() {
	dump := flag.Bool("dump", false, "Print the register dump after every reading")
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	bus, dev, err := hw.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()
	defer dev.Halt()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	checkIdentity(logger, dev)
	printRegisters(logger, dev)

	s := sampler.New(dev)
	samples, err := s.SenseContinuous(cfg.SampleInterval())
	if err != nil {
		log.Fatal(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	for {
		select {
		case smp, ok := <-samples:
			if !ok {
				log.Printf("sampling stopped: %v", s.Err())
				return
			}
			logger.Printf("Field strength: %d µT (%s)", smp.MicroTesla, cfg.Range)
			if *dump {
				s.Do(func() error {
					printRegisters(logger, dev)
					return nil
				})
			}
		case <-sig:
			s.Halt()
			return
		}
	}
}

func checkIdentity(logger *log.Logger, dev *si7210.Dev) {
	chip, err := dev.ChipID()
	if err != nil {
		logger.Printf("ChipID: %v", err)
		return
	}
	rev, err := dev.RevID()
	if err != nil {
		logger.Printf("RevID: %v", err)
		return
	}
	good, err := dev.CheckGood()
	if err != nil {
		logger.Printf("CheckGood: %v", err)
		return
	}
	logger.Printf("%s: chip id %#x (expected 0x1), rev id %#x (expected 0x4), good: %t", dev, chip, rev, good)
}

func printRegisters(logger *log.Logger, dev *si7210.Dev) {
	regs, err := dev.MemDump()
	if err != nil {
		logger.Printf("MemDump: %v", err)
		return
	}
	for _, r := range regs {
		logger.Print(r)
	}
}
