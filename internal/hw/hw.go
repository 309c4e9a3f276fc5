// Package hw opens the sensor described by a tool configuration.
package hw

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"

	"github.com/mikesmitty/si7210"
	"github.com/mikesmitty/si7210/internal/config"
)

// Open opens the I²C bus named in cfg and initializes the sensor on it.
// host.Init must have been called. The caller closes the returned bus.
func Open(cfg *config.Config) (i2c.BusCloser, *si7210.Dev, error) {
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open I2C bus %q: %w", cfg.I2CBus, err)
	}

	if cfg.I2CFrequencyHz > 0 {
		if err := bus.SetSpeed(physic.Frequency(cfg.I2CFrequencyHz) * physic.Hertz); err != nil {
			bus.Close()
			return nil, nil, fmt.Errorf("could not set I2C bus speed: %w", err)
		}
	}

	dev, err := si7210.New(bus, cfg.Opts())
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return bus, dev, nil
}
