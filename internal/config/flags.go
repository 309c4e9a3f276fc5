package config

import (
	"flag"
	"fmt"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = []struct {
	name, key, usage string
}{
	{"bus", "I2C_BUS", "Name of the I²C bus, empty for the first one"},
	{"addr", "I2C_ADDR", "7-bit I²C address of the sensor"},
	{"freq", "I2C_FREQUENCY_HZ", "I²C bus frequency in Hz"},
	{"range", "RANGE_MT", "Measurement range: 20 or 200 (mT)"},
	{"magnet", "MAGNET", "Magnet compensation: none, neodymium or ceramic"},
	{"filter", "FILTER", "Digital filter: none, fir or iir"},
	{"burst", "FILTER_BURST", "Filter burst size, 2^n samples (0-12)"},
	{"interval", "SAMPLE_INTERVAL_MS", "Sampling interval in milliseconds"},
	{"broker", "MQTT_BROKER", "MQTT broker URL"},
	{"client-id", "MQTT_CLIENT_ID", "MQTT client id"},
	{"topic", "MQTT_TOPIC", "MQTT topic"},
	{"listen", "DEBUG_LISTEN", "Register debugger listen address"},
}

// Parse parses args with fs and returns the configuration file named by
// -config, or Default, with the flags that were set applied on top.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	configPath := fs.String("config", "", "KEY=VALUE configuration file")
	values := make(map[string]*string, len(flagKeys))
	for _, f := range flagKeys {
		values[f.name] = fs.String(f.name, "", f.usage+" ("+f.key+")")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if *configPath != "" {
		var err error
		if cfg, err = Load(*configPath); err != nil {
			return nil, err
		}
	}

	var err error
	fs.Visit(func(fl *flag.Flag) {
		for _, f := range flagKeys {
			if f.name == fl.Name && err == nil {
				if e := cfg.Set(f.key, *values[f.name]); e != nil {
					err = fmt.Errorf("-%s: %w", f.name, e)
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
