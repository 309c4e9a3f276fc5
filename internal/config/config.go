// Package config loads the settings shared by the si7210 tools.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mikesmitty/si7210"
)

// Config holds all tool configuration values.
type Config struct {
	// I2C
	I2CBus         string // empty opens the first available bus
	I2CAddr        uint16
	I2CFrequencyHz int64 // zero keeps the bus default

	// Sensor
	Range  si7210.Range
	Magnet si7210.MagnetType
	Filter si7210.Filter

	// Timing
	SampleIntervalMS int

	// MQTT
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	// Register debugger
	DebugListen string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		I2CAddr:          si7210.DefaultAddr,
		Range:            si7210.Range20mT,
		Magnet:           si7210.MagnetNone,
		SampleIntervalMS: 100,
		MQTTBroker:       "tcp://localhost:1883",
		MQTTClientID:     "si7210-producer",
		MQTTTopic:        "si7210/field",
		DebugListen:      ":8081",
	}
}

// Load reads a KEY=VALUE configuration file on top of Default.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.Set(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Set sets a config value based on the key.
func (c *Config) Set(key, value string) error {
	switch key {
	// I2C
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 7)
		if err != nil {
			return fmt.Errorf("invalid I2C_ADDR %q: %w", value, err)
		}
		c.I2CAddr = uint16(addr)
	case "I2C_FREQUENCY_HZ":
		hz, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid I2C_FREQUENCY_HZ %q: %w", value, err)
		}
		if hz < 0 {
			return fmt.Errorf("I2C_FREQUENCY_HZ must not be negative, got %d", hz)
		}
		c.I2CFrequencyHz = hz

	// Sensor
	case "RANGE_MT":
		r, err := ParseRange(value)
		if err != nil {
			return err
		}
		c.Range = r
	case "MAGNET":
		m, err := ParseMagnet(value)
		if err != nil {
			return err
		}
		c.Magnet = m
	case "FILTER":
		f, err := ParseFilterType(value)
		if err != nil {
			return err
		}
		c.Filter.Type = f
	case "FILTER_BURST":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid FILTER_BURST %q: %w", value, err)
		}
		if n < 0 || n > 12 {
			return fmt.Errorf("FILTER_BURST must be 0-12, got %d", n)
		}
		c.Filter.BurstSize = n

	// Timing
	case "SAMPLE_INTERVAL_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL_MS %q: %w", value, err)
		}
		c.SampleIntervalMS = ms

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC":
		c.MQTTTopic = value

	case "DEBUG_LISTEN":
		c.DebugListen = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func (c *Config) validate() error {
	if c.I2CAddr == 0 {
		return fmt.Errorf("I2C_ADDR is required")
	}
	if c.SampleIntervalMS <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL_MS must be positive, got %d", c.SampleIntervalMS)
	}
	if c.MQTTTopic == "" {
		return fmt.Errorf("MQTT_TOPIC is required")
	}
	return nil
}

// Opts returns the sensor options described by c.
func (c *Config) Opts() *si7210.Opts {
	return &si7210.Opts{
		Addr:   c.I2CAddr,
		Range:  c.Range,
		Magnet: c.Magnet,
		Mode:   si7210.ModeContinuous,
		Filter: c.Filter,
	}
}

func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMS) * time.Millisecond
}

// ParseRange accepts "20", "200", "20mT" and "200mT".
func ParseRange(s string) (si7210.Range, error) {
	switch strings.TrimSuffix(strings.ToLower(s), "mt") {
	case "20":
		return si7210.Range20mT, nil
	case "200":
		return si7210.Range200mT, nil
	}
	return 0, fmt.Errorf("invalid range %q, want 20 or 200", s)
}

func ParseMagnet(s string) (si7210.MagnetType, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return si7210.MagnetNone, nil
	case "neodymium", "ndfeb":
		return si7210.MagnetNeodymium, nil
	case "ceramic", "ferrite":
		return si7210.MagnetCeramic, nil
	}
	return 0, fmt.Errorf("invalid magnet %q, want none, neodymium or ceramic", s)
}

func ParseFilterType(s string) (si7210.FilterType, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return si7210.FilterNone, nil
	case "fir":
		return si7210.FilterFIR, nil
	case "iir":
		return si7210.FilterIIR, nil
	}
	return 0, fmt.Errorf("invalid filter %q, want none, fir or iir", s)
}
