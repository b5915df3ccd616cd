// Package config holds tunables for a Controller Session, following the
// defaults-plus-constructor pattern the rest of this module's ambient
// stack uses.
package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the timeouts spec.md §5 pins as suspension-point bounds,
// plus logging configuration.
type Config struct {
	LogLevel logrus.Level `json:"log_level"`

	// ConnectTimeout bounds OpenDeviceConnection (spec.md: 2s).
	ConnectTimeout time.Duration `json:"connect_timeout"`

	// DiscoveryTimeout bounds StartServiceDiscovery (spec.md: 10s).
	DiscoveryTimeout time.Duration `json:"discovery_timeout"`

	// OperationTimeout bounds ReadCharValue/WriteCharValue and
	// CloseDeviceConnection (spec.md: 1s).
	OperationTimeout time.Duration `json:"operation_timeout"`
}

// DefaultConfig returns the timeouts spec.md specifies.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:         logrus.InfoLevel,
		ConnectTimeout:   2 * time.Second,
		DiscoveryTimeout: 10 * time.Second,
		OperationTimeout: 1 * time.Second,
	}
}

// NewLogger builds a logrus.Logger at the configured level, using a
// full-timestamp text formatter with RFC 3339 timestamps.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger
}
