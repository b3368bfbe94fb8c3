// Package config declares the typed configuration the core consumes.
// Loading it from a file or flags is explicitly out of scope (spec.md
// §1's "config loading" non-goal belongs to the front-end); this
// package only defines the shapes and their defaults.
package config

import (
	"fmt"
	"time"

	"github.com/raceingest/core/obslog"
	"github.com/raceingest/core/parser"
	"github.com/raceingest/core/session"
)

// DriverKind selects which Writer backend a RunConfig wires up.
type DriverKind string

const (
	DriverSQLite DriverKind = "sqlite"
	DriverPgx    DriverKind = "postgres"
)

// DriverConfig configures the destination database.
type DriverConfig struct {
	Kind DriverKind
	// DSN is the sqlite file path or the postgres connection string,
	// depending on Kind.
	DSN string
}

// Validate reports whether d is well-formed enough to open.
func (d DriverConfig) Validate() error {
	if d.DSN == "" {
		return fmt.Errorf("driver dsn must not be empty")
	}
	switch d.Kind {
	case DriverSQLite, DriverPgx:
		return nil
	default:
		return fmt.Errorf("unknown driver kind %q", d.Kind)
	}
}

// RunConfig is everything one coordinator run needs: which feed, how
// to reach the vendor, where to write, and the session policy.
type RunConfig struct {
	Feed   parser.Feed
	Driver DriverConfig
	Log    obslog.FileConfig

	ServiceKey string
	LockDir    string

	BatchSize int
	ChunkDays int

	Session session.Config

	LiveMonitorInterval    time.Duration
	LiveMonitorRaceDayStep time.Duration

	HTTPAddr string
}

func (c RunConfig) withDefaults() RunConfig {
	if c.BatchSize == 0 {
		c.BatchSize = 1000
	}
	if c.ChunkDays == 0 {
		c.ChunkDays = 30
		if c.Feed == parser.Regional {
			c.ChunkDays = 1
		}
	}
	if c.LiveMonitorInterval == 0 {
		c.LiveMonitorInterval = 30 * time.Second
	}
	if c.LiveMonitorRaceDayStep == 0 {
		c.LiveMonitorRaceDayStep = 30 * time.Second
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = "127.0.0.1:8765"
	}
	return c
}

// WithDefaults returns c with every zero-valued field replaced by its
// documented default (spec.md §4.6's chunk-days/polling-cadence
// defaults, §4.4's batch-size default).
func WithDefaults(c RunConfig) RunConfig { return c.withDefaults() }

// Validate reports the first configuration problem found, or nil.
func (c RunConfig) Validate() error {
	if c.ServiceKey == "" {
		return fmt.Errorf("service key must not be empty")
	}
	if err := c.Driver.Validate(); err != nil {
		return err
	}
	return nil
}
