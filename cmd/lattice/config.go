package main

import (
	"io"
	"os"
	"time"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config is read from LATTICE_* environment variables; command line flags
// override it.
type Config struct {
	LogLevel string `config:"LATTICE_LOG_LEVEL"`

	// demo
	Boxes    int    `config:"LATTICE_BOXES"`
	Seed     uint64 `config:"LATTICE_SEED"`
	TickRate int    `config:"LATTICE_TICK_RATE"`
	Width    int    `config:"LATTICE_WIDTH"`
	Height   int    `config:"LATTICE_HEIGHT"`
	DebugUI  bool   `config:"LATTICE_DEBUG_UI"`

	// simulate
	Duration   string `config:"LATTICE_DURATION"`
	TraceOut   string `config:"LATTICE_TRACE_OUT"`
	TraceEvery string `config:"LATTICE_TRACE_EVERY"`

	// stress
	Entities       int    `config:"LATTICE_STRESS_ENTITIES"`
	Schemas        int    `config:"LATTICE_STRESS_SCHEMAS"`
	Systems        int    `config:"LATTICE_STRESS_SYSTEMS"`
	Profile        string `config:"LATTICE_PROFILE"`
	GCPauseMetrics bool   `config:"LATTICE_GC_PAUSE_METRICS"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Boxes:      100,
		Seed:       1,
		TickRate:   60,
		Width:      1280,
		Height:     720,
		DebugUI:    true,
		Duration:   "10s",
		TraceEvery: "250ms",
		Entities:   10000,
		Schemas:    250,
		Systems:    50,
	}
}

func loadConfig() (Config, error) {
	cfg := defaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "load config from environment")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TickRate <= 0 {
		return eris.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.Boxes < 0 {
		return eris.Errorf("box count must not be negative, got %d", c.Boxes)
	}
	if c.Schemas <= 0 || c.Systems < 0 || c.Entities < 0 {
		return eris.New("stress test needs at least one schema and non-negative entity and system counts")
	}
	switch c.Profile {
	case "", "cpu", "mem", "trace":
	default:
		return eris.Errorf("unknown profile mode %q", c.Profile)
	}
	if _, err := c.duration(); err != nil {
		return err
	}
	if _, err := c.traceEvery(); err != nil {
		return err
	}
	return nil
}

func (c *Config) duration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Duration)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid duration %q", c.Duration)
	}
	return d, nil
}

func (c *Config) traceEvery() (time.Duration, error) {
	d, err := time.ParseDuration(c.TraceEvery)
	if err != nil || d <= 0 {
		return 0, eris.Errorf("invalid trace interval %q", c.TraceEvery)
	}
	return d, nil
}

// tick is the simulated time of one step.
func (c *Config) tick() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func newLogger(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), eris.Wrapf(err, "invalid log level %q", level)
	}
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().
		Logger(), nil
}
