package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hubastard/bounce/engine/shapes"
	"github.com/hubastard/bounce/engine/sim"
)

var (
	ErrMissingCount     = errors.New("missing required parameter: rectangles")
	ErrInvalidCount     = errors.New("invalid rectangles parameter: must be a positive integer")
	ErrNonPositiveCount = errors.New("invalid rectangles parameter: must be greater than 0")
	ErrInvalidSize      = errors.New("invalid canvas size")
	ErrUnknownBackend   = errors.New("unknown backend")
)

// Canvas fallbacks.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 720
	FallbackWidth  = 800
	FallbackHeight = 600
	DefaultTitle   = "bounce"
	CountParam     = "rectangles"
)

// Config for a bounce host.
type Config struct {
	Rectangles int
	Width      int
	Height     int
	Title      string
	VSync      bool
	Seed       uint64 // 0 seeds from the clock
	Workers    int    // > 1 enables the parallel update
	Backend    string
	LogLevel   slog.Level
}

// Default returns the desktop defaults. Rectangles is left at 0 so a host
// that never sets it fails Validate.
func Default() Config {
	return Config{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Title:   DefaultTitle,
		VSync:   true,
		Backend: "gl",
	}
}

// ParseCount validates a raw rectangle count.
func ParseCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMissingCount
	}
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || n > uint64(maxCount) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, raw)
	}
	if n == 0 {
		return 0, ErrNonPositiveCount
	}
	return int(n), nil
}

// Largest count whose color buffer length still fits an int.
const maxCount = (1<<31 - 1) / 24

// FromQuery reads the rectangle count from a URL query string such as
// location.search. A leading '?' is accepted.
func FromQuery(rawQuery string) (Config, error) {
	cfg := Default()
	cfg.Width, cfg.Height = FallbackWidth, FallbackHeight
	cfg.Backend = "webgl"

	q, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return cfg, fmt.Errorf("parse query: %w", err)
	}
	n, err := ParseCount(q.Get(CountParam))
	if err != nil {
		return cfg, err
	}
	cfg.Rectangles = n
	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid seed %q: %w", s, err)
		}
		cfg.Seed = seed
	}
	return cfg, nil
}

// FromFlags parses args into a Config. backends lists the values accepted by
// -backend; the first one is the default.
func FromFlags(fs *flag.FlagSet, args []string, backends ...string) (Config, error) {
	cfg := Default()
	if len(backends) > 0 {
		cfg.Backend = backends[0]
	}

	var count, level string
	fs.StringVar(&count, CountParam, "", "number of rectangles (required)")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "window width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "window height in pixels")
	fs.StringVar(&cfg.Title, "title", cfg.Title, "window title")
	fs.BoolVar(&cfg.VSync, "vsync", cfg.VSync, "wait for vertical sync")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "random seed (0 uses the clock)")
	fs.IntVar(&cfg.Workers, "workers", 0, fmt.Sprintf("parallel update workers (0 = sequential, this machine has %d CPUs)", runtime.NumCPU()))
	fs.StringVar(&level, "log-level", "info", "log level (debug, info, warn, error)")
	if len(backends) > 1 {
		fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "renderer backend: "+strings.Join(backends, "|"))
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return cfg, fmt.Errorf("invalid -log-level: %w", err)
	}

	n, err := ParseCount(count)
	if err != nil {
		return cfg, err
	}
	cfg.Rectangles = n

	if len(backends) > 0 && !slices.Contains(backends, cfg.Backend) {
		return cfg, fmt.Errorf("%w %q (want %s)", ErrUnknownBackend, cfg.Backend, strings.Join(backends, "|"))
	}
	return cfg, cfg.Validate()
}

// Validate returns the first configuration error.
func (c Config) Validate() error {
	switch {
	case c.Rectangles < 0:
		return ErrInvalidCount
	case c.Rectangles == 0:
		return ErrNonPositiveCount
	case float64(c.Width) <= shapes.MaxSize || float64(c.Height) <= shapes.MaxSize:
		return fmt.Errorf("%w: %dx%d: %w", ErrInvalidSize, c.Width, c.Height, sim.ErrCanvasTooSmall)
	}
	return nil
}

// RandomSource returns a PCG generator seeded from Seed, or from the clock
// when Seed is 0.
func (c Config) RandomSource() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SimOptions builds simulation options for a canvas of the given pixel size.
func (c Config) SimOptions(width, height int) sim.Options {
	return sim.Options{
		Count:   c.Rectangles,
		Width:   float64(width),
		Height:  float64(height),
		Source:  c.RandomSource(),
		Workers: c.Workers,
	}
}
