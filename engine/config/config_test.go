package config

import (
	"errors"
	"flag"
	"io"
	"log/slog"
	"testing"

	"github.com/hubastard/bounce/engine/sim"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr error
	}{
		{"Valid", "1000", 1000, nil},
		{"One", "1", 1, nil},
		{"Surrounding space", " 42 ", 42, nil},
		{"Missing", "", 0, ErrMissingCount},
		{"Blank", "   ", 0, ErrMissingCount},
		{"Zero", "0", 0, ErrNonPositiveCount},
		{"Negative", "-5", 0, ErrInvalidCount},
		{"Not a number", "lots", 0, ErrInvalidCount},
		{"Fraction", "2.5", 0, ErrInvalidCount},
		{"Overflow", "99999999999999999999999", 0, ErrInvalidCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCount(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseCount(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCount(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := ErrMissingCount.Error(); got != "missing required parameter: rectangles" {
		t.Errorf("ErrMissingCount = %q", got)
	}
	if got := ErrNonPositiveCount.Error(); got != "invalid rectangles parameter: must be greater than 0" {
		t.Errorf("ErrNonPositiveCount = %q", got)
	}
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		want     int
		wantSeed uint64
		wantErr  error
	}{
		{"With question mark", "?rectangles=250", 250, 0, nil},
		{"Without question mark", "rectangles=3", 3, 0, nil},
		{"Extra params and seed", "?debug=1&rectangles=10&seed=7", 10, 7, nil},
		{"Missing", "?other=1", 0, 0, ErrMissingCount},
		{"Empty query", "", 0, 0, ErrMissingCount},
		{"Zero", "?rectangles=0", 0, 0, ErrNonPositiveCount},
		{"Garbage", "?rectangles=abc", 0, 0, ErrInvalidCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromQuery(tt.query)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FromQuery(%q) error = %v, want %v", tt.query, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cfg.Rectangles != tt.want || cfg.Seed != tt.wantSeed {
				t.Errorf("got rectangles=%d seed=%d, want %d/%d", cfg.Rectangles, cfg.Seed, tt.want, tt.wantSeed)
			}
			if cfg.Width != FallbackWidth || cfg.Height != FallbackHeight {
				t.Errorf("canvas = %dx%d, want fallback %dx%d", cfg.Width, cfg.Height, FallbackWidth, FallbackHeight)
			}
		})
	}
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("bounce", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestFromFlags(t *testing.T) {
	cfg, err := FromFlags(newFlagSet(), []string{
		"-rectangles", "500", "-width", "640", "-height", "480",
		"-seed", "9", "-workers", "4", "-backend", "wgpu", "-log-level", "debug", "-vsync=false",
	}, "gl", "wgpu")
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	want := Config{
		Rectangles: 500, Width: 640, Height: 480, Title: DefaultTitle,
		VSync: false, Seed: 9, Workers: 4, Backend: "wgpu", LogLevel: slog.LevelDebug,
	}
	if cfg != want {
		t.Errorf("FromFlags() = %+v, want %+v", cfg, want)
	}
}

func TestFromFlagsDefaults(t *testing.T) {
	cfg, err := FromFlags(newFlagSet(), []string{"-rectangles=10"}, "software", "term")
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if cfg.Backend != "software" || cfg.Width != DefaultWidth || cfg.Height != DefaultHeight || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestFromFlagsErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"Missing count", []string{"-width", "640"}, ErrMissingCount},
		{"Zero count", []string{"-rectangles", "0"}, ErrNonPositiveCount},
		{"Unknown backend", []string{"-rectangles", "5", "-backend", "vulkan"}, ErrUnknownBackend},
		{"Tiny window", []string{"-rectangles", "5", "-width", "60"}, sim.ErrCanvasTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFlags(newFlagSet(), tt.args, "gl", "wgpu")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("FromFlags(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestFromFlagsBadLogLevel(t *testing.T) {
	if _, err := FromFlags(newFlagSet(), []string{"-rectangles", "5", "-log-level", "loud"}); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if !errors.Is(cfg.Validate(), ErrNonPositiveCount) {
		t.Errorf("Default().Validate() = %v, want ErrNonPositiveCount", cfg.Validate())
	}
	cfg.Rectangles = 100
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	cfg.Height = 40
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Validate() = %v, want ErrInvalidSize", err)
	}
}

func TestSimOptionsSeeded(t *testing.T) {
	cfg := Default()
	cfg.Rectangles = 20
	cfg.Seed = 1234

	a, err := sim.New(cfg.SimOptions(640, 480))
	if err != nil {
		t.Fatal(err)
	}
	b, err := sim.New(cfg.SimOptions(640, 480))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Rectangles() {
		if a.Rectangles()[i] != b.Rectangles()[i] {
			t.Fatalf("same seed produced different rectangle %d", i)
		}
	}
}
