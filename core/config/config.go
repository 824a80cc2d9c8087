// Package config holds the service configuration and its TOML encoding.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultThreshold = 30.0
	DefaultAbove     = "Drinkable Water!"
	DefaultBelow     = "Water Undrinkable!"

	DefaultSurfacePoints = 100
)

type Config struct {
	Verdict   Verdict   `toml:"verdict,omitempty"`
	Surface   Surface   `toml:"surface,omitempty"`
	Plot      Plot      `toml:"plot,omitempty"`
	Server    Server    `toml:"server,omitempty"`
	Benchmark Benchmark `toml:"benchmark,omitempty"`
}

// Verdict maps a crisp quality value to a message: values strictly above
// Threshold get Above, all others get Below.
type Verdict struct {
	Threshold float64 `toml:"threshold,omitempty"`
	Above     string  `toml:"above,omitempty"`
	Below     string  `toml:"below,omitempty"`
}

type Surface struct {
	Points  int    `toml:"points,omitempty"`
	Workers int    `toml:"workers,omitempty"`
	Output  string `toml:"output,omitempty"`
}

type Plot struct {
	Dir      string  `toml:"dir,omitempty"`
	Format   string  `toml:"format,omitempty"`
	WidthCM  float64 `toml:"width_cm,omitempty"`
	HeightCM float64 `toml:"height_cm,omitempty"`
}

type Server struct {
	ListenAddr   string `toml:"listen_address,omitempty"`
	NumListeners int    `toml:"num_listeners,omitempty"`
	CacheSize    int    `toml:"cache_size,omitempty"`
	MetricsAddr  string `toml:"metrics_address,omitempty"`
}

type Benchmark struct {
	Goroutines int `toml:"goroutines,omitempty"`
	Requests   int `toml:"requests,omitempty"`
}

var (
	errBadThreshold = errors.New("verdict threshold must be within [0, 100]")
	errBadPoints    = errors.New("surface points must be at least 2")
	errBadFormat    = errors.New("unsupported plot format")
	errBadSize      = errors.New("plot size must be positive")
	errBadCount     = errors.New("counts must be positive")
)

func Default() Config {
	return Config{
		Verdict: Verdict{
			Threshold: DefaultThreshold,
			Above:     DefaultAbove,
			Below:     DefaultBelow,
		},
		Surface: Surface{
			Points: DefaultSurfacePoints,
			Output: "surface.html",
		},
		Plot: Plot{
			Dir:      ".",
			Format:   "png",
			WidthCM:  16,
			HeightCM: 10,
		},
		Server: Server{
			ListenAddr:   "127.0.0.1:8000",
			NumListeners: 4,
			CacheSize:    4096,
			MetricsAddr:  "127.0.0.1:8080",
		},
		Benchmark: Benchmark{
			Goroutines: 8,
			Requests:   20000,
		},
	}
}

// Decode parses raw over the defaults. Unknown keys are rejected.
func Decode(raw []byte) (Config, error) {
	cfg := Default()
	err := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the configuration file at path. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Decode(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Verdict.Threshold < 0 || c.Verdict.Threshold > 100 {
		return errBadThreshold
	}
	if c.Surface.Points < 2 {
		return errBadPoints
	}
	switch c.Plot.Format {
	case "png", "pdf", "svg", "eps", "jpg", "tif":
	default:
		return fmt.Errorf("%w: %q", errBadFormat, c.Plot.Format)
	}
	if !(c.Plot.WidthCM > 0) || !(c.Plot.HeightCM > 0) {
		return errBadSize
	}
	if c.Surface.Workers < 0 || c.Server.NumListeners <= 0 || c.Server.CacheSize < 0 ||
		c.Benchmark.Goroutines <= 0 || c.Benchmark.Requests <= 0 {
		return errBadCount
	}
	return nil
}

// Message returns the verdict for the crisp quality value q.
func (v Verdict) Message(q float64) string {
	if q > v.Threshold {
		return v.Above
	}
	return v.Below
}
