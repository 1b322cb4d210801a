// Package config handles loading and saving tv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/tv/config.yaml
//   - Cache:  ~/.cache/tv/ (debug log)
//
// Command-line flags override any value read from the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/reconcile"
	"github.com/vanderheijden86/tremorview/pkg/scale"
)

const appName = "tv"

// ChartConfig holds scale and layout settings.
type ChartConfig struct {
	DomainPolicy string       `yaml:"domain_policy,omitempty"` // global or filtered
	Tooltip      string       `yaml:"tooltip,omitempty"`       // severity, demographics or task
	Padding      float64      `yaml:"padding"`                 // band padding fraction [0, 1)
	Layout       chart.Layout `yaml:"layout,omitempty"`
}

// AnimationConfig holds transition timings.
type AnimationConfig struct {
	Duration       time.Duration `yaml:"duration,omitempty"`
	Hover          time.Duration `yaml:"hover,omitempty"`
	TooltipFadeIn  time.Duration `yaml:"tooltip_fade_in,omitempty"`
	TooltipFadeOut time.Duration `yaml:"tooltip_fade_out,omitempty"`
	FrameInterval  time.Duration `yaml:"frame_interval,omitempty"` // terminal redraw rate while animating
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	Watch     *bool `yaml:"watch,omitempty"` // reload when the data file changes
	BarHeight int   `yaml:"bar_height,omitempty"`
}

// Config is the top-level configuration for tv.
type Config struct {
	DataPath   string          `yaml:"data_path,omitempty"`
	Task       string          `yaml:"task,omitempty"`
	Conditions []string        `yaml:"conditions,omitempty"`
	Chart      ChartConfig     `yaml:"chart,omitempty"`
	Animation  AnimationConfig `yaml:"animation,omitempty"`
	UI         UIConfig        `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with the stock chart settings.
func DefaultConfig() Config {
	watch := true
	return Config{
		DataPath: "condition.csv",
		Chart: ChartConfig{
			DomainPolicy: scale.DomainGlobal.String(),
			Tooltip:      chart.TooltipDemographics.String(),
			Padding:      scale.DefaultPadding,
			Layout:       chart.DefaultLayout(),
		},
		Animation: AnimationConfig{
			Duration:       reconcile.DefaultDuration,
			Hover:          reconcile.DefaultHoverDuration,
			TooltipFadeIn:  reconcile.TooltipFadeIn,
			TooltipFadeOut: reconcile.TooltipFadeOut,
			FrameInterval:  60 * time.Millisecond,
		},
		UI: UIConfig{
			Watch:     &watch,
			BarHeight: 16,
		},
	}
}

// WatchEnabled reports whether file watching is on.
func (c Config) WatchEnabled() bool {
	return c.UI.Watch == nil || *c.UI.Watch
}

// Validate checks values that would otherwise fail later in the pipeline.
func (c Config) Validate() error {
	if _, err := scale.ParseDomainPolicy(c.Chart.DomainPolicy); err != nil {
		return err
	}
	if _, err := chart.ParseTooltipMode(c.Chart.Tooltip); err != nil {
		return err
	}
	if c.Chart.Padding < 0 || c.Chart.Padding >= 1 {
		return fmt.Errorf("chart.padding must be in [0, 1), got %g", c.Chart.Padding)
	}
	l := c.Chart.Layout
	if l != (chart.Layout{}) && (l.PlotWidth() <= 0 || l.PlotHeight() <= 0) {
		return fmt.Errorf("chart.layout leaves no plot area (%gx%g with margins %g/%g/%g/%g)",
			l.Width, l.Height, l.MarginTop, l.MarginRight, l.MarginBottom, l.MarginLeft)
	}
	for name, d := range map[string]time.Duration{
		"duration":         c.Animation.Duration,
		"hover":            c.Animation.Hover,
		"tooltip_fade_in":  c.Animation.TooltipFadeIn,
		"tooltip_fade_out": c.Animation.TooltipFadeOut,
	} {
		if d < 0 {
			return fmt.Errorf("animation.%s cannot be negative", name)
		}
	}
	return nil
}

// ChartOptions converts the configuration into controller options.
func (c Config) ChartOptions() (chart.Options, error) {
	if err := c.Validate(); err != nil {
		return chart.Options{}, err
	}
	policy, _ := scale.ParseDomainPolicy(c.Chart.DomainPolicy)
	mode, _ := chart.ParseTooltipMode(c.Chart.Tooltip)
	padding := c.Chart.Padding
	if padding == 0 {
		padding = chart.NoPadding
	}
	return chart.Options{
		Layout:         c.Chart.Layout,
		Padding:        padding,
		Policy:         policy,
		Tooltip:        mode,
		Duration:       c.Animation.Duration,
		HoverDuration:  c.Animation.Hover,
		TooltipFadeIn:  c.Animation.TooltipFadeIn,
		TooltipFadeOut: c.Animation.TooltipFadeOut,
	}, nil
}

// ConfigDir returns the XDG config directory for tv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// CacheDir returns the XDG cache directory for tv.
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Values missing from the file
// keep their defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.DataPath = expandHome(cfg.DataPath)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
