// Package config loads spectra's configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/spectra/config.yaml (or config.toml)
//   - Data:    ~/.local/share/spectra/ (exported datasets)
//   - State:   ~/.local/state/spectra/ (snapshots)
//
// Files ending in .toml are decoded as TOML, everything else as YAML.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

const appName = "spectra"

// Duration is a time.Duration written as "600ms" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// RendererConfig tunes the canvas animation.
type RendererConfig struct {
	netcanvas.Options `yaml:",inline"`
	FPS               int `yaml:"fps,omitempty" toml:"fps,omitempty"`
}

// ServerConfig configures the mock backend.
type ServerConfig struct {
	Addr         string   `yaml:"addr,omitempty" toml:"addr,omitempty"`
	AnalyzeDelay Duration `yaml:"analyze_delay,omitempty" toml:"analyze_delay,omitempty"`
	CanvasWidth  int      `yaml:"canvas_width,omitempty" toml:"canvas_width,omitempty"`
	CanvasHeight int      `yaml:"canvas_height,omitempty" toml:"canvas_height,omitempty"`
	NodeCount    int      `yaml:"node_count,omitempty" toml:"node_count,omitempty"`
}

// UIConfig configures the terminal host.
type UIConfig struct {
	FPS      int     `yaml:"fps,omitempty" toml:"fps,omitempty"`
	DotScale float64 `yaml:"dot_scale,omitempty" toml:"dot_scale,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Theme    string         `yaml:"theme,omitempty" toml:"theme,omitempty"`
	Source   string         `yaml:"source,omitempty" toml:"source,omitempty"`
	Renderer RendererConfig `yaml:"renderer,omitempty" toml:"renderer,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty" toml:"server,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty" toml:"ui,omitempty"`
	// Themes adds or overrides themes; empty colours inherit from the
	// built-in theme of the same ID, or the default theme.
	Themes []theme.Theme `yaml:"themes,omitempty" toml:"themes,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme:  theme.DefaultID,
		Source: "mock:50",
		Renderer: RendererConfig{
			Options: netcanvas.DefaultOptions(),
			FPS:     netcanvas.DefaultFPS,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8000",
			AnalyzeDelay: Duration(600 * time.Millisecond),
			CanvasWidth:  1280,
			CanvasHeight: 720,
			NodeCount:    50,
		},
		UI: UIConfig{
			FPS:      30,
			DotScale: 4,
		},
	}
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// DataDir returns the XDG data directory.
func DataDir() string { return xdgDir("XDG_DATA_HOME", ".local", "share") }

// StateDir returns the XDG state directory.
func StateDir() string { return xdgDir("XDG_STATE_HOME", ".local", "state") }

// ConfigPath returns the config file path: config.yaml, or config.toml when
// only that one exists.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	yamlPath := filepath.Join(dir, "config.yaml")
	tomlPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(yamlPath); err != nil {
		if _, err := os.Stat(tomlPath); err == nil {
			return tomlPath
		}
	}
	return yamlPath
}

// Load reads the config file from the XDG config directory, then applies
// environment overrides.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig().withEnv(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path. A missing file yields DefaultConfig.
// SPECTRA_THEME and SPECTRA_SOURCE override the file.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.withEnv(), nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if isTOML(path) {
		_, err = toml.Decode(string(data), &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", filepath.Base(path), err)
	}

	cfg.Source = expandHome(cfg.Source)
	return cfg.withEnv(), nil
}

func (c Config) withEnv() Config {
	if v := strings.TrimSpace(os.Getenv("SPECTRA_THEME")); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("SPECTRA_SOURCE")); v != "" {
		c.Source = expandHome(v)
	}
	return c
}

// SaveTo writes the config to path, as TOML when path ends in .toml.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResolveTheme returns the theme named id. Custom themes win over built-in
// ones. Unknown IDs resolve to the default theme and ok=false.
func (c Config) ResolveTheme(id string) (t theme.Theme, ok bool) {
	if id == "" {
		id = c.Theme
	}
	for _, ct := range c.Themes {
		if strings.EqualFold(ct.ID, id) {
			base, found := theme.Lookup(ct.ID)
			if !found {
				base = theme.Default()
			}
			return ct.Merge(base), true
		}
	}
	if t, found := theme.Lookup(id); found {
		return t, true
	}
	return theme.Default(), false
}

// ThemeIDs lists built-in and custom theme IDs, built-ins first.
func (c Config) ThemeIDs() []string {
	ids := theme.IDs()
	for _, ct := range c.Themes {
		if _, found := theme.Lookup(ct.ID); !found && ct.ID != "" {
			ids = append(ids, ct.ID)
		}
	}
	return ids
}

// FrameInterval returns the wall-clock frame period for the renderer.
func (c RendererConfig) FrameInterval() time.Duration {
	fps := c.FPS
	if fps < 1 {
		fps = netcanvas.DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
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
