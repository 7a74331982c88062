package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ashwch/hearth/internal/appdirs"
	"github.com/ashwch/hearth/internal/translation"
	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

type ComponentConfig struct {
	Domain    string   `toml:"domain" json:"domain"`
	Platforms []string `toml:"platforms,omitempty" json:"platforms,omitempty"`
}

type UIConfig struct {
	Backend string `toml:"backend" json:"backend" env:"HEARTH_UI"`
}

type LogConfig struct {
	Level string `toml:"level" json:"level" env:"HEARTH_LOG_LEVEL"`
	Color bool   `toml:"color" json:"color" env:"HEARTH_LOG_COLOR"`
}

type Config struct {
	Version    int               `toml:"version" json:"version"`
	Language   string            `toml:"language" json:"language" env:"HEARTH_LANGUAGE"`
	Components []ComponentConfig `toml:"components" json:"components"`
	UI         UIConfig          `toml:"ui" json:"ui"`
	Log        LogConfig         `toml:"log" json:"log"`

	dir string
}

func Default() Config {
	return Config{
		Version:  1,
		Language: translation.DefaultLanguage,
		UI: UIConfig{
			Backend: "auto",
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}

// Dir is the configuration directory every hub path resolves against.
func (c Config) Dir() string {
	return c.dir
}

// Path joins parts onto the configuration directory.
func (c Config) Path(parts ...string) string {
	return filepath.Join(append([]string{c.dir}, parts...)...)
}

func LoadOrCreate() (Config, string, error) {
	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return Config{}, "", err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, err := appdirs.EnsureConfigDir(); err != nil {
			return Config{}, "", err
		}
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		cfg.dir = filepath.Dir(path)
		if err := cfg.applyEnv(); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	} else if err != nil {
		return Config{}, "", fmt.Errorf("could not stat config path: %w", err)
	}

	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

// Load reads the configuration file at path and applies environment
// overrides. Its directory becomes the hub configuration directory.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads only what is stored at path. Use it when the result is
// saved back, so environment overrides stay out of the file.
func LoadFile(path string) (Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(bytes, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config file: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("could not apply environment overrides: %w", err)
	}
	c.normalize()
	return nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create config dir: %w", err)
	}
	tempFile, err := os.CreateTemp(dir, ".hearth-config-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp config file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp config file permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace config file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure config file permissions: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	c.Language = translation.NormalizeLanguage(c.Language)
	if c.Language == "" {
		c.Language = defaults.Language
	}
	c.UI.Backend = normalizeUIBackend(c.UI.Backend, defaults.UI.Backend)
	c.Log.Level = normalizeLogLevel(c.Log.Level, defaults.Log.Level)
	c.Components = normalizeComponents(c.Components)
}

func normalizeComponents(in []ComponentConfig) []ComponentConfig {
	if len(in) == 0 {
		return nil
	}
	index := map[string]int{}
	out := make([]ComponentConfig, 0, len(in))
	for _, comp := range in {
		domain := strings.ToLower(strings.TrimSpace(comp.Domain))
		if domain == "" {
			continue
		}
		pos, ok := index[domain]
		if !ok {
			pos = len(out)
			index[domain] = pos
			out = append(out, ComponentConfig{Domain: domain})
		}
		for _, platform := range comp.Platforms {
			platform = strings.ToLower(strings.TrimSpace(platform))
			if platform == "" || containsString(out[pos].Platforms, platform) {
				continue
			}
			out[pos].Platforms = append(out[pos].Platforms, platform)
		}
	}
	return out
}

// ComponentNames lists every configured domain and domain.platform pair.
func (c Config) ComponentNames() []string {
	names := make([]string, 0, len(c.Components))
	for _, comp := range c.Components {
		names = append(names, comp.Domain)
		for _, platform := range comp.Platforms {
			names = append(names, comp.Domain+"."+platform)
		}
	}
	return names
}

func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	switch key {
	case "language":
		normalized := translation.NormalizeLanguage(value)
		if normalized == "" {
			return fmt.Errorf("language must be a language code like en, de, pt-BR")
		}
		c.Language = normalized
	case "ui.backend":
		c.UI.Backend = normalizeUIBackend(value, "")
		if c.UI.Backend == "" {
			return fmt.Errorf("ui.backend must be one of auto|bubbletea|huh|tview|plain")
		}
	case "log.level":
		c.Log.Level = normalizeLogLevel(value, "")
		if c.Log.Level == "" {
			return fmt.Errorf("log.level must be one of debug|info|warn|error")
		}
	case "log.color":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("log.color must be boolean")
		}
		c.Log.Color = b
	case "components":
		c.Components = parseComponentList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	c.normalize()
	return nil
}

func (c Config) Get(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))

	switch key {
	case "language":
		return c.Language, nil
	case "ui.backend":
		return c.UI.Backend, nil
	case "log.level":
		return c.Log.Level, nil
	case "log.color":
		return strconv.FormatBool(c.Log.Color), nil
	case "components":
		return strings.Join(c.ComponentNames(), ","), nil
	case "version":
		return fmt.Sprintf("%d", c.Version), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Keys returns every key accepted by Get, sorted.
func Keys() []string {
	keys := []string{"components", "language", "log.color", "log.level", "ui.backend", "version"}
	sort.Strings(keys)
	return keys
}

// parseComponentList accepts "switch.test,light,test_package" and groups
// platforms under their domain.
func parseComponentList(value string) []ComponentConfig {
	var out []ComponentConfig
	index := map[string]int{}
	for _, item := range splitCommaList(value) {
		domain, platform, _ := strings.Cut(item, ".")
		pos, ok := index[domain]
		if !ok {
			pos = len(out)
			index[domain] = pos
			out = append(out, ComponentConfig{Domain: domain})
		}
		if platform != "" {
			out[pos].Platforms = append(out[pos].Platforms, platform)
		}
	}
	return out
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool: %s", value)
	}
}

func splitCommaList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

func normalizeUIBackend(value string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "auto", "bubbletea", "huh", "tview", "plain":
		return normalized
	default:
		return strings.ToLower(strings.TrimSpace(fallback))
	}
}

func normalizeLogLevel(value string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "debug", "info", "error":
		return normalized
	case "warn", "warning":
		return "warn"
	default:
		return strings.ToLower(strings.TrimSpace(fallback))
	}
}
