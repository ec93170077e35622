package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config is the root client configuration.
type Config struct {
	API APIConfig `yaml:"api"`
	Log LogConfig `yaml:"log"`
	TUI TUIConfig `yaml:"tui"`
}

// APIConfig points the client at a single catalog API origin.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"CATALOG_API_URL"     env-default:"http://localhost:3001"`
	Timeout time.Duration `yaml:"timeout"  env:"CATALOG_API_TIMEOUT" env-default:"30s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"CATALOG_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"CATALOG_LOG_FORMAT" env-default:"text"`
}

// TUIConfig holds optional preferences for the interactive TUI.
type TUIConfig struct {
	// Theme is "light", "dark" or "auto".
	Theme string `yaml:"theme" env:"CATALOG_TUI_THEME" env-default:"auto"`
	// StartView selects the first screen (domains, diagrams, approvals, dashboard).
	StartView string `yaml:"start_view" env:"CATALOG_TUI_START_VIEW" env-default:"domains"`
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.catalog).
	if v := strings.TrimSpace(os.Getenv("CATALOG_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".catalog"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Read reads configuration from a YAML file and environment variables without
// validating it, so callers can apply overrides first.
// Priority: ENV > YAML > defaults (via env-default tags). Variables that are set
// but blank count as unset.
// An empty path means the default config path; a missing default file is not an error,
// a missing explicit file is.
func Read(path string) (*Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	restore := hideBlankEnv()
	defer restore()

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in defaults with environment overrides applied.
func Default() (*Config, error) {
	restore := hideBlankEnv()
	defer restore()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return &cfg, nil
}

// envNames lists the variables named by env tags in t, depth first.
func envNames(t reflect.Type) []string {
	var out []string
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Struct {
			out = append(out, envNames(f.Type)...)
			continue
		}
		for _, name := range strings.Split(f.Tag.Get("env"), ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// hideBlankEnv unsets config variables that are set to blank so cleanenv falls
// back to their defaults. The returned func puts them back.
func hideBlankEnv() func() {
	hidden := map[string]string{}
	for _, name := range envNames(reflect.TypeOf(Config{})) {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) == "" {
			os.Unsetenv(name)
			hidden[name] = v
		}
	}
	return func() {
		for name, v := range hidden {
			os.Setenv(name, v)
		}
	}
}

// Validate checks the values the client cannot work without.
func (c *Config) Validate() error {
	if err := ValidateBaseURL(c.API.BaseURL); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func ValidateBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url is missing a host: %q", raw)
	}
	return nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// WriteFileAtomic writes b to path through a temp file + rename in the same directory.
func WriteFileAtomic(path string, b []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, b, perm)
}

// Save writes cfg as YAML to path (default config path when empty).
func Save(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, b, 0o600)
}
