package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	xdgAppName  = "taskboard"
	configFile  = "config.toml"
	secretsFile = "secrets.toml"

	DefaultListen          = ":8080"
	DefaultSpreadsheetName = "ProjectFramework"
	DefaultEffortMin       = 1
	DefaultEffortMax       = 13
	DefaultEffort          = 5
	DefaultCacheTTL        = 5 * time.Second
	DefaultSessionTTL      = 12 * time.Hour

	LookupStrict = "strict"
	LookupIgnore = "ignore"

	SessionsMemory = "memory"
	SessionsRedis  = "redis"

	configDirEnvKey      = "TASKBOARD_CONFIG_DIR"
	listenEnvKey         = "TASKBOARD_LISTEN"
	serviceAccountEnvKey = "TASKBOARD_SERVICE_ACCOUNT_FILE"
	redisURLEnvKey       = "TASKBOARD_REDIS_URL"
	logLevelEnvKey       = "TASKBOARD_LOG_LEVEL"
)

// ErrNoPasswords is returned when the secrets file defines no login.
var ErrNoPasswords = errors.New("no passwords configured")

// Columns maps task fields to the header names found in the sheet.
type Columns struct {
	ID     string `toml:"id"`
	Title  string `toml:"title"`
	Owner  string `toml:"owner"`
	Status string `toml:"status"`
	Effort string `toml:"effort"`
}

type Spreadsheet struct {
	Name      string  `toml:"name"`
	ID        string  `toml:"id"`
	Worksheet string  `toml:"worksheet"`
	Columns   Columns `toml:"columns"`
}

type Effort struct {
	Min     int `toml:"min"`
	Max     int `toml:"max"`
	Default int `toml:"default"`
}

type Sessions struct {
	Backend  string `toml:"backend"`
	RedisURL string `toml:"redis_url"`
	TTL      string `toml:"ttl"`
}

type Config struct {
	Listen             string      `toml:"listen"`
	LogLevel           string      `toml:"log_level"`
	ServiceAccountFile string      `toml:"service_account_file"`
	Spreadsheet        Spreadsheet `toml:"spreadsheet"`
	Owners             []string    `toml:"owners"`
	Effort             Effort      `toml:"effort"`
	LookupPolicy       string      `toml:"lookup_policy"`
	CacheTTL           string      `toml:"cache_ttl"`
	Sessions           Sessions    `toml:"sessions"`

	Dir string `toml:"-"`
}

// Secrets holds the login mapping. It lives in its own file and is never logged.
type Secrets struct {
	Passwords map[string]string `toml:"passwords"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen: DefaultListen,
		Spreadsheet: Spreadsheet{
			Name: DefaultSpreadsheetName,
			Columns: Columns{
				ID:     "id",
				Title:  "title",
				Owner:  "owner",
				Status: "status",
				Effort: "effort",
			},
		},
		Owners:       []string{"Ana", "Carlos", "Luis", "Sofía", "Equipo"},
		Effort:       Effort{Min: DefaultEffortMin, Max: DefaultEffortMax, Default: DefaultEffort},
		LookupPolicy: LookupStrict,
		CacheTTL:     DefaultCacheTTL.String(),
		Sessions:     Sessions{Backend: SessionsMemory, TTL: DefaultSessionTTL.String()},
	}
}

// GetConfigDir returns the directory holding config.toml and secrets.toml.
func GetConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return dir, nil
	}
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}

// Load reads config.toml from the config directory, falling back to defaults
// when it does not exist, then applies environment overrides.
func Load() (*Config, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadDir(dir)
}

func LoadDir(dir string) (*Config, error) {
	cfg := Default()
	cfg.Dir = dir

	path := filepath.Join(dir, configFile)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}
	cfg.Dir = dir
	applyEnv(cfg)

	if cfg.ServiceAccountFile == "" {
		cfg.ServiceAccountFile = filepath.Join(dir, "service_account.json")
	} else if !filepath.IsAbs(cfg.ServiceAccountFile) {
		cfg.ServiceAccountFile = filepath.Join(dir, cfg.ServiceAccountFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(listenEnvKey)); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv(serviceAccountEnvKey)); v != "" {
		cfg.ServiceAccountFile = v
	}
	if v := strings.TrimSpace(os.Getenv(redisURLEnvKey)); v != "" {
		cfg.Sessions.Backend = SessionsRedis
		cfg.Sessions.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv(logLevelEnvKey)); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if c.Spreadsheet.Name == "" && c.Spreadsheet.ID == "" {
		return fmt.Errorf("spreadsheet name or id is required")
	}
	cols := c.Spreadsheet.Columns
	for field, header := range map[string]string{
		"id": cols.ID, "title": cols.Title, "owner": cols.Owner, "status": cols.Status, "effort": cols.Effort,
	} {
		if strings.TrimSpace(header) == "" {
			return fmt.Errorf("spreadsheet.columns.%s must not be empty", field)
		}
	}
	if c.Effort.Min < 1 || c.Effort.Max < c.Effort.Min {
		return fmt.Errorf("invalid effort range [%d, %d]", c.Effort.Min, c.Effort.Max)
	}
	if c.Effort.Default < c.Effort.Min || c.Effort.Default > c.Effort.Max {
		c.Effort.Default = c.Effort.Min
	}
	switch c.LookupPolicy {
	case LookupStrict, LookupIgnore:
	case "":
		c.LookupPolicy = LookupStrict
	default:
		return fmt.Errorf("invalid lookup_policy %q (want %q or %q)", c.LookupPolicy, LookupStrict, LookupIgnore)
	}
	if _, err := c.CacheTTLDuration(); err != nil {
		return err
	}
	switch c.Sessions.Backend {
	case SessionsMemory, "":
		c.Sessions.Backend = SessionsMemory
	case SessionsRedis:
		if c.Sessions.RedisURL == "" {
			return fmt.Errorf("sessions.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid sessions.backend %q", c.Sessions.Backend)
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	return nil
}

// CacheTTLDuration parses cache_ttl. Zero disables the task snapshot cache.
func (c *Config) CacheTTLDuration() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid cache_ttl %q", c.CacheTTL)
	}
	return d, nil
}

func (c *Config) SessionTTL() (time.Duration, error) {
	if c.Sessions.TTL == "" {
		return DefaultSessionTTL, nil
	}
	d, err := time.ParseDuration(c.Sessions.TTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid sessions.ttl %q", c.Sessions.TTL)
	}
	return d, nil
}

// LoadSecrets reads secrets.toml. A missing file or an empty password table
// is a configuration error.
func (c *Config) LoadSecrets() (*Secrets, error) {
	path := filepath.Join(c.Dir, secretsFile)
	var s Secrets
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("failed to read secrets %s: %w", path, err)
	}
	if len(s.Passwords) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPasswords)
	}
	return &s, nil
}

// Save writes the configuration to config.toml in c.Dir.
func Save(cfg *Config) error {
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = GetConfigDir(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, configFile), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
