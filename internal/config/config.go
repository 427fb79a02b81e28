package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// Config is the on-disk application configuration.
type Config struct {
	DB              string                `toml:"db"`
	Timezone        string                `toml:"timezone"`
	OrdinalMatching constants.OrdinalMode `toml:"ordinal_matching"`
	Debug           bool                  `toml:"debug"`
	LogDir          string                `toml:"log_dir"`
}

// DefaultPath returns ~/.config/pokrok/config.toml.
func DefaultPath() string {
	return filepath.Join(ExpandHome(constants.DefaultConfigDir), constants.DefaultConfigFile)
}

// Default returns the configuration written when no file exists yet.
func Default() Config {
	dir := ExpandHome(constants.DefaultConfigDir)
	return Config{
		DB:              filepath.Join(dir, constants.DefaultDBName),
		Timezone:        constants.DefaultTimezone,
		OrdinalMatching: constants.OrdinalStrict,
		LogDir:          filepath.Join(dir, "logs"),
	}
}

// LoadOrCreate reads the TOML file at path, writing the defaults there first
// if it does not exist. A .env file in the working directory and POKROK_*
// environment variables are applied on top of the file.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	path = ExpandHome(path)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, fmt.Errorf("failed to write default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Missing .env is fine
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the timezone and ordinal matching mode.
func (c Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	switch c.OrdinalMatching {
	case constants.OrdinalStrict, constants.OrdinalWeekdayOnly:
	default:
		return fmt.Errorf("invalid ordinal_matching %q (expected %q or %q)",
			c.OrdinalMatching, constants.OrdinalStrict, constants.OrdinalWeekdayOnly)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(constants.EnvDB); v != "" {
		c.DB = v
	}
	if v := os.Getenv(constants.EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(constants.EnvOrdinalMatching); v != "" {
		c.OrdinalMatching = constants.OrdinalMode(strings.ToLower(v))
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, v, err)
		}
		c.Debug = debug
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.DB == "" {
		c.DB = def.DB
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.OrdinalMatching == "" {
		c.OrdinalMatching = def.OrdinalMatching
	}
	if c.LogDir == "" {
		c.LogDir = def.LogDir
	}
	if !strings.Contains(c.DB, "://") {
		c.DB = ExpandHome(c.DB)
	}
	c.LogDir = ExpandHome(c.LogDir)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
