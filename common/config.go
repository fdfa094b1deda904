package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the settings shared by the print and serve commands
type Config struct {
	Port       string `toml:"port"`
	DBPath     string `toml:"db_path"`
	UploadsDir string `toml:"uploads_dir"`
	OutputDir  string `toml:"output_dir"`
	Workers    int    `toml:"workers"`
	Delimiter  string `toml:"delimiter"`
	Unordered  bool   `toml:"unordered"`
	JWTSecret  string `toml:"jwt_secret"`
}

// DefaultConfig returns the configuration used when nothing else is set
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads an optional TOML file, then applies environment overrides and defaults.
// An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		path = os.ExpandEnv(path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if _, verr := ValidateDelimiter(cfg.Delimiter); verr != nil {
		return nil, fmt.Errorf("invalid config: %s", verr.Message)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("CSVSTREAM_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CSVSTREAM_UPLOADS_DIR"); v != "" {
		c.UploadsDir = v
	}
	if v := os.Getenv("CSVSTREAM_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("CSVSTREAM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CSVSTREAM_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("CSVSTREAM_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.DBPath == "" {
		c.DBPath = "csvstream.db"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "./uploads"
	}
	if c.OutputDir == "" {
		c.OutputDir = "./output"
	}
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
}

// DelimiterByte returns the configured delimiter. LoadConfig has already validated it.
func (c *Config) DelimiterByte() byte {
	if len(c.Delimiter) != 1 {
		return ','
	}
	return c.Delimiter[0]
}
