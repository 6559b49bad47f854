package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	DefaultConfigFileName = "nupkgreports.yml"
	DefaultEnvFileName    = ".env"
	DefaultArchiveExt     = ".nupkg"
	ReportExt             = ".xlsx"

	EnvLogLevel        = "NUPKGREPORTS_LOG_LEVEL"
	EnvArchiveExt      = "NUPKGREPORTS_ARCHIVE_EXT"
	EnvContinueOnError = "NUPKGREPORTS_CONTINUE_ON_ERROR"

	idColumnWidth     = 50
	folderColumnWidth = 20
	folderColumns     = 24
)

type IndexerConfig struct {
	WorkDir         string `yaml:"-"`
	ArchiveExt      string `yaml:"archive_ext"`
	ContinueOnError bool   `yaml:"continue_on_error"`
}

type SheetConfig struct {
	ColumnWidths []float64 `yaml:"column_widths"`
}

type Config struct {
	LogLevel      string        `yaml:"log_level"`
	IndexerConfig IndexerConfig `yaml:"indexer"`
	SheetConfig   SheetConfig   `yaml:"sheet"`
	OutputDir     string        `yaml:"-"`
}

func (c *Config) SetDefaults() {
	c.LogLevel = LogLevelInfo
	c.IndexerConfig.ArchiveExt = DefaultArchiveExt

	widths := make([]float64, 0, folderColumns+1)
	widths = append(widths, idColumnWidth)
	for i := 0; i < folderColumns; i++ {
		widths = append(widths, folderColumnWidth)
	}
	c.SheetConfig.ColumnWidths = widths
}

// Load reads the yaml config and applies environment overrides.
// A missing file is fine when it is the default one.
func Load(cfgPath string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	data, err := os.ReadFile(cfgPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", cfgPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && cfgPath == DefaultConfigFileName:
	default:
		return nil, fmt.Errorf("cannot read config file %s: %w", cfgPath, err)
	}

	if err := godotenv.Load(DefaultEnvFileName); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load env file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad(cfgPath string) *Config {
	cfg, err := Load(cfgPath)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}

	if v, ok := os.LookupEnv(EnvArchiveExt); ok && v != "" {
		c.IndexerConfig.ArchiveExt = v
	}

	if v, ok := os.LookupEnv(EnvContinueOnError); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvContinueOnError, v, err)
		}
		c.IndexerConfig.ContinueOnError = b
	}

	return nil
}
