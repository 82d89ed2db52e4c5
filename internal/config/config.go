// Package config implements rossby's layered configuration: command-line
// flags override environment variables, which override an optional JSON
// config file, which overrides hardcoded defaults. The flag/env wiring
// follows the teacher's cmd/query/main.go parseopts() idiom; the file/
// defaults layering follows the original Rust implementation's
// config.rs precedence.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pborman/getopt/v2"

	"github.com/rossby-project/rossby/internal/rerror"
)

// ServerConfig holds the HTTP-facing settings.
type ServerConfig struct {
	Host          string `json:"host"`
	Port          uint32 `json:"port"`
	Workers       int    `json:"workers"`
	MaxDataPoints int    `json:"max_data_points"`
	Metrics       bool   `json:"metrics"`
	MetricsPort   uint32 `json:"metrics_port"`
}

// DataConfig holds dataset-processing settings.
type DataConfig struct {
	InterpolationMethod string            `json:"interpolation_method"`
	DimensionAliases    map[string]string `json:"dimension_aliases"`
	FilePath            string            `json:"file_path"`
}

// Config is the fully merged configuration used to start the server.
type Config struct {
	Server   ServerConfig `json:"server"`
	Data     DataConfig   `json:"data"`
	LogLevel string       `json:"log_level"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:          "127.0.0.1",
			Port:          8000,
			Workers:       0,
			MaxDataPoints: 10_000_000,
			Metrics:       false,
			MetricsPort:   9091,
		},
		Data: DataConfig{
			InterpolationMethod: "bilinear",
			DimensionAliases:    map[string]string{},
		},
		LogLevel: "info",
	}
}

func parseAsUint32(fallback uint32, value string) uint32 {
	if len(value) == 0 {
		return fallback
	}
	out, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return fallback
	}
	return uint32(out)
}

func parseAsInt(fallback int, value string) int {
	if len(value) == 0 {
		return fallback
	}
	out, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return out
}

func parseAsString(fallback, value string) string {
	if len(value) == 0 {
		return fallback
	}
	return value
}

func parseAsBool(fallback bool, value string) bool {
	out, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return out
}

// Load builds the merged Config from an optional JSON file (path taken
// from --config/ROSSBY_CONFIG) and command-line flags/environment
// variables, flags winning last. The path to the NetCDF (or
// azblob://container/blob) source is returned separately since it is a
// positional argument, not a config field. Load parses os.Args directly,
// the way the teacher's parseopts() does.
func Load() (Config, string, error) {
	cfg := defaults()

	configPath := parseAsString("", os.Getenv("ROSSBY_CONFIG"))
	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		if (arg == "--config" || arg == "-c") && i+1 < len(os.Args) {
			configPath = os.Args[i+1]
		} else if strings.HasPrefix(arg, "--config=") {
			configPath = strings.TrimPrefix(arg, "--config=")
		}
	}
	if configPath != "" {
		fileCfg, err := loadFromFile(configPath)
		if err != nil {
			return Config{}, "", err
		}
		cfg = merge(cfg, fileCfg)
	}

	help := getopt.BoolLong("help", 0, "print this help text")

	host := parseAsString(cfg.Server.Host, os.Getenv("ROSSBY_HOST"))
	port := parseAsUint32(cfg.Server.Port, os.Getenv("ROSSBY_PORT"))
	workers := parseAsInt(cfg.Server.Workers, os.Getenv("ROSSBY_WORKERS"))
	maxPoints := parseAsInt(cfg.Server.MaxDataPoints, os.Getenv("ROSSBY_MAX_DATA_POINTS"))
	interp := parseAsString(cfg.Data.InterpolationMethod, os.Getenv("ROSSBY_INTERPOLATION_METHOD"))
	configFlag := configPath
	logLevel := parseAsString(cfg.LogLevel, os.Getenv("ROSSBY_LOG_LEVEL"))
	metricsOn := parseAsBool(cfg.Server.Metrics, os.Getenv("ROSSBY_METRICS"))
	metricsPort := parseAsUint32(cfg.Server.MetricsPort, os.Getenv("ROSSBY_METRICS_PORT"))

	getopt.FlagLong(&host, "host", 'H', "Host address to bind to.\nCan also be set by environment variable 'ROSSBY_HOST'", "string")
	getopt.FlagLong(&port, "port", 'p', "Port to listen on.\nCan also be set by environment variable 'ROSSBY_PORT'", "int")
	getopt.FlagLong(&workers, "workers", 'w', "Number of worker threads, 0 means GOMAXPROCS.\nCan also be set by environment variable 'ROSSBY_WORKERS'", "int")
	getopt.FlagLong(&maxPoints, "max-data-points", 0, "Maximum data points returned by a single request.\nCan also be set by environment variable 'ROSSBY_MAX_DATA_POINTS'", "int")
	getopt.FlagLong(&interp, "interpolation-method", 0, "Default interpolation method (nearest, bilinear, bicubic).\nCan also be set by environment variable 'ROSSBY_INTERPOLATION_METHOD'", "string")
	getopt.FlagLong(&configFlag, "config", 'c', "Path to JSON configuration file.\nCan also be set by environment variable 'ROSSBY_CONFIG'", "string")
	getopt.FlagLong(&logLevel, "log-level", 0, "Log level (trace, debug, info, warn, error).\nCan also be set by environment variable 'ROSSBY_LOG_LEVEL'", "string")
	getopt.FlagLong(&metricsOn, "metrics", 0, "Turn on server metrics, posted to /metrics using the prometheus data model.\nCan also be set by environment variable 'ROSSBY_METRICS'")
	getopt.FlagLong(&metricsPort, "metrics-port", 0, "Port to host the /metrics endpoint on, always separate from the main server port.\nCan also be set by environment variable 'ROSSBY_METRICS_PORT'", "int")

	getopt.Parse()
	if *help {
		getopt.Usage()
		os.Exit(0)
	}

	cfg.Server.Host = host
	cfg.Server.Port = port
	cfg.Server.Workers = workers
	cfg.Server.MaxDataPoints = maxPoints
	cfg.Server.Metrics = metricsOn
	cfg.Server.MetricsPort = metricsPort
	cfg.Data.InterpolationMethod = interp
	cfg.LogLevel = logLevel

	remaining := getopt.Args()
	datasetPath := ""
	if len(remaining) > 0 {
		datasetPath = remaining[0]
	} else if cfg.Data.FilePath != "" {
		datasetPath = cfg.Data.FilePath
	}

	return cfg, datasetPath, nil
}

func loadFromFile(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &rerror.ConfigError{Message: "reading config file: " + err.Error()}
	}
	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return Config{}, &rerror.ConfigError{Message: "parsing config file: " + err.Error()}
	}
	return cfg, nil
}

// merge overlays other onto base, other's non-zero fields winning.
func merge(base, other Config) Config {
	if other.Server.Host != "" {
		base.Server.Host = other.Server.Host
	}
	if other.Server.Port != 0 {
		base.Server.Port = other.Server.Port
	}
	if other.Server.Workers != 0 {
		base.Server.Workers = other.Server.Workers
	}
	if other.Server.MaxDataPoints != 0 {
		base.Server.MaxDataPoints = other.Server.MaxDataPoints
	}
	if other.Server.Metrics {
		base.Server.Metrics = other.Server.Metrics
	}
	if other.Server.MetricsPort != 0 {
		base.Server.MetricsPort = other.Server.MetricsPort
	}
	if other.Data.InterpolationMethod != "" {
		base.Data.InterpolationMethod = other.Data.InterpolationMethod
	}
	if len(other.Data.DimensionAliases) > 0 {
		base.Data.DimensionAliases = other.Data.DimensionAliases
	}
	if other.Data.FilePath != "" {
		base.Data.FilePath = other.Data.FilePath
	}
	if other.LogLevel != "" {
		base.LogLevel = other.LogLevel
	}
	return base
}

var validLogLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
var validInterpolations = map[string]bool{"nearest": true, "bilinear": true, "bicubic": true}

// Validate rejects configurations that would produce a broken server,
// mirroring config.rs's Config::validate checks.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Host) == "" {
		return &rerror.ConfigError{Message: "server host cannot be empty"}
	}
	if c.Server.Port == 0 {
		return &rerror.ConfigError{Message: "server port cannot be 0"}
	}
	if !validLogLevels[c.LogLevel] {
		return &rerror.ConfigError{Message: "invalid log level: " + c.LogLevel + ", must be one of trace, debug, info, warn, error"}
	}
	if !validInterpolations[c.Data.InterpolationMethod] {
		return &rerror.ConfigError{Message: "invalid interpolation method: " + c.Data.InterpolationMethod + ", must be one of nearest, bilinear, bicubic"}
	}
	return nil
}
