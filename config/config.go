// Package config loads settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/QuangTung97/buddysim/allocator"
	"github.com/QuangTung97/buddysim/logger"
)

// Environment variable names
const (
	EnvCapacity    = "BUDDYSIM_CAPACITY"
	EnvListen      = "BUDDYSIM_LISTEN"
	EnvMaxSessions = "BUDDYSIM_MAX_SESSIONS"
	EnvTraceDB     = "BUDDYSIM_TRACE_DB"
	EnvLogLevel    = "BUDDYSIM_LOG_LEVEL"
	EnvLogFormat   = "BUDDYSIM_LOG_FORMAT"
)

// Config ...
type Config struct {
	Capacity    int
	Listen      string
	MaxSessions int
	TraceDB     string // empty disables the sqlite trace
	LogLevel    slog.Level
	LogJSON     bool
}

// Default ...
func Default() Config {
	return Config{
		Capacity:    1024,
		Listen:      ":8080",
		MaxSessions: 64,
		LogLevel:    slog.LevelInfo,
	}
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables already set, then builds the Config.
// An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return FromEnv()
}

// FromEnv builds the Config from environment variables only
func FromEnv() (Config, error) {
	conf := Default()

	if err := intFromEnv(EnvCapacity, &conf.Capacity); err != nil {
		return Config{}, err
	}
	if err := intFromEnv(EnvMaxSessions, &conf.MaxSessions); err != nil {
		return Config{}, err
	}
	if v, ok := os.LookupEnv(EnvListen); ok && v != "" {
		conf.Listen = v
	}
	conf.TraceDB = os.Getenv(EnvTraceDB)

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		conf.LogLevel = level
	}

	switch format := strings.ToLower(os.Getenv(EnvLogFormat)); format {
	case "", "text":
	case "json":
		conf.LogJSON = true
	default:
		return Config{}, fmt.Errorf("%s: unknown log format %q", EnvLogFormat, format)
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func intFromEnv(name string, dst *int) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

// Validate ...
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must > 0, got %d", c.Capacity)
	}
	if c.Capacity > allocator.MaxCapacity {
		return fmt.Errorf("capacity must <= %d, got %d", allocator.MaxCapacity, c.Capacity)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must > 0, got %d", c.MaxSessions)
	}
	return nil
}

// LoggerOptions ...
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Enabled: true,
		Level:   c.LogLevel,
		JSON:    c.LogJSON,
	}
}
