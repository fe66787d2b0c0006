// Package config loads the JSON configuration shared by the commands.
//
//	{
//	  "log_level": "info",
//	  "data_dir": "",
//	  "server": { "addr": ":8080", "allowed_origins": ["http://localhost:5173"] },
//	  "ui": { "sound": true, "show_targets": true }
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Environment variables consulted by FromEnv.
const (
	EnvPath     = "RANKWAR_CONFIG"
	EnvAddr     = "RANKWAR_ADDR"
	EnvLogLevel = "RANKWAR_LOG_LEVEL"
	EnvDataDir  = "RANKWAR_DATA_DIR"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Server struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type UI struct {
	Sound       bool `json:"sound"`
	ShowTargets bool `json:"show_targets"`
}

type Config struct {
	LogLevel string `json:"log_level"`
	// DataDir overrides the platform data directory used for storage.
	DataDir string `json:"data_dir"`
	Server  Server `json:"server"`
	UI      UI     `json:"ui"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		UI: UI{Sound: true, ShowTargets: true},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the file named by path, or by $RANKWAR_CONFIG when path is
// empty, then applies environment overrides. Without any file it starts from
// Default.
func Resolve(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	cfg = FromEnv(cfg)
	return cfg, cfg.Validate()
}

// FromEnv returns cfg with RANKWAR_ADDR, RANKWAR_LOG_LEVEL and
// RANKWAR_DATA_DIR applied.
func FromEnv(cfg Config) Config {
	if v := getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	return cfg
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// Validate checks the log level and server address.
func (c Config) Validate() error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	if !strings.Contains(c.Server.Addr, ":") {
		return fmt.Errorf("%w: server.addr %q has no port", ErrInvalid, c.Server.Addr)
	}
	for _, o := range c.Server.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("%w: allowed origin %q", ErrInvalid, o)
		}
	}
	return nil
}
