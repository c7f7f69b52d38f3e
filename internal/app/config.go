package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/gridflow/internal/script"
)

// Publisher names accepted by Config.Publisher.
const (
	PublisherLog      = "log"
	PublisherPrint    = "print"
	PublisherDir      = "dir"
	PublisherSocketIO = "socketio"
	PublisherHTTP     = "http"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScriptPath string `mapstructure:"script"` // hcl file or directory
	Entry      string `mapstructure:"entry"`
	Mode       string `mapstructure:"mode"`

	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`

	Publisher         string `mapstructure:"publisher"` // default publish backend
	PublishDir        string `mapstructure:"publish_dir"`
	PublishURL        string `mapstructure:"publish_url"`
	SocketIOURL       string `mapstructure:"socketio_url"`
	SocketIONamespace string `mapstructure:"socketio_namespace"`

	DiagnosticsPort int `mapstructure:"diagnostics_port"`
}

// NewConfig fills defaults into cfg and validates it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScriptPath == "" {
		return nil, errors.New("script is a required configuration field and cannot be empty")
	}

	if cfg.Mode == "" {
		cfg.Mode = string(script.ModeModule)
	}
	if _, err := script.ParseMode(cfg.Mode); err != nil {
		return nil, err
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log_format '%s': must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log_level '%s': must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Publisher == "" {
		cfg.Publisher = PublisherLog
	}
	switch cfg.Publisher {
	case PublisherLog, PublisherPrint:
	case PublisherDir:
		if cfg.PublishDir == "" {
			return nil, errors.New("publisher 'dir' needs publish_dir")
		}
	case PublisherHTTP:
		if cfg.PublishURL == "" {
			return nil, errors.New("publisher 'http' needs publish_url")
		}
	case PublisherSocketIO:
		if cfg.SocketIOURL == "" {
			return nil, errors.New("publisher 'socketio' needs socketio_url")
		}
	default:
		return nil, fmt.Errorf("unknown publisher '%s'", cfg.Publisher)
	}

	if cfg.DiagnosticsPort < 0 || cfg.DiagnosticsPort > 65535 {
		return nil, fmt.Errorf("diagnostics_port %d is out of range", cfg.DiagnosticsPort)
	}

	return &cfg, nil
}
