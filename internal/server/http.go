package server

import (
	"context"
	"time"

	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/types"
)

// Analyzer runs one job analysis
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error)
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Value of Access-Control-Allow-Origin on every response
	AllowedOrigin string

	// Analyzer handles /api/analyze; Start builds one from AppConfig when nil
	Analyzer Analyzer

	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	AllowedOrigin  string
}

// ServerConfigFrom derives server settings from the application config
func ServerConfigFrom(appCfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		TLSConfig:      appCfg.Server.TLS,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.App.MaxRequestSize,
		AllowedOrigin:  appCfg.Server.CORS.AllowedOrigin,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *errors.Logger) *Server {
	allowedOrigin := cfg.AllowedOrigin
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		AllowedOrigin:  allowedOrigin,
		Logger:         logger,
	}
}
