package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS attaches a TLS configuration when server mode is enabled
func (s *Server) configureTLS(httpServer *http.Server) error {
	if s.TLSConfig.Mode != "server" {
		return nil
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to configure TLS: %w", err)
	}

	httpServer.TLSConfig = tlsConfig
	return nil
}

// buildTLSConfig creates the TLS configuration
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	cert, err := s.loadServerCertificate()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion:   s.TLSConfig.MinTLSVersion(),
		Certificates: []tls.Certificate{cert},
	}, nil
}

// loadServerCertificate loads the server certificate from files
func (s *Server) loadServerCertificate() (tls.Certificate, error) {
	if s.TLSConfig.CertFile == "" || s.TLSConfig.KeyFile == "" {
		return tls.Certificate{}, fmt.Errorf("TLS certificate and key files are required")
	}

	cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
	}
	return cert, nil
}
