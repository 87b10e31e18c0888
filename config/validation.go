package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	var errs []string

	if s.Address == "" {
		errs = append(errs, "address cannot be empty")
	}

	if s.ReadTimeout <= 0 {
		errs = append(errs, "read_timeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		errs = append(errs, "write_timeout must be positive")
	}

	if s.IdleTimeout <= 0 {
		errs = append(errs, "idle_timeout must be positive")
	}

	if s.ReadHeaderTimeout <= 0 {
		errs = append(errs, "read_header_timeout must be positive")
	}

	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "shutdown_timeout must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates storage configuration
func (s *StorageConfig) Validate() error {
	var errs []string

	switch s.Board {
	case "memory", "redis":
	default:
		errs = append(errs, "board must be one of: memory, redis")
	}

	switch s.Store {
	case "memory", "sql":
	default:
		errs = append(errs, "store must be one of: memory, sql")
	}

	if s.Board == "redis" && s.Redis.Addr == "" {
		errs = append(errs, "redis config: addr cannot be empty")
	}

	if s.Store == "sql" {
		if s.SQL.Driver == "" {
			errs = append(errs, "sql config: driver cannot be empty")
		}
		if s.SQL.DSN == "" {
			errs = append(errs, "sql config: dsn cannot be empty")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates session configuration
func (s *SessionConfig) Validate() error {
	if s.TTL <= 0 {
		return errors.New("ttl must be positive")
	}
	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var errs []string

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "level must be one of: debug, info, warn, error")
	}

	switch l.Format {
	case "json", "text":
	default:
		errs = append(errs, "format must be one of: json, text")
	}

	switch l.Output {
	case "stdout", "stderr":
	default:
		errs = append(errs, "output must be one of: stdout, stderr")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates security settings
func (s *SecurityConfig) Validate() error {
	var errs []string

	if s.EnableRateLimit {
		if s.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, "rate_limit.requests_per_minute must be > 0 when rate limiting is enabled")
		}
		if s.RateLimit.BurstSize <= 0 {
			errs = append(errs, "rate_limit.burst_size must be > 0 when rate limiting is enabled")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates webhook settings
func (w *WebhookConfig) Validate() error {
	for i, ep := range w.Endpoints {
		if strings.TrimSpace(ep) == "" {
			return fmt.Errorf("endpoints[%d] is empty", i)
		}
	}
	return nil
}
