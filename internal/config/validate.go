package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider.Type)) {
	case "openai":
		if strings.TrimSpace(cfg.Provider.APIKeyEnv) == "" {
			return errors.New("provider.api_key_env must be set for the openai provider")
		}
		if err := validateHTTPURL("provider.base_url", cfg.Provider.BaseURL); err != nil {
			return err
		}
	case "fake":
		// no upstream; used for tests and demos
	default:
		return fmt.Errorf("provider.type must be openai or fake, got %q", cfg.Provider.Type)
	}

	if cfg.Engine.SmoothingAlpha <= 0 || cfg.Engine.SmoothingAlpha > 1 {
		return fmt.Errorf("engine.smoothing_alpha must be in (0,1], got %v", cfg.Engine.SmoothingAlpha)
	}
	if cfg.Engine.MinTokensForSmoothing < cfg.Engine.MinTokensForLSM {
		return fmt.Errorf("engine.min_tokens_for_smoothing (%d) must not be below engine.min_tokens_for_lsm (%d)",
			cfg.Engine.MinTokensForSmoothing, cfg.Engine.MinTokensForLSM)
	}
	if cfg.Engine.GuardrailCeiling <= 0 {
		return errors.New("engine.guardrail_ceiling must be positive")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Sessions.Backend)) {
	case "file":
		if strings.TrimSpace(cfg.Sessions.Dir) == "" {
			return errors.New("sessions.dir must be set for the file backend")
		}
	case "redis":
		if strings.TrimSpace(cfg.Sessions.Redis.Addr) == "" {
			return errors.New("sessions.redis.addr must be set for the redis backend")
		}
	default:
		return fmt.Errorf("sessions.backend must be file or redis, got %q", cfg.Sessions.Backend)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.EventLog.Level)) {
	case "metadata", "redacted", "full":
	default:
		return fmt.Errorf("event_log.level must be metadata, redacted or full, got %q", cfg.EventLog.Level)
	}
	if cfg.EventLog.ArchiveURL != "" {
		if err := validateHTTPURL("event_log.archive_url", cfg.EventLog.ArchiveURL); err != nil {
			return err
		}
	}

	if cfg.Telemetry.Enabled {
		if strings.TrimSpace(cfg.Telemetry.Endpoint) == "" {
			return errors.New("telemetry enabled but endpoint is empty")
		}
		switch strings.ToLower(strings.TrimSpace(cfg.Telemetry.Protocol)) {
		case "", "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", cfg.Telemetry.Protocol)
		}
	}

	return nil
}

func validateHTTPURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL", field)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https", field)
	}
	return nil
}
