package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds Kagami backend configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Provider  ProviderConfig  `yaml:"provider"`
	Engine    EngineConfig    `yaml:"engine"`
	Models    ModelsConfig    `yaml:"models"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	EventLog  EventLogConfig  `yaml:"event_log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`            // HTTP listen address, e.g. ":8000"
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS origins for the experiment frontend
}

type ProviderConfig struct {
	Type             string `yaml:"type"`               // "openai" | "fake"
	BaseURL          string `yaml:"base_url"`           // e.g. "https://api.openai.com/v1"
	APIKeyEnv        string `yaml:"api_key_env"`        // e.g. "OPENAI_API_KEY"
	Model            string `yaml:"model"`              // e.g. "gpt-4.1-nano"
	TimeoutSeconds   int    `yaml:"timeout_seconds"`    // generation call cutoff
	MaxResponseBytes int64  `yaml:"max_response_bytes"` // upstream body cap
	MaxTokens        int    `yaml:"max_tokens"`         // completion token limit
	ImageModel       string `yaml:"image_model"`        // avatar generation model
}

// EngineConfig carries the style-adaptation constants. The thresholds are
// experiment calibration values, not derived constants, so they stay
// configurable with the studied values as defaults.
type EngineConfig struct {
	BotName                string  `yaml:"bot_name"`
	SmoothingAlpha         float64 `yaml:"smoothing_alpha"`           // 0.25
	MinTokensForLSM        int     `yaml:"min_tokens_for_lsm"`        // 5
	MinTokensForSmoothing  int     `yaml:"min_tokens_for_smoothing"`  // 15
	ModelInformalThreshold float64 `yaml:"model_informal_threshold"`  // 0.3
	RegexInformalThreshold float64 `yaml:"regex_informal_threshold"`  // 0.1
	GuardrailCeiling       float64 `yaml:"guardrail_ceiling"`         // 0.6
	AdaptiveTemperature    float64 `yaml:"adaptive_temperature"`      // 0.7
	ProfileCacheSize       int     `yaml:"profile_cache_size"`        // 100
	StyleSampleLookback    int     `yaml:"style_sample_lookback"`     // 3 user turns
	StyleSampleMinTokens   int     `yaml:"style_sample_min_tokens"`   // 15
	MaxAvatarGenerations   int     `yaml:"max_avatar_generations"`    // 5
}

type ModelsConfig struct {
	BundleDir  string `yaml:"bundle_dir"`  // formality + embedding ONNX bundle
	SeqLen     int    `yaml:"seq_len"`     // classifier input truncation, tokens
	HiddenSize int    `yaml:"hidden_size"` // embedding encoder hidden dimension
}

type SessionsConfig struct {
	Backend string      `yaml:"backend"` // "file" | "redis"
	Dir     string      `yaml:"dir"`     // file backend state directory
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	DB         int           `yaml:"db"`
	Prefix     string        `yaml:"prefix"`
	TTL        time.Duration `yaml:"ttl"`
	PasswordEnv string       `yaml:"password_env"`
}

type EventLogConfig struct {
	Dir            string `yaml:"dir"`   // per-session JSONL log directory
	Level          string `yaml:"level"` // metadata | redacted | full
	QueueSize      int    `yaml:"queue_size"`
	Workers        int    `yaml:"workers"`
	ArchiveURL     string `yaml:"archive_url"` // optional end-of-session log shipping
	ArchiveTimeout int    `yaml:"archive_timeout_seconds"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
	Service  string `yaml:"service"`
	Version  string `yaml:"version"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns the default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if cfg.Provider.Type == "" {
		cfg.Provider.Type = "openai"
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Provider.APIKeyEnv == "" {
		cfg.Provider.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "gpt-4.1-nano"
	}
	if cfg.Provider.TimeoutSeconds <= 0 {
		cfg.Provider.TimeoutSeconds = 60
	}
	if cfg.Provider.MaxResponseBytes <= 0 {
		cfg.Provider.MaxResponseBytes = 4 * 1024 * 1024
	}
	if cfg.Provider.MaxTokens <= 0 {
		cfg.Provider.MaxTokens = 512
	}
	if cfg.Provider.ImageModel == "" {
		cfg.Provider.ImageModel = "gpt-image-1"
	}

	if cfg.Engine.BotName == "" {
		cfg.Engine.BotName = "Kagami"
	}
	if cfg.Engine.SmoothingAlpha <= 0 {
		cfg.Engine.SmoothingAlpha = 0.25
	}
	if cfg.Engine.MinTokensForLSM <= 0 {
		cfg.Engine.MinTokensForLSM = 5
	}
	if cfg.Engine.MinTokensForSmoothing <= 0 {
		cfg.Engine.MinTokensForSmoothing = 15
	}
	if cfg.Engine.ModelInformalThreshold <= 0 {
		cfg.Engine.ModelInformalThreshold = 0.3
	}
	if cfg.Engine.RegexInformalThreshold <= 0 {
		cfg.Engine.RegexInformalThreshold = 0.1
	}
	if cfg.Engine.GuardrailCeiling <= 0 {
		cfg.Engine.GuardrailCeiling = 0.6
	}
	if cfg.Engine.AdaptiveTemperature <= 0 {
		cfg.Engine.AdaptiveTemperature = 0.7
	}
	if cfg.Engine.ProfileCacheSize <= 0 {
		cfg.Engine.ProfileCacheSize = 100
	}
	if cfg.Engine.StyleSampleLookback <= 0 {
		cfg.Engine.StyleSampleLookback = 3
	}
	if cfg.Engine.StyleSampleMinTokens <= 0 {
		cfg.Engine.StyleSampleMinTokens = 15
	}
	if cfg.Engine.MaxAvatarGenerations <= 0 {
		cfg.Engine.MaxAvatarGenerations = 5
	}

	if cfg.Models.BundleDir == "" {
		cfg.Models.BundleDir = "models"
	}
	if cfg.Models.SeqLen <= 0 {
		cfg.Models.SeqLen = 256
	}
	if cfg.Models.HiddenSize <= 0 {
		cfg.Models.HiddenSize = 384
	}

	if cfg.Sessions.Backend == "" {
		cfg.Sessions.Backend = "file"
	}
	if cfg.Sessions.Dir == "" {
		cfg.Sessions.Dir = "session_state"
	}
	if cfg.Sessions.Redis.Prefix == "" {
		cfg.Sessions.Redis.Prefix = "kagami"
	}

	if cfg.EventLog.Dir == "" {
		cfg.EventLog.Dir = "experiment_logs"
	}
	if cfg.EventLog.Level == "" {
		cfg.EventLog.Level = "full"
	}
	if cfg.EventLog.QueueSize <= 0 {
		cfg.EventLog.QueueSize = 1000
	}
	if cfg.EventLog.Workers <= 0 {
		cfg.EventLog.Workers = 1
	}
	if cfg.EventLog.ArchiveTimeout <= 0 {
		cfg.EventLog.ArchiveTimeout = 120
	}

	if cfg.Telemetry.Service == "" {
		cfg.Telemetry.Service = "kagami"
	}
}
