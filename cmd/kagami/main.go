package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kagami-chat/kagami/internal/config"
	"github.com/kagami-chat/kagami/internal/eventlog"
	"github.com/kagami-chat/kagami/internal/nlp"
	"github.com/kagami-chat/kagami/internal/provider"
	"github.com/kagami-chat/kagami/internal/redact"
	"github.com/kagami-chat/kagami/internal/server"
	"github.com/kagami-chat/kagami/internal/session"
	"github.com/kagami-chat/kagami/internal/style"
	"github.com/kagami-chat/kagami/internal/telemetry"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "kagami.yaml", "path to config file")
	staticDir := flag.String("static", "static", "static file directory (base images, generated avatars)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		redact.Fatalf("load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		redact.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Model warm-up runs in the background; until it finishes the extractor
	// produces profiles without the learned features.
	nlpService := nlp.NewService(cfg.Models.BundleDir, cfg.Models.SeqLen, cfg.Models.HiddenSize)
	go nlpService.WarmUp()
	defer nlpService.Close()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		redact.Fatalf("session store: %v", err)
	}
	defer store.Close()

	fileSink, err := eventlog.NewSessionFileSink(cfg.EventLog.Dir)
	if err != nil {
		redact.Fatalf("event log: %v", err)
	}
	sinks := []eventlog.Sink{fileSink}

	var archive *eventlog.WebhookSink
	if cfg.EventLog.ArchiveURL != "" {
		archive, err = eventlog.NewWebhookSink(cfg.EventLog.ArchiveURL, nil,
			time.Duration(cfg.EventLog.ArchiveTimeout)*time.Second)
		if err != nil {
			redact.Fatalf("archive sink: %v", err)
		}
	}

	emitter := eventlog.NewEmitter(eventlog.EmitterConfig{
		QueueSize: cfg.EventLog.QueueSize,
		Workers:   cfg.EventLog.Workers,
		Level:     cfg.EventLog.Level,
	}, sinks)
	defer emitter.Close(context.Background())

	telemetryProvider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  cfg.Telemetry.Service,
		Version:  cfg.Telemetry.Version,
	})
	if err != nil {
		redact.Fatalf("telemetry: %v", err)
	}
	defer telemetryProvider.Shutdown(context.Background())

	chatProvider, imageEditor, err := buildProvider(cfg)
	if err != nil {
		redact.Fatalf("provider: %v", err)
	}

	compiler := style.NewCompiler(cfg.Engine.BotName)
	compiler.ModelInformalThresh = cfg.Engine.ModelInformalThreshold
	compiler.RegexInformalThresh = cfg.Engine.RegexInformalThreshold
	compiler.GuardrailCeiling = cfg.Engine.GuardrailCeiling
	compiler.AdaptiveTemperature = cfg.Engine.AdaptiveTemperature

	srv, err := server.New(cfg, server.Deps{
		Store:       store,
		Registry:    session.NewRegistry(),
		Extractor:   style.NewExtractor(nlpService, cfg.Engine.ProfileCacheSize),
		Compiler:    compiler,
		NLP:         nlpService,
		Provider:    chatProvider,
		ImageEditor: imageEditor,
		Emitter:     emitter,
		FileSink:    fileSink,
		Archive:     archive,
		Telemetry:   telemetryProvider,
		StaticDir:   *staticDir,
	})
	if err != nil {
		redact.Fatalf("server: %v", err)
	}

	if err := srv.Start(ctx, addr); err != nil {
		redact.Fatalf("server error: %v", err)
	}
	redact.Logf("kagami backend stopped")
}

func buildStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.Sessions.Backend {
	case "redis":
		password := ""
		if cfg.Sessions.Redis.PasswordEnv != "" {
			password = os.Getenv(cfg.Sessions.Redis.PasswordEnv)
		}
		return session.NewRedisStore(ctx, cfg.Sessions.Redis.Addr, password,
			cfg.Sessions.Redis.DB, cfg.Sessions.Redis.Prefix, cfg.Sessions.Redis.TTL)
	default:
		return session.NewFileStore(cfg.Sessions.Dir)
	}
}

func buildProvider(cfg *config.Config) (provider.Provider, provider.ImageEditor, error) {
	if cfg.Provider.Type == "fake" {
		fake := provider.NewFake("")
		return fake, fake, nil
	}
	apiKey := os.Getenv(cfg.Provider.APIKeyEnv)
	if apiKey == "" {
		redact.Logf("warning: %s is empty; generation calls will fail with the apology fallback", cfg.Provider.APIKeyEnv)
	}
	p := provider.NewOpenAI(cfg.Provider.BaseURL, apiKey,
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second, cfg.Provider.MaxResponseBytes)
	return p, p, nil
}
