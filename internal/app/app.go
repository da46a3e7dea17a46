package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mindscribe/internal/config"
	"mindscribe/internal/ingest"
	"mindscribe/internal/logging"
	"mindscribe/internal/notes"
	"mindscribe/internal/services/elevenlabs"
	"mindscribe/internal/services/gemini"
	"mindscribe/internal/services/llm"
	"mindscribe/internal/store"
	"mindscribe/internal/store/pgstore"
	"mindscribe/internal/store/sqlitestore"
	"mindscribe/internal/structuring"
)

// Generator is the combined generation contract used by structuring and notes.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema map[string]any) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// App holds the wired components.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Store       store.Store
	Transcriber ingest.Transcriber
	Generator   Generator
	Structuring *structuring.Service
	Notes       *notes.Service
	Views       *notes.Views

	offline bool
}

// Option overrides a component Build would otherwise construct.
type Option func(*App)

// WithStore supplies an already-open store.
func WithStore(s store.Store) Option {
	return func(a *App) { a.Store = s }
}

// WithTranscriber replaces the ElevenLabs adapter.
func WithTranscriber(t ingest.Transcriber) Option {
	return func(a *App) { a.Transcriber = t }
}

// WithGenerator replaces the configured generation provider.
func WithGenerator(g Generator) Option {
	return func(a *App) { a.Generator = g }
}

// Build constructs every component from cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	if a.Store == nil {
		st, err := OpenStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.Store = st
	}

	if a.Transcriber == nil {
		client := elevenlabs.NewClient(elevenlabsConfig(cfg.GetTranscription()), elevenlabs.WithLogger(logger))
		a.offline = client.Offline()
		a.Transcriber = client
	}

	if a.Generator == nil {
		gen, err := NewGenerator(ctx, cfg.GetLLM())
		if err != nil {
			_ = a.Store.Close()
			return nil, err
		}
		if gen != nil {
			a.Generator = gen
		}
	}

	// A nil interface keeps the services on their local fallbacks.
	var sg structuring.Generator
	var ng notes.Generator
	if a.Generator != nil {
		sg, ng = a.Generator, a.Generator
	}
	a.Structuring = structuring.NewService(sg, logger)
	a.Notes = notes.NewService(ng, logger)
	a.Views = notes.NewViews(a.Notes, a.Store)

	logger.Info("components ready",
		logging.String(logging.FieldEventType, "components_ready"),
		logging.String("store_backend", cfg.Store.Backend),
		logging.Bool("transcription_offline", a.offline),
		logging.String("llm_provider", a.Provider()),
	)
	return a, nil
}

// NewFlow starts an ingestion flow over the app's components.
func (a *App) NewFlow(opts ...ingest.Option) *ingest.Flow {
	return ingest.New(a.Store, a.Transcriber, a.Structuring, a.Logger, opts...)
}

// TranscriptionOffline reports whether transcription returns placeholder text.
func (a *App) TranscriptionOffline() bool { return a.offline }

// Provider names the active generation provider, or "none".
func (a *App) Provider() string {
	if a.Generator == nil {
		return config.ProviderNone
	}
	switch a.Generator.(type) {
	case *gemini.Client:
		return config.ProviderGemini
	case *llm.Client:
		return config.ProviderOpenRouter
	default:
		return "custom"
	}
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// OpenStore opens the configured backend and seeds it when requested.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		opts := []store.Option{store.WithLatency(cfg.StoreLatency())}
		if cfg.Store.Seed {
			opts = append(opts, store.WithSeed())
		}
		return store.NewMemory(opts...), nil
	case config.BackendSQLite:
		st, err := sqlitestore.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if cfg.Store.Seed {
			clients, sessions := store.Seed()
			if err := st.Seed(ctx, clients, sessions); err != nil {
				_ = st.Close()
				return nil, fmt.Errorf("seed sqlite store: %w", err)
			}
		}
		return st, nil
	case config.BackendPostgres:
		st, err := pgstore.Open(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.Store.Seed {
			clients, sessions := store.Seed()
			if err := st.Seed(ctx, clients, sessions); err != nil {
				_ = st.Close()
				return nil, fmt.Errorf("seed postgres store: %w", err)
			}
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// NewGenerator returns the configured provider, or nil when generation is
// disabled or has no credentials.
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderGemini:
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenRouter:
		return llm.NewClient(llm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Referer: cfg.Referer,
			Title:   cfg.Title,
			Timeout: cfg.Timeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func elevenlabsConfig(cfg config.TranscriptionConfig) elevenlabs.Config {
	return elevenlabs.Config{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		ModelID:      cfg.ModelID,
		Timeout:      cfg.Timeout,
		OfflineDelay: cfg.OfflineDelay,
	}
}
