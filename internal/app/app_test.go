package app_test

import (
	"context"
	"testing"

	"mindscribe/internal/app"
	"mindscribe/internal/config"
	"mindscribe/internal/records"
	"mindscribe/internal/services/llm"
	"mindscribe/internal/testsupport"
)

func TestBuildWithDefaultsUsesLocalFallbacks(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if !a.TranscriptionOffline() {
		t.Fatal("expected offline transcription without an API key")
	}
	if a.Provider() != config.ProviderNone {
		t.Fatalf("provider = %q", a.Provider())
	}
	clients, err := a.Store.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected seeded clients, got %d", len(clients))
	}
}

func TestBuildWithoutSeedStartsEmpty(t *testing.T) {
	ctx := context.Background()
	a, err := app.Build(ctx, testsupport.NewConfig(t, testsupport.WithoutSeed()), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	clients, err := a.Store.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("expected empty store, got %d clients", len(clients))
	}
}

func TestBuildOpensSQLiteStore(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendSQLite))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := a.Store.GetClient(ctx, "1"); err != nil {
		t.Fatalf("seeded client missing: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Seeding is skipped once the database has clients.
	again, err := app.Build(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	t.Cleanup(func() { _ = again.Close() })
	clients, err := again.Store.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients after reopen, got %d", len(clients))
	}
}

func TestFlowRunsOverInjectedComponents(t *testing.T) {
	ctx := context.Background()
	tr := &testsupport.StubTranscriber{Text: "T: How was the week? C: Better."}
	a, err := app.Build(ctx, testsupport.NewConfig(t), nil, app.WithTranscriber(tr))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	flow := a.NewFlow()
	if _, err := flow.SelectClient(ctx, "2"); err != nil {
		t.Fatalf("SelectClient: %v", err)
	}
	if err := flow.BindFile(testsupport.Recording("week.mp3")); err != nil {
		t.Fatalf("BindFile: %v", err)
	}
	outcome, err := flow.Process(ctx)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	session := testsupport.MustSession(t, a.Store, outcome.SessionID)
	if session.Type != records.TranscribedSessionType || session.Transcript[1].Speaker != "Tony" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestNewGeneratorSelectsProvider(t *testing.T) {
	ctx := context.Background()

	gen, err := app.NewGenerator(ctx, config.LLMConfig{Provider: config.ProviderGemini})
	if err != nil || gen != nil {
		t.Fatalf("expected no generator without a key, got %v, %v", gen, err)
	}

	gen, err = app.NewGenerator(ctx, config.LLMConfig{Provider: config.ProviderOpenRouter, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if _, ok := gen.(*llm.Client); !ok {
		t.Fatalf("expected *llm.Client, got %T", gen)
	}

	if _, err := app.NewGenerator(ctx, config.LLMConfig{Provider: "bogus", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestBuildInjectedGeneratorReportsCustomProvider(t *testing.T) {
	a, err := app.Build(context.Background(), testsupport.NewConfig(t), nil,
		app.WithGenerator(&testsupport.StubGenerator{JSON: "[]"}),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	if a.Provider() != "custom" {
		t.Fatalf("provider = %q", a.Provider())
	}
}
