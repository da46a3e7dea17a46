package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"mindscribe/internal/app"
	"mindscribe/internal/config"
	"mindscribe/internal/daemon"
	"mindscribe/internal/logging"
	"mindscribe/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// Ready, when set, receives the bound API address once serving starts.
	Ready func(address string)
}

// Run starts the MindScribe API server and blocks until ctx is cancelled or
// the process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	outputs := []string{"stderr"}
	if path := cfg.LogFilePath(); path != "" {
		outputs = append(outputs, path)
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	a, err := app.Build(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("build components", logging.Error(err))
		return err
	}
	logPreflight(signalCtx, logger, cfg, a)

	d, err := daemon.New(cfg, a, logger)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check api.bind and that no other server holds "+cfg.LockPath()),
			logging.String(logging.FieldImpact, "the API is not being served"),
		)
		return err
	}
	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	if opts.Ready != nil {
		opts.Ready(d.Address())
	}

	<-signalCtx.Done()
	logger.Info("mindscribe daemon shutting down")
	return nil
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config, a *app.App) {
	for _, result := range preflight.RunAll(ctx, cfg, a.Store, preflight.Options{}) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		impact := "the server may fail requests that need it"
		if result.Optional {
			impact = "a local fallback is used"
		}
		logging.WarnWithContext(ctx, logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run `mindscribe status` for details"),
			logging.String(logging.FieldImpact, impact),
		)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	transcription := cfg.GetTranscription()
	llmCfg := cfg.GetLLM()
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("store_backend", cfg.Store.Backend),
		logging.Bool("store_seed", cfg.Store.Seed),
		logging.Bool("elevenlabs_key_present", transcription.APIKey != ""),
		logging.String("elevenlabs_model", transcription.ModelID),
		logging.String("llm_provider", llmCfg.Provider),
		logging.Bool("llm_key_present", llmCfg.APIKey != ""),
		logging.Bool("api_token_set", strings.TrimSpace(cfg.API.Token) != ""),
		logging.String("api_bind", cfg.API.Bind),
	)
}
