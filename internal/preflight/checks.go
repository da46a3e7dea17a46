package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mindscribe/internal/app"
	"mindscribe/internal/config"
	"mindscribe/internal/services/llm"
)

const llmProbeTimeout = 30 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore confirms the store answers a client listing.
func CheckStore(ctx context.Context, backend string, st ClientLister) Result {
	const name = "Store"
	if st == nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (not opened)", backend)}
	}
	clients, err := st.ListClients(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", backend, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d clients)", backend, len(clients))}
}

// CheckTranscription reports whether ElevenLabs credentials are present.
// Without them recordings get the offline placeholder transcript.
func CheckTranscription(cfg config.TranscriptionConfig) Result {
	const name = "Transcription"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Optional: true, Detail: "API key missing (offline placeholder in use)"}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("ElevenLabs %s", cfg.ModelID)}
}

// CheckLLM reports whether a generation provider is configured.
func CheckLLM(cfg config.LLMConfig) Result {
	const name = "Note generation"
	switch {
	case cfg.Provider == config.ProviderNone:
		return Result{Name: name, Optional: true, Detail: "disabled (sample notes in use)"}
	case cfg.APIKey == "":
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s API key missing (sample notes in use)", cfg.Provider)}
	default:
		return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("%s %s (not probed)", cfg.Provider, cfg.Model)}
	}
}

// healthChecker is implemented by generation backends that support a cheap ping.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ProbeLLM verifies that the configured provider answers with the given key.
// It uses a 30-second timeout and a single attempt.
func ProbeLLM(ctx context.Context, cfg config.LLMConfig) Result {
	base := CheckLLM(cfg)
	if !base.Passed {
		return base
	}
	checkCtx, cancel := context.WithTimeout(ctx, llmProbeTimeout)
	defer cancel()

	checker, err := probeClient(checkCtx, cfg)
	if err != nil {
		return Result{Name: base.Name, Optional: true, Detail: err.Error()}
	}
	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: base.Name, Optional: true, Detail: summarizeLLMError(err)}
	}
	return Result{Name: base.Name, Passed: true, Optional: true, Detail: fmt.Sprintf("%s API reachable", cfg.Provider)}
}

func probeClient(ctx context.Context, cfg config.LLMConfig) (healthChecker, error) {
	if cfg.Provider == config.ProviderOpenRouter {
		return llm.NewClient(llm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Referer: cfg.Referer,
			Title:   cfg.Title,
			Timeout: cfg.Timeout(),
		}, llm.WithRetryMaxAttempts(1)), nil
	}
	gen, err := app.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	checker, ok := gen.(healthChecker)
	if !ok {
		return nil, fmt.Errorf("%s provider does not support health checks", cfg.Provider)
	}
	return checker, nil
}

// summarizeLLMError produces a human-readable summary for health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
