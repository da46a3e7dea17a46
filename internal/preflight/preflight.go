package preflight

import (
	"context"

	"mindscribe/internal/config"
	"mindscribe/internal/records"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// ClientLister is the store capability used to confirm the store answers.
type ClientLister interface {
	ListClients(ctx context.Context) ([]records.Client, error)
}

// Options tunes RunAll.
type Options struct {
	// ProbeLLM sends a request to the generation provider instead of only
	// checking that credentials are present.
	ProbeLLM bool
}

// RunAll executes every applicable check for cfg. st may be nil when the
// store could not be opened.
func RunAll(ctx context.Context, cfg *config.Config, st ClientLister, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckStore(ctx, cfg.Store.Backend, st))
	results = append(results, CheckTranscription(cfg.GetTranscription()))
	if opts.ProbeLLM {
		results = append(results, ProbeLLM(ctx, cfg.GetLLM()))
	} else {
		results = append(results, CheckLLM(cfg.GetLLM()))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
