package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"mindscribe/internal/api"
	"mindscribe/internal/app"
	"mindscribe/internal/config"
	"mindscribe/internal/preflight"
)

type statusReport struct {
	api.DaemonStatus
	Checks []preflight.Result `json:"checks"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, readiness and server status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				status, err := collectStatus(c, a)
				if err != nil {
					return err
				}
				report := statusReport{
					DaemonStatus: status,
					Checks:       preflight.RunAll(c, a.Config, a.Store, preflight.Options{ProbeLLM: probe}),
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range statusLines(report.DaemonStatus, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out)
				for _, line := range checkLines(report.Checks, colorize) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "Send a test request to the generation provider")
	return cmd
}

func collectStatus(ctx context.Context, a *app.App) (api.DaemonStatus, error) {
	status := api.DaemonStatus{
		LockFilePath:         a.Config.LockPath(),
		StoreBackend:         a.Config.Store.Backend,
		TranscriptionOffline: a.TranscriptionOffline(),
		LLMProvider:          a.Provider(),
	}
	running, err := serverRunning(a.Config)
	if err != nil {
		return status, err
	}
	status.Running = running
	if running {
		status.PID = readPID(a.Config)
	}
	clients, err := a.Store.ListClients(ctx)
	if err != nil {
		return status, err
	}
	sessions, err := a.Store.ListSessions(ctx, "")
	if err != nil {
		return status, err
	}
	status.Clients = len(clients)
	status.Sessions = len(sessions)
	return status, nil
}

// serverRunning probes the server lock without holding it.
func serverRunning(cfg *config.Config) (bool, error) {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe server lock: %w", err)
	}
	if ok {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}

func readPID(cfg *config.Config) int {
	data, err := os.ReadFile(cfg.PIDPath())
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
