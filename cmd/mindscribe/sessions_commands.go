package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mindscribe/internal/api"
	"mindscribe/internal/app"
	"mindscribe/internal/records"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Inspect and edit therapy sessions",
	}
	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsDeleteCommand(ctx))
	sessionsCmd.AddCommand(newSessionsNoteCommand(ctx))
	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, optionally for one client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				sessions, err := practiceService(a).Sessions(c, clientID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.SessionListResponse{Sessions: sessions})
				}
				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions found")
					return nil
				}
				rows := make([][]string, 0, len(sessions))
				for _, s := range sessions {
					rows = append(rows, []string{s.ID, s.ClientID, s.Date, s.Time, s.Type, s.Title, strconv.Itoa(len(s.Transcript))})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Client", "Date", "Time", "Type", "Title", "Entries"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "Only list sessions for this client id")
	return cmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session and its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				session, err := practiceService(a).Session(c, args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, session)
				}
				printSession(cmd, session)
				return nil
			})
		},
	}
}

func printSession(cmd *cobra.Command, s records.Session) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s (client %s)\n", s.ID, s.ClientID)
	fmt.Fprintf(out, "  Title:       %s\n", s.Title)
	fmt.Fprintf(out, "  Type:        %s\n", s.Type)
	fmt.Fprintf(out, "  When:        %s %s\n", s.Date, s.Time)
	if s.Duration > 0 {
		fmt.Fprintf(out, "  Duration:    %d min\n", s.Duration)
	}
	fmt.Fprintf(out, "  Description: %s\n", s.Description)
	if s.PrivateNote != "" {
		fmt.Fprintf(out, "  Private note: %s\n", s.PrivateNote)
	}
	fmt.Fprintln(out)
	if len(s.Transcript) == 0 {
		fmt.Fprintln(out, "No transcript")
		return
	}
	rows := make([][]string, 0, len(s.Transcript))
	for _, entry := range s.Transcript {
		rows = append(rows, []string{entry.Time, entry.Speaker, entry.Dialogue})
	}
	fmt.Fprintln(out, renderTable([]string{"Time", "Speaker", "Dialogue"}, rows, []columnAlignment{alignRight}))
}

func newSessionsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				if err := practiceService(a).DeleteSession(c, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
				return nil
			})
		},
	}
}

func newSessionsNoteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> <text>",
		Short: "Save the private note for a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				session, err := practiceService(a).SavePrivateNote(c, args[0], args[1])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, session)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved private note for session %s\n", session.ID)
				return nil
			})
		},
	}
}
