package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mindscribe/internal/app"
)

func newNotesCommand(ctx *commandContext) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Generate clinical documents for a session",
	}
	notesCmd.AddCommand(newNotesIntakeCommand(ctx))
	notesCmd.AddCommand(newNotesSummaryCommand(ctx))
	return notesCmd
}

func newNotesIntakeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "intake <session-id>",
		Short: "Draft an intake note from the session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				resp, err := practiceService(a).IntakeNote(c, args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				printDegraded(out, resp.Degraded, resp.Reason)
				printSection(out, "Identification Information", resp.Note.IdentificationInformation)
				printSection(out, "Family Situation", resp.Note.FamilySituation)
				printSection(out, "Socio-demographic Information", resp.Note.SocioDemographicInformation)
				printSection(out, "Reason for Seeking Therapy", resp.Note.ReasonForSeekingTherapy)
				return nil
			})
		},
	}
}

func newNotesSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <session-id>",
		Short: "Draft a summary addressed to the client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				resp, err := practiceService(a).Summary(c, args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				printDegraded(out, resp.Degraded, resp.Reason)
				fmt.Fprintln(out, resp.Summary)
				return nil
			})
		},
	}
}

func printDegraded(out io.Writer, degraded bool, reason string) {
	if degraded {
		fmt.Fprintf(out, "Note: sample content shown (%s)\n\n", reason)
	}
}

func printSection(out io.Writer, title, body string) {
	for _, line := range renderSectionHeader(title, false) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, body)
	fmt.Fprintln(out)
}
