package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mindscribe/internal/app"
	"mindscribe/internal/records"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var clientID string
	var contentType string

	cmd := &cobra.Command{
		Use:   "ingest <recording>",
		Short: "Transcribe a recording into a new session",
		Long: "Ingest uploads an audio or video recording for transcription, structures the\n" +
			"result into speaker turns and saves it as a new session for the client.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(clientID) == "" {
				return errors.New("--client is required")
			}
			media, err := readRecording(args[0], contentType)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(c context.Context, a *app.App) error {
				if a.TranscriptionOffline() {
					fmt.Fprintln(cmd.ErrOrStderr(), "Warning: ElevenLabs API key not configured; a placeholder transcript will be used")
				}
				resp, err := practiceService(a).IngestRecording(c, clientID, media)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created session %s for client %s\n", resp.SessionID, resp.ClientID)
				fmt.Fprintf(out, "Path: %s\n", resp.Path)
				if resp.Degraded {
					fmt.Fprintln(out, "Warning: transcript could not be structured by speaker; it was saved as a single entry")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "Client id the session belongs to")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Media type (guessed from the extension when empty)")
	return cmd
}

func readRecording(path, contentType string) (records.MediaFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return records.MediaFile{}, fmt.Errorf("open recording: %w", err)
	}
	defer file.Close()
	return records.ReadMediaFile(path, contentType, file)
}
