package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mindscribe/internal/logging"
	"mindscribe/internal/records"
	"mindscribe/internal/services"
)

const (
	sessionDateLayout = "Jan 2, 2006"
	sessionTimeLayout = "03:04 PM"

	stageTranscribe = "transcribe"
	stageStructure  = "structure"
	stageCommit     = "commit"

	processFailedMessage = "Failed to process recording. Please try again."
)

// SessionPath returns the navigation path for a session.
func SessionPath(clientID, sessionID string) string {
	return fmt.Sprintf("/clients/%s/sessions/%s", clientID, sessionID)
}

// Process transcribes the bound file, structures it and commits a session.
// It requires AwaitingFile with a client and a file bound.
func (f *Flow) Process(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if err := f.expectLocked(StateAwaitingFile, "process"); err != nil {
		if f.state == StateProcessing {
			err = fmt.Errorf("%w: processing already in progress", ErrInvalidTransition)
		}
		f.mu.Unlock()
		return Outcome{}, err
	}
	if f.client == nil || f.file == nil {
		f.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: client and file must be bound before processing", ErrInvalidTransition)
	}
	client := f.client.Clone()
	media := *f.file
	epoch := f.epoch
	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.state = StateProcessing
	f.errMsg = ""
	f.mu.Unlock()
	defer cancel()

	runCtx = services.WithFlowID(runCtx, f.id)
	runCtx = services.WithClientID(runCtx, client.ID)
	started := time.Now()

	raw, err := f.transcribe(runCtx, media)
	if err != nil {
		return Outcome{}, f.fail(runCtx, epoch, stageTranscribe, err)
	}

	structCtx := services.WithStage(runCtx, stageStructure)
	f.stageStart(structCtx, logging.Int("raw_length", len(raw)))
	result := f.structurer.Structure(structCtx, raw, client.FirstName)
	f.stageComplete(structCtx, started,
		logging.Int("entries", len(result.Entries)),
		logging.Bool("degraded", result.Degraded),
	)

	commitCtx := services.WithStage(runCtx, stageCommit)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch != epoch {
		f.logStale(commitCtx)
		return Outcome{}, ErrFlowClosed
	}

	now := f.now()
	f.stageStart(commitCtx)
	session, err := f.store.CreateSession(commitCtx, records.SessionDraft{
		ClientID:   client.ID,
		Date:       now.Format(sessionDateLayout),
		Time:       now.Format(sessionTimeLayout),
		Type:       records.TranscribedSessionType,
		Transcript: result.Entries,
	})
	if err != nil {
		f.failLocked(commitCtx, err)
		return Outcome{}, err
	}

	outcome := Outcome{
		SessionID: session.ID,
		ClientID:  client.ID,
		Degraded:  result.Degraded,
		Path:      SessionPath(client.ID, session.ID),
	}
	f.state = StateComplete
	f.file = nil
	f.outcome = &outcome
	f.cancel = nil
	f.stageComplete(services.WithSessionID(commitCtx, session.ID), started,
		logging.String("path", outcome.Path),
		logging.Bool("degraded", outcome.Degraded),
	)
	return outcome, nil
}

func (f *Flow) transcribe(ctx context.Context, media records.MediaFile) (string, error) {
	ctx = services.WithStage(ctx, stageTranscribe)
	started := time.Now()
	f.stageStart(ctx,
		logging.String("file", media.Name),
		logging.Int("size_bytes", media.Size()),
	)
	raw, err := f.transcriber.Transcribe(ctx, media)
	if err != nil {
		return "", err
	}
	f.stageComplete(ctx, started, logging.Int("raw_length", len(raw)))
	return raw, nil
}

// fail moves the flow back to AwaitingFile unless it was closed or reset
// while the stage ran.
func (f *Flow) fail(ctx context.Context, epoch uint64, stage string, err error) error {
	ctx = services.WithStage(ctx, stage)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch != epoch {
		f.logStale(ctx)
		return ErrFlowClosed
	}
	f.failLocked(ctx, err)
	return err
}

func (f *Flow) failLocked(ctx context.Context, err error) {
	f.state = StateAwaitingFile
	f.cancel = nil

	var transcriptionErr *services.TranscriptionError
	attrs := []logging.Attr{logging.Error(err)}
	switch {
	case errors.As(err, &transcriptionErr):
		f.file = nil
		f.errMsg = transcriptionMessage(transcriptionErr)
		attrs = append(attrs,
			logging.Int("status", transcriptionErr.Status),
			logging.String(logging.FieldErrorHint, "select the recording again and retry"),
		)
	default:
		f.errMsg = strings.TrimSpace(err.Error())
		if f.errMsg == "" {
			f.errMsg = processFailedMessage
		}
	}
	attrs = append(attrs, logging.String(logging.FieldEventType, "stage_failure"))
	logging.WithContext(ctx, f.logger).Error("ingestion stage failed", logging.Args(attrs...)...)
}

func transcriptionMessage(err *services.TranscriptionError) string {
	if cause := strings.TrimSpace(err.Cause); cause != "" {
		return cause
	}
	return services.UserFacingTranscriptionMessage
}

func (f *Flow) stageStart(ctx context.Context, attrs ...logging.Attr) {
	attrs = append(attrs, logging.String(logging.FieldEventType, "stage_start"))
	logging.WithContext(ctx, f.logger).Info("stage started", logging.Args(attrs...)...)
}

func (f *Flow) stageComplete(ctx context.Context, started time.Time, attrs ...logging.Attr) {
	attrs = append(attrs,
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "stage_complete"),
	)
	logging.WithContext(ctx, f.logger).Info("stage completed", logging.Args(attrs...)...)
}

func (f *Flow) logStale(ctx context.Context) {
	logging.WithContext(ctx, f.logger).Debug("discarding result of closed flow",
		logging.String(logging.FieldEventType, "stale_result_discarded"),
	)
}
