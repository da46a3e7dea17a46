package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"mindscribe/internal/logging"
	"mindscribe/internal/records"
	"mindscribe/internal/services"
)

const (
	defaultBaseURL      = "https://api.elevenlabs.io/v1"
	defaultModelID      = "scribe_v1"
	defaultHTTPTimeout  = 5 * time.Minute
	defaultOfflineDelay = 2 * time.Second
	maxErrorBodyBytes   = 64 << 10
)

// OfflineTranscript is returned when no API key is configured.
const OfflineTranscript = "This is a mock transcription because the ElevenLabs API key is not configured. Please set the ELEVENLABS_API_KEY environment variable to use the actual service."

// Config captures the settings required to call the speech-to-text endpoint.
type Config struct {
	APIKey       string
	BaseURL      string
	ModelID      string
	Timeout      time.Duration
	OfflineDelay time.Duration
}

// Client uploads recordings to ElevenLabs.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSleeper overrides how the offline delay is waited out (useful for tests).
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient constructs a transcription client.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.ModelID = strings.TrimSpace(cfg.ModelID)
	if cfg.ModelID == "" {
		cfg.ModelID = defaultModelID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.OfflineDelay < 0 {
		cfg.OfflineDelay = defaultOfflineDelay
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "transcription")
	return client
}

// Offline reports whether the client returns placeholder text instead of calling the API.
func (c *Client) Offline() bool {
	return c.cfg.APIKey == ""
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Transcribe uploads media and returns the recognised text. An empty
// recognition result becomes the no-speech placeholder.
func (c *Client) Transcribe(ctx context.Context, media records.MediaFile) (string, error) {
	logger := logging.WithContext(ctx, c.logger)
	if c.Offline() {
		logging.WarnWithContext(ctx, c.logger, "transcription api key not configured; returning placeholder transcript", "transcription_offline",
			logging.String(logging.FieldErrorHint, "set ELEVENLABS_API_KEY to enable transcription"),
			logging.String(logging.FieldImpact, "session transcript will contain placeholder text"),
		)
		if err := c.sleep(ctx, c.cfg.OfflineDelay); err != nil {
			return "", err
		}
		return OfflineTranscript, nil
	}

	body, contentType, err := encodeUpload(media, c.cfg.ModelID)
	if err != nil {
		return "", services.NewTranscriptionError(0, "encode upload", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/speech-to-text", body)
	if err != nil {
		return "", services.NewTranscriptionError(0, "build request", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	logger.Debug("uploading recording", logging.String("file", media.Name), logging.Int("bytes", media.Size()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", services.NewTranscriptionError(0, fmt.Sprintf("request failed (timeout=%s)", c.cfg.Timeout), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", services.NewTranscriptionError(resp.StatusCode, errorMessage(resp.StatusCode, raw), nil)
	}

	var payload transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", services.NewTranscriptionError(resp.StatusCode, "decode response", err)
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		text = records.NoSpeechPlaceholder
	}
	logger.Info("transcription complete",
		logging.String("file", media.Name),
		logging.Int("characters", len(text)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

func encodeUpload(media records.MediaFile, modelID string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	name := strings.TrimSpace(media.Name)
	if name == "" {
		name = "recording"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	contentType := media.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(media.Data); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("model_id", modelID); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// errorMessage extracts detail.message from an error body. Validation errors
// arrive with detail as a list or a bare string, so both are tolerated.
func errorMessage(status int, raw []byte) string {
	fallback := fmt.Sprintf("API request failed with status %d", status)
	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}
	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Detail, &detail); err == nil && strings.TrimSpace(detail.Message) != "" {
		return strings.TrimSpace(detail.Message)
	}
	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	var list []struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Detail, &list); err == nil {
		for _, item := range list {
			if msg := strings.TrimSpace(item.Message + item.Msg); msg != "" {
				return msg
			}
		}
	}
	return fallback
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
