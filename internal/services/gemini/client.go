package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Config captures the settings needed to reach the Gemini API.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client generates content with a Gemini model.
type Client struct {
	models *genai.Models
	model  string
}

// New creates a Gemini client. BaseURL is only set in tests.
func New(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	gc, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{models: gc.Models, model: model}, nil
}

// GenerateJSON asks the model for a JSON document matching schema.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), BuildConfig(true, schema))
	if err != nil {
		return "", fmt.Errorf("gemini generate json: %w", err)
	}
	return ResponseText(resp)
}

// GenerateText asks the model for free-form prose.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), BuildConfig(false, nil))
	if err != nil {
		return "", fmt.Errorf("gemini generate text: %w", err)
	}
	return ResponseText(resp)
}

// HealthCheck issues a minimal JSON request to verify the key and model.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.GenerateJSON(ctx, `Respond with {"ok":true}`, nil)
	if err != nil {
		return fmt.Errorf("gemini health: %w", err)
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return fmt.Errorf("gemini health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("gemini health: unexpected response")
	}
	return nil
}

// BuildConfig assembles the request configuration.
// Exported for testing.
func BuildConfig(jsonOutput bool, schema map[string]any) *genai.GenerateContentConfig {
	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if jsonOutput {
		config.ResponseMIMEType = "application/json"
		if schema != nil {
			config.ResponseJsonSchema = schema
		}
	}
	return config
}

// ResponseText concatenates the non-thought text parts of the first
// candidate. Blocked prompts and empty candidates are errors.
// Exported for testing.
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini: nil response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", fb.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: no candidates")
	}
	candidate := resp.Candidates[0]
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini: empty content (finish_reason=%s)", candidate.FinishReason)
	}
	return text, nil
}
