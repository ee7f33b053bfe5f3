package gemini

import (
	"bytes"
	"calorie-tracker/apperr"
	"calorie-tracker/structs"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel   = "gemini-2.0-flash"
)

// Config captures the settings needed to reach the Gemini API.
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

type GeminiService struct {
	cfg    Config
	client *http.Client
	logger *logrus.Entry
}

type Option func(*GeminiService)

func WithHTTPClient(client *http.Client) Option {
	return func(g *GeminiService) {
		if client != nil {
			g.client = client
		}
	}
}

func WithLogger(logger *logrus.Entry) Option {
	return func(g *GeminiService) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func NewGeminiService(cfg Config, opts ...Option) *GeminiService {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	// no timeout of our own unless configured; the backend's limits apply
	client := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	service := &GeminiService{
		cfg:    cfg,
		client: client,
		logger: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type GeminiRequest struct {
	Contents []Content `json:"contents"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type GeminiResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	Error          *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

// Configured reports whether an API key is present.
func (g *GeminiService) Configured() bool {
	return g.cfg.APIKey != ""
}

// MaskedKey returns the first and last four characters of the key.
func (g *GeminiService) MaskedKey() string {
	key := g.cfg.APIKey
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func (g *GeminiService) Model() string {
	return g.cfg.Model
}

// Analyze sends one generateContent request for a description and/or an
// image and returns the model's raw text. It never retries.
func (g *GeminiService) Analyze(ctx context.Context, input structs.AnalyzeInput) (string, error) {
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" && len(input.Image) == 0 {
		return "", apperr.Validation("Food description is required")
	}
	if !g.Configured() {
		return "", apperr.Configuration("API key configuration error")
	}

	var parts []Part
	if len(input.Image) > 0 {
		mimeType := input.MimeType
		if mimeType == "" {
			mimeType = http.DetectContentType(input.Image)
		}
		parts = append(parts, Part{InlineData: &InlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(input.Image),
		}})
	}
	parts = append(parts, Part{Text: BuildPrompt(input)})

	g.logger.WithFields(logrus.Fields{
		"model":     g.cfg.Model,
		"api_key":   g.MaskedKey(),
		"has_image": len(input.Image) > 0,
	}).Debug("sending request to Gemini")

	return g.generate(ctx, GeminiRequest{Contents: []Content{{Parts: parts}}})
}

func (g *GeminiService) generate(ctx context.Context, requestBody GeminiRequest) (string, error) {
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", apperr.Upstream("error marshaling request", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.cfg.BaseURL, g.cfg.Model, url.QueryEscape(g.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", apperr.Upstream("error creating request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// the url in a transport error carries the key
		return "", apperr.Upstream("error calling Gemini API", redact(err, g.cfg.APIKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Upstream("error reading response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Upstream("Gemini API request failed",
			fmt.Errorf("status %d: %s", resp.StatusCode, snippet(string(body))))
	}

	var response GeminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", apperr.Upstream("error unmarshaling response", err)
	}
	if response.Error != nil {
		return "", apperr.Upstream("Gemini API error", fmt.Errorf("%s", response.Error.Message))
	}
	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		return "", apperr.Upstream("prompt blocked", fmt.Errorf("block reason %s", response.PromptFeedback.BlockReason))
	}
	if len(response.Candidates) == 0 {
		return "", apperr.Upstream("no candidates in response", nil)
	}

	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", apperr.Upstream("empty response text",
			fmt.Errorf("finish reason %q", response.Candidates[0].FinishReason))
	}
	return text.String(), nil
}

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	message := strings.ReplaceAll(err.Error(), url.QueryEscape(secret), "REDACTED")
	return fmt.Errorf("%s", strings.ReplaceAll(message, secret, "REDACTED"))
}

func snippet(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	const limit = 200
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
