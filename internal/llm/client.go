package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"
)

const systemPrompt = "You are an expert in extracting data from Paraguayan " +
	"e-commerce pages. Extract precise information and always answer with valid JSON."

// ErrNoJSON is returned when the model reply contains no JSON payload.
var ErrNoJSON = errors.New("llm: no JSON found in model response")

// Client talks to an OpenAI-compatible chat-completions endpoint
// (OpenRouter in production). The extraction output is untrusted and must
// pass the same coercion as any other externally sourced record.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	siteURL  string
	siteName string
	http     *http.Client
	logger   *slog.Logger
}

type Options struct {
	BaseURL  string
	APIKey   string
	Model    string
	SiteURL  string
	SiteName string
	Timeout  time.Duration
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:  opts.BaseURL,
		apiKey:   opts.APIKey,
		model:    opts.Model,
		siteURL:  opts.SiteURL,
		siteName: opts.SiteName,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.With("component", "llm"),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ExtractJSON sends page content plus an extraction prompt and returns the
// raw JSON payload found in the model reply.
func (c *Client) ExtractJSON(ctx context.Context, content, prompt string) (json.RawMessage, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt + "\n\nPage content:\n" + content},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat completion returned %d: %s", resp.StatusCode, payload)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("llm: empty choices in response")
	}

	raw, err := FindJSON(parsed.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("model reply carried no JSON", "model", c.model)
		return nil, err
	}
	return raw, nil
}

var (
	jsonObject = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArray  = regexp.MustCompile(`(?s)\[.*\]`)
)

// FindJSON locates the first JSON object or array inside free-form model
// output. Models often wrap the payload in prose or code fences. When both
// shapes appear, the one starting earlier wins, so an array of objects is
// returned whole.
func FindJSON(text string) (json.RawMessage, error) {
	candidates := make([]string, 0, 2)

	obj := jsonObject.FindStringIndex(text)
	arr := jsonArray.FindStringIndex(text)
	switch {
	case obj != nil && arr != nil && arr[0] < obj[0]:
		candidates = append(candidates, text[arr[0]:arr[1]], text[obj[0]:obj[1]])
	case obj != nil && arr != nil:
		candidates = append(candidates, text[obj[0]:obj[1]], text[arr[0]:arr[1]])
	case obj != nil:
		candidates = append(candidates, text[obj[0]:obj[1]])
	case arr != nil:
		candidates = append(candidates, text[arr[0]:arr[1]])
	}

	for _, c := range candidates {
		if json.Valid([]byte(c)) {
			return json.RawMessage(c), nil
		}
	}
	return nil, ErrNoJSON
}
