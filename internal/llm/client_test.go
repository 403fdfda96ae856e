package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindJSON(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
		wantErr  bool
	}{
		{
			name:     "bare object",
			in:       `{"usd_to_brl": 5.45}`,
			expected: `{"usd_to_brl": 5.45}`,
		},
		{
			name:     "object wrapped in prose",
			in:       "Here is the data you asked for:\n{\"name\": \"Tablet\"}\nLet me know!",
			expected: `{"name": "Tablet"}`,
		},
		{
			name:     "array payload",
			in:       "```json\n[{\"name\": \"A\"}, {\"name\": \"B\"}]\n```",
			expected: `[{"name": "A"}, {"name": "B"}]`,
		},
		{
			name:    "no json at all",
			in:      "I could not find any products on this page.",
			wantErr: true,
		},
		{
			name:    "broken json",
			in:      `{"name": "Tab`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindJSON(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSON)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(got))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "test-model", req["model"])

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Sure: {\"price_usd\": 84.5}"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Options{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	raw, err := c.ExtractJSON(context.Background(), "<html>price U$ 84.50</html>", "Extract the price")
	require.NoError(t, err)
	assert.JSONEq(t, `{"price_usd": 84.5}`, string(raw))
}

func TestExtractJSONServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Model: "m"}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.ExtractJSON(context.Background(), "content", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
