package browser

import (
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Headless {
		t.Error("Expected headless to be true by default")
	}

	if opts.Timeout != 30*time.Second {
		t.Errorf("Expected timeout to be 30s, got %v", opts.Timeout)
	}

	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("Expected viewport to be 1920x1080, got %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}

	if opts.Locale != "pt-BR" {
		t.Errorf("Expected locale to be pt-BR, got %s", opts.Locale)
	}
}

func TestIsChallengePage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"cloudflare en", "<title>Just a moment...</title>", true},
		{"cloudflare pt", "Verificando seu navegador antes de continuar", true},
		{"normal page", "<h1>Xiaomi Redmi Note 13</h1>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isChallengePage(tt.content); got != tt.want {
				t.Errorf("isChallengePage() = %v, want %v", got, tt.want)
			}
		})
	}
}
