// Package rabbitclient provides the public constructor for a rabbit.Client.
package rabbitclient

import (
	"fmt"
	"strings"

	"github.com/rabbitz-io/rabbit/internal/client"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
)

// New creates a client for the server at cfg.BaseURL. The URL is normalized
// by trimming a trailing slash and defaulting to https when no scheme is
// present.
func New(cfg *rabbit.Config) (rabbit.Client, error) {
	if cfg == nil {
		return nil, rabbit.ErrConfigRequired
	}

	normalized := *cfg
	normalized.BaseURL = normalizeBaseURL(cfg.BaseURL)

	apiClient, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return apiClient, nil
}

// NewWithPrivateToken creates a client authenticating with a private token.
func NewWithPrivateToken(baseURL, token string) (rabbit.Client, error) {
	return New(&rabbit.Config{
		BaseURL:   baseURL,
		TokenType: rabbit.TokenTypePrivate,
		Token:     token,
	})
}

// NewWithAccessToken creates a client authenticating with an OAuth access
// token.
func NewWithAccessToken(baseURL, token string) (rabbit.Client, error) {
	return New(&rabbit.Config{
		BaseURL:   baseURL,
		TokenType: rabbit.TokenTypeAccess,
		Token:     token,
	})
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimSuffix(baseURL, "/")

	if baseURL == "" {
		return baseURL
	}

	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}
