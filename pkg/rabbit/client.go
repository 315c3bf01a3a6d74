package rabbit

import (
	"context"
	"time"
)

// HeaderSecretToken is the response header every reply must echo the
// configured secret token in, when one is set.
const HeaderSecretToken = "X-Rabbit-Token"

// Client provides access to the resource-specific clients.
type Client interface {
	Users() UsersClient
	SSHKeys() SSHKeysClient
	ImpersonationTokens() ImpersonationTokensClient
	Emails() EmailsClient
	CustomAttributes() CustomAttributesClient

	// Version returns the server version and revision.
	Version(ctx context.Context) (*Version, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Credential is the token presented on every request. Immutable after
// construction.
type Credential struct {
	// Type selects the header the token is sent in: TokenTypePrivate uses
	// PRIVATE-TOKEN, TokenTypeAccess uses Authorization: Bearer.
	Type TokenType
	// Token is the secret value itself.
	Token string
}

// PrivateToken builds a credential sent as a PRIVATE-TOKEN header.
func PrivateToken(token string) *Credential {
	return &Credential{Type: TokenTypePrivate, Token: token}
}

// AccessToken builds a credential sent as an Authorization bearer token.
func AccessToken(token string) *Credential {
	return &Credential{Type: TokenTypeAccess, Token: token}
}

// Config represents client configuration for building a rabbit.Client.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via context passed to
// client methods; HTTPTimeout bounds the underlying transport. Retries apply
// to connection errors, 5xx, and 429 responses only, tuned via RetryMax/
// RetryWaitMin/RetryWaitMax. Retries are disabled when RetryMax is 0.
type Config struct {
	// BaseURL: base URL of the server (e.g., "https://rabbit.example.com").
	// rabbitclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	BaseURL string

	// TokenType selects the authentication header; defaults to
	// TokenTypePrivate when empty.
	TokenType TokenType
	// Token is the private or access token value. Required.
	Token string
	// SecretToken: when set, every response must echo it in the
	// X-Rabbit-Token header. A mismatch fails the call even on a 2xx status.
	SecretToken string

	// DefaultPerPage: page size used by list helpers when the caller does
	// not specify one. Zero means the library default.
	DefaultPerPage int
	// HTTPTimeout: transport-level timeout for each request attempt.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is
	// provided. Credential headers are masked.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// Cache: optional read cache for GET responses.
	Cache Cache
	// CacheTTL: lifetime of cached GET responses when Cache is set.
	CacheTTL time.Duration
}

// Credential returns the credential carried by the config, defaulting the
// token type to TokenTypePrivate.
func (c *Config) Credential() *Credential {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = TokenTypePrivate
	}

	return &Credential{Type: tokenType, Token: c.Token}
}
