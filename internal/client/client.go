// Package client implements the rabbit.Client interface on top of the
// request executor.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitz-io/rabbit/internal/constants"
	"github.com/rabbitz-io/rabbit/internal/http"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
)

// Client implements the rabbit.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     rabbit.Logger
	perPage    int

	// Resource clients, built once at construction.
	users               rabbit.UsersClient
	sshKeys             rabbit.SSHKeysClient
	impersonationTokens rabbit.ImpersonationTokensClient
	emails              rabbit.EmailsClient
	customAttributes    rabbit.CustomAttributesClient
}

// createHTTPClientOptions builds executor options from config.
func createHTTPClientOptions(config *rabbit.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.SecretToken != "" {
		httpOpts = append(httpOpts, http.WithSecretToken(config.SecretToken))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.Cache != nil {
		httpOpts = append(httpOpts, http.WithCache(config.Cache, config.CacheTTL))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new API client. The base URL must already be normalized;
// see pkg/rabbitclient for the public constructor.
func New(config *rabbit.Config) (*Client, error) {
	if config == nil {
		return nil, rabbit.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, rabbit.ErrBaseURLRequired
	}

	if config.Token == "" {
		return nil, rabbit.ErrTokenRequired
	}

	httpClient := http.NewClient(config.BaseURL, config.Credential(), createHTTPClientOptions(config)...)

	perPage := config.DefaultPerPage
	if perPage <= 0 {
		perPage = constants.DefaultPerPage
	}

	client := &Client{
		httpClient: httpClient,
		baseURL:    config.BaseURL,
		logger:     config.Logger,
		perPage:    perPage,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.users = NewUsersClient(c.httpClient, c.perPage)
	c.sshKeys = NewSSHKeysClient(c.httpClient)
	c.impersonationTokens = NewImpersonationTokensClient(c.httpClient)
	c.emails = NewEmailsClient(c.httpClient)
	c.customAttributes = NewCustomAttributesClient(c.httpClient)
}

// Users implements rabbit.Client.Users.
func (c *Client) Users() rabbit.UsersClient {
	return c.users
}

// SSHKeys implements rabbit.Client.SSHKeys.
func (c *Client) SSHKeys() rabbit.SSHKeysClient {
	return c.sshKeys
}

// ImpersonationTokens implements rabbit.Client.ImpersonationTokens.
func (c *Client) ImpersonationTokens() rabbit.ImpersonationTokensClient {
	return c.impersonationTokens
}

// Emails implements rabbit.Client.Emails.
func (c *Client) Emails() rabbit.EmailsClient {
	return c.emails
}

// CustomAttributes implements rabbit.Client.CustomAttributes.
func (c *Client) CustomAttributes() rabbit.CustomAttributesClient {
	return c.customAttributes
}

// Version implements rabbit.Client.Version.
func (c *Client) Version(ctx context.Context) (*rabbit.Version, error) {
	resp, err := c.httpClient.Get(ctx, "/version", nil)
	if err != nil {
		return nil, fmt.Errorf("getting version: %w", err)
	}

	var version rabbit.Version

	err = http.DecodeJSON(resp, &version)
	if err != nil {
		return nil, fmt.Errorf("parsing version response: %w", err)
	}

	return &version, nil
}

// HTTPClient exposes the executor for advanced use.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// isoDate formats a timestamp the way the server expects date parameters.
func isoDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
