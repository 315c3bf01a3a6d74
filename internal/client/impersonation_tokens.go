package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rabbitz-io/rabbit/internal/http"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
)

// ImpersonationTokensClient implements rabbit.ImpersonationTokensClient.
type ImpersonationTokensClient struct {
	httpClient *http.Client
}

// NewImpersonationTokensClient creates a new impersonation tokens client.
func NewImpersonationTokensClient(httpClient *http.Client) *ImpersonationTokensClient {
	return &ImpersonationTokensClient{
		httpClient: httpClient,
	}
}

// List implements rabbit.ImpersonationTokensClient.List.
func (c *ImpersonationTokensClient) List(ctx context.Context, ref rabbit.UserRef, state rabbit.ImpersonationState) ([]rabbit.ImpersonationToken, error) {
	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	params := rabbit.NewQueryParams()
	if state != "" && state != rabbit.ImpersonationStateAll {
		params.WithParam("state", string(state))
	}

	resp, err := c.httpClient.Get(ctx, "/users/"+segment+"/impersonation_tokens", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing impersonation tokens: %w", err)
	}

	var tokens []rabbit.ImpersonationToken

	err = http.DecodeJSON(resp, &tokens)
	if err != nil {
		return nil, fmt.Errorf("parsing impersonation tokens: %w", err)
	}

	return tokens, nil
}

// Get implements rabbit.ImpersonationTokensClient.Get.
func (c *ImpersonationTokensClient) Get(ctx context.Context, ref rabbit.UserRef, tokenID int64) (*rabbit.ImpersonationToken, error) {
	if tokenID <= 0 {
		return nil, rabbit.InvalidArgumentf("token ID must be positive, got %d", tokenID)
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	path := "/users/" + segment + "/impersonation_tokens/" + strconv.FormatInt(tokenID, 10)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting impersonation token: %w", err)
	}

	var token rabbit.ImpersonationToken

	err = http.DecodeJSON(resp, &token)
	if err != nil {
		return nil, fmt.Errorf("parsing impersonation token: %w", err)
	}

	return &token, nil
}

// GetResult implements rabbit.ImpersonationTokensClient.GetResult.
func (c *ImpersonationTokensClient) GetResult(ctx context.Context, ref rabbit.UserRef, tokenID int64) rabbit.Result[*rabbit.ImpersonationToken] {
	token, err := c.Get(ctx, ref, tokenID)

	switch {
	case err == nil:
		return rabbit.OK(token)
	case rabbit.IsNotFound(err):
		return rabbit.NotFoundResult[*rabbit.ImpersonationToken](err)
	default:
		return rabbit.FailedResult[*rabbit.ImpersonationToken](err)
	}
}

// Create implements rabbit.ImpersonationTokensClient.Create. Scopes are sent
// as repeated scopes[] form values; the expiry is sent as an ISO 8601 date.
func (c *ImpersonationTokensClient) Create(ctx context.Context, ref rabbit.UserRef, name string, expiresAt *time.Time, scopes []rabbit.TokenScope) (*rabbit.ImpersonationToken, error) {
	if strings.TrimSpace(name) == "" {
		return nil, rabbit.InvalidArgumentf("token name is required")
	}

	if len(scopes) == 0 {
		return nil, rabbit.NewInvalidArgumentError(rabbit.ErrScopesRequired)
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("name", name)

	if expiresAt != nil {
		form.Set("expires_at", isoDate(*expiresAt))
	}

	for _, scope := range scopes {
		form.Add("scopes[]", string(scope))
	}

	resp, err := c.httpClient.Post(ctx, "/users/"+segment+"/impersonation_tokens", form)
	if err != nil {
		return nil, fmt.Errorf("creating impersonation token: %w", err)
	}

	var token rabbit.ImpersonationToken

	err = http.DecodeJSON(resp, &token)
	if err != nil {
		return nil, fmt.Errorf("parsing created impersonation token: %w", err)
	}

	return &token, nil
}

// Revoke implements rabbit.ImpersonationTokensClient.Revoke.
func (c *ImpersonationTokensClient) Revoke(ctx context.Context, ref rabbit.UserRef, tokenID int64) error {
	if tokenID <= 0 {
		return rabbit.InvalidArgumentf("token ID must be positive, got %d", tokenID)
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return err
	}

	path := "/users/" + segment + "/impersonation_tokens/" + strconv.FormatInt(tokenID, 10)

	_, err = c.httpClient.Delete(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("revoking impersonation token: %w", err)
	}

	return nil
}
