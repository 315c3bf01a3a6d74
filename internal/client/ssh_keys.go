package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rabbitz-io/rabbit/internal/http"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
)

// SSHKeysClient implements rabbit.SSHKeysClient.
type SSHKeysClient struct {
	httpClient *http.Client
}

// NewSSHKeysClient creates a new SSH keys client.
func NewSSHKeysClient(httpClient *http.Client) *SSHKeysClient {
	return &SSHKeysClient{
		httpClient: httpClient,
	}
}

// ListKeys implements rabbit.SSHKeysClient.ListKeys.
func (c *SSHKeysClient) ListKeys(ctx context.Context) ([]rabbit.SSHKey, error) {
	resp, err := c.httpClient.Get(ctx, "/user/keys", nil)
	if err != nil {
		return nil, fmt.Errorf("listing SSH keys: %w", err)
	}

	var keys []rabbit.SSHKey

	err = http.DecodeJSON(resp, &keys)
	if err != nil {
		return nil, fmt.Errorf("parsing SSH keys: %w", err)
	}

	return keys, nil
}

// ListUserKeys implements rabbit.SSHKeysClient.ListUserKeys. The server does
// not echo the owner on each key, so the user ID is stamped client-side.
func (c *SSHKeysClient) ListUserKeys(ctx context.Context, userID int64) ([]rabbit.SSHKey, error) {
	if userID <= 0 {
		return nil, rabbit.InvalidArgumentf("user ID must be positive, got %d", userID)
	}

	resp, err := c.httpClient.Get(ctx, "/users/"+strconv.FormatInt(userID, 10)+"/keys", nil)
	if err != nil {
		return nil, fmt.Errorf("listing user SSH keys: %w", err)
	}

	var keys []rabbit.SSHKey

	err = http.DecodeJSON(resp, &keys)
	if err != nil {
		return nil, fmt.Errorf("parsing user SSH keys: %w", err)
	}

	for i := range keys {
		keys[i].UserID = userID
	}

	return keys, nil
}

// GetKey implements rabbit.SSHKeysClient.GetKey.
func (c *SSHKeysClient) GetKey(ctx context.Context, keyID int64) (*rabbit.SSHKey, error) {
	if keyID <= 0 {
		return nil, rabbit.InvalidArgumentf("key ID must be positive, got %d", keyID)
	}

	resp, err := c.httpClient.Get(ctx, "/user/keys/"+strconv.FormatInt(keyID, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("getting SSH key: %w", err)
	}

	var key rabbit.SSHKey

	err = http.DecodeJSON(resp, &key)
	if err != nil {
		return nil, fmt.Errorf("parsing SSH key: %w", err)
	}

	return &key, nil
}

// GetKeyResult implements rabbit.SSHKeysClient.GetKeyResult.
func (c *SSHKeysClient) GetKeyResult(ctx context.Context, keyID int64) rabbit.Result[*rabbit.SSHKey] {
	key, err := c.GetKey(ctx, keyID)

	switch {
	case err == nil:
		return rabbit.OK(key)
	case rabbit.IsNotFound(err):
		return rabbit.NotFoundResult[*rabbit.SSHKey](err)
	default:
		return rabbit.FailedResult[*rabbit.SSHKey](err)
	}
}

func sshKeyForm(title, key string) (url.Values, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(key) == "" {
		return nil, rabbit.InvalidArgumentf("title and key are required")
	}

	return url.Values{
		"title": []string{title},
		"key":   []string{key},
	}, nil
}

// AddKey implements rabbit.SSHKeysClient.AddKey.
func (c *SSHKeysClient) AddKey(ctx context.Context, title, key string) (*rabbit.SSHKey, error) {
	form, err := sshKeyForm(title, key)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/user/keys", form)
	if err != nil {
		return nil, fmt.Errorf("adding SSH key: %w", err)
	}

	var created rabbit.SSHKey

	err = http.DecodeJSON(resp, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing added SSH key: %w", err)
	}

	return &created, nil
}

// AddUserKey implements rabbit.SSHKeysClient.AddUserKey.
func (c *SSHKeysClient) AddUserKey(ctx context.Context, userID int64, title, key string) (*rabbit.SSHKey, error) {
	if userID <= 0 {
		return nil, rabbit.InvalidArgumentf("user ID must be positive, got %d", userID)
	}

	form, err := sshKeyForm(title, key)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/users/"+strconv.FormatInt(userID, 10)+"/keys", form)
	if err != nil {
		return nil, fmt.Errorf("adding user SSH key: %w", err)
	}

	var created rabbit.SSHKey

	err = http.DecodeJSON(resp, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing added user SSH key: %w", err)
	}

	created.UserID = userID

	return &created, nil
}

// DeleteKey implements rabbit.SSHKeysClient.DeleteKey.
func (c *SSHKeysClient) DeleteKey(ctx context.Context, keyID int64) error {
	if keyID <= 0 {
		return rabbit.InvalidArgumentf("key ID must be positive, got %d", keyID)
	}

	_, err := c.httpClient.Delete(ctx, "/user/keys/"+strconv.FormatInt(keyID, 10), nil)
	if err != nil {
		return fmt.Errorf("deleting SSH key: %w", err)
	}

	return nil
}

// DeleteUserKey implements rabbit.SSHKeysClient.DeleteUserKey.
func (c *SSHKeysClient) DeleteUserKey(ctx context.Context, ref rabbit.UserRef, keyID int64) error {
	if keyID <= 0 {
		return rabbit.InvalidArgumentf("key ID must be positive, got %d", keyID)
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, "/users/"+segment+"/keys/"+strconv.FormatInt(keyID, 10), nil)
	if err != nil {
		return fmt.Errorf("deleting user SSH key: %w", err)
	}

	return nil
}
