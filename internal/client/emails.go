package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rabbitz-io/rabbit/internal/http"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
)

// EmailsClient implements rabbit.EmailsClient.
type EmailsClient struct {
	httpClient *http.Client
}

// NewEmailsClient creates a new emails client.
func NewEmailsClient(httpClient *http.Client) *EmailsClient {
	return &EmailsClient{
		httpClient: httpClient,
	}
}

// ListEmails implements rabbit.EmailsClient.ListEmails.
func (c *EmailsClient) ListEmails(ctx context.Context) ([]rabbit.Email, error) {
	resp, err := c.httpClient.Get(ctx, "/user/emails", nil)
	if err != nil {
		return nil, fmt.Errorf("listing emails: %w", err)
	}

	var emails []rabbit.Email

	err = http.DecodeJSON(resp, &emails)
	if err != nil {
		return nil, fmt.Errorf("parsing emails: %w", err)
	}

	return emails, nil
}

// ListUserEmails implements rabbit.EmailsClient.ListUserEmails.
func (c *EmailsClient) ListUserEmails(ctx context.Context, ref rabbit.UserRef) ([]rabbit.Email, error) {
	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/users/"+segment+"/emails", nil)
	if err != nil {
		return nil, fmt.Errorf("listing user emails: %w", err)
	}

	var emails []rabbit.Email

	err = http.DecodeJSON(resp, &emails)
	if err != nil {
		return nil, fmt.Errorf("parsing user emails: %w", err)
	}

	return emails, nil
}

// GetEmail implements rabbit.EmailsClient.GetEmail.
func (c *EmailsClient) GetEmail(ctx context.Context, emailID int64) (*rabbit.Email, error) {
	if emailID <= 0 {
		return nil, rabbit.InvalidArgumentf("email ID must be positive, got %d", emailID)
	}

	resp, err := c.httpClient.Get(ctx, "/user/emails/"+strconv.FormatInt(emailID, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("getting email: %w", err)
	}

	var email rabbit.Email

	err = http.DecodeJSON(resp, &email)
	if err != nil {
		return nil, fmt.Errorf("parsing email: %w", err)
	}

	return &email, nil
}

// AddEmail implements rabbit.EmailsClient.AddEmail. The address is validated
// client-side before any request is sent.
func (c *EmailsClient) AddEmail(ctx context.Context, email string) (*rabbit.Email, error) {
	if !emailPattern.MatchString(email) {
		return nil, rabbit.NewInvalidArgumentError(rabbit.ErrInvalidEmail)
	}

	form := url.Values{"email": []string{email}}

	resp, err := c.httpClient.Post(ctx, "/user/emails", form)
	if err != nil {
		return nil, fmt.Errorf("adding email: %w", err)
	}

	var created rabbit.Email

	err = http.DecodeJSON(resp, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing added email: %w", err)
	}

	return &created, nil
}

// AddUserEmail implements rabbit.EmailsClient.AddUserEmail.
func (c *EmailsClient) AddUserEmail(ctx context.Context, ref rabbit.UserRef, email string, skipConfirmation bool) (*rabbit.Email, error) {
	if !emailPattern.MatchString(email) {
		return nil, rabbit.NewInvalidArgumentError(rabbit.ErrInvalidEmail)
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	form := url.Values{"email": []string{email}}
	if skipConfirmation {
		form.Set("skip_confirmation", "true")
	}

	resp, err := c.httpClient.Post(ctx, "/users/"+segment+"/emails", form)
	if err != nil {
		return nil, fmt.Errorf("adding user email: %w", err)
	}

	var created rabbit.Email

	err = http.DecodeJSON(resp, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing added user email: %w", err)
	}

	return &created, nil
}

// DeleteEmail implements rabbit.EmailsClient.DeleteEmail.
func (c *EmailsClient) DeleteEmail(ctx context.Context, emailID int64) error {
	if emailID <= 0 {
		return rabbit.InvalidArgumentf("email ID must be positive, got %d", emailID)
	}

	_, err := c.httpClient.Delete(ctx, "/user/emails/"+strconv.FormatInt(emailID, 10), nil)
	if err != nil {
		return fmt.Errorf("deleting email: %w", err)
	}

	return nil
}

// DeleteUserEmail implements rabbit.EmailsClient.DeleteUserEmail.
func (c *EmailsClient) DeleteUserEmail(ctx context.Context, ref rabbit.UserRef, emailID int64) error {
	if emailID <= 0 {
		return rabbit.InvalidArgumentf("email ID must be positive, got %d", emailID)
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, "/users/"+segment+"/emails/"+strconv.FormatInt(emailID, 10), nil)
	if err != nil {
		return fmt.Errorf("deleting user email: %w", err)
	}

	return nil
}
