package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rabbitz-io/rabbit/internal/http"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
)

// CustomAttributesClient implements rabbit.CustomAttributesClient.
type CustomAttributesClient struct {
	httpClient *http.Client
}

// NewCustomAttributesClient creates a new custom attributes client.
func NewCustomAttributesClient(httpClient *http.Client) *CustomAttributesClient {
	return &CustomAttributesClient{
		httpClient: httpClient,
	}
}

// List implements rabbit.CustomAttributesClient.List.
func (c *CustomAttributesClient) List(ctx context.Context, ref rabbit.UserRef) ([]rabbit.CustomAttribute, error) {
	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/users/"+segment+"/custom_attributes", nil)
	if err != nil {
		return nil, fmt.Errorf("listing custom attributes: %w", err)
	}

	var attributes []rabbit.CustomAttribute

	err = http.DecodeJSON(resp, &attributes)
	if err != nil {
		return nil, fmt.Errorf("parsing custom attributes: %w", err)
	}

	return attributes, nil
}

// Get implements rabbit.CustomAttributesClient.Get.
func (c *CustomAttributesClient) Get(ctx context.Context, ref rabbit.UserRef, key string) (*rabbit.CustomAttribute, error) {
	if strings.TrimSpace(key) == "" {
		return nil, rabbit.InvalidArgumentf("attribute key is required")
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/users/"+segment+"/custom_attributes/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, fmt.Errorf("getting custom attribute: %w", err)
	}

	var attribute rabbit.CustomAttribute

	err = http.DecodeJSON(resp, &attribute)
	if err != nil {
		return nil, fmt.Errorf("parsing custom attribute: %w", err)
	}

	return &attribute, nil
}

// Set implements rabbit.CustomAttributesClient.Set. The server treats create
// and change as the same PUT.
func (c *CustomAttributesClient) Set(ctx context.Context, ref rabbit.UserRef, key, value string) (*rabbit.CustomAttribute, error) {
	if strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
		return nil, rabbit.InvalidArgumentf("attribute key and value are required")
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return nil, err
	}

	form := url.Values{"value": []string{value}}

	resp, err := c.httpClient.Put(ctx, "/users/"+segment+"/custom_attributes/"+url.PathEscape(key), form)
	if err != nil {
		return nil, fmt.Errorf("setting custom attribute: %w", err)
	}

	var attribute rabbit.CustomAttribute

	err = http.DecodeJSON(resp, &attribute)
	if err != nil {
		return nil, fmt.Errorf("parsing set custom attribute: %w", err)
	}

	return &attribute, nil
}

// Delete implements rabbit.CustomAttributesClient.Delete.
func (c *CustomAttributesClient) Delete(ctx context.Context, ref rabbit.UserRef, key string) error {
	if strings.TrimSpace(key) == "" {
		return rabbit.InvalidArgumentf("attribute key is required")
	}

	segment, err := ref.PathSegment()
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, "/users/"+segment+"/custom_attributes/"+url.PathEscape(key), nil)
	if err != nil {
		return fmt.Errorf("deleting custom attribute: %w", err)
	}

	return nil
}
