// Package crm is a thin authenticated HTTP client for the three CRM
// operations the bridge uses: create person, create lead, list users.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lead-bridge/internal/circuitbreaker"
	"lead-bridge/internal/common/errors"
	"lead-bridge/internal/common/httputil"
	"lead-bridge/internal/tenant"
)

// Client calls the CRM REST API with bearer authentication. It applies a
// bounded timeout and a circuit breaker but deliberately no retries: a
// failed call aborts the caller's pipeline for that request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.GoBreakerAdapter
	now        func() time.Time
}

// NewClient creates a CRM client for the given API base URL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httputil.NewHTTPClientWithTimeout(timeout),
		breaker:    circuitbreaker.NewGoBreaker("crm-api", circuitbreaker.CRMConfig, nil),
		now:        time.Now,
	}
}

// CreatePerson creates a CRM contact from the submission's person attributes
func (c *Client) CreatePerson(ctx context.Context, accessToken string, basics tenant.PersonBasics) (*Person, error) {
	var person Person
	payload := newPersonPayload(basics, c.now())
	if err := c.call(ctx, http.MethodPost, "/v1/persons", accessToken, payload, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// CreateLead creates a CRM lead linked to a previously created person
func (c *Client) CreateLead(ctx context.Context, accessToken string, payload LeadPayload) (*Lead, error) {
	var lead Lead
	if err := c.call(ctx, http.MethodPost, "/v1/leads", accessToken, payload.body(), &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListUsers returns the CRM's active user list
func (c *Client) ListUsers(ctx context.Context, accessToken string) ([]User, error) {
	var users []User
	if err := c.call(ctx, http.MethodGet, "/v1/users", accessToken, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// call executes one bearer-authenticated JSON request and decodes the
// response into out.
func (c *Client) call(ctx context.Context, method, path, accessToken string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.InternalError("failed to encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.InternalError("failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp *http.Response
	err = c.breaker.Execute(ctx, func() error {
		var httpErr error
		resp, httpErr = c.httpClient.Do(req)
		return httpErr
	})
	if err != nil {
		return errors.APICallError(fmt.Sprintf("%s %s failed: %v", method, path, err), 0)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.InternalError("failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.APICallError(
			fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode),
			resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(responseBody, out); err != nil {
			return errors.APICallError(fmt.Sprintf("%s %s returned an undecodable body: %v", method, path, err), resp.StatusCode)
		}
	}

	return nil
}
