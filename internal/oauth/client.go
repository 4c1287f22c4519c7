// Package oauth performs the authorization-code and refresh-token exchanges
// against the CRM's OAuth endpoint.
package oauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lead-bridge/internal/circuitbreaker"
	"lead-bridge/internal/common/errors"
	"lead-bridge/internal/common/httputil"
	"lead-bridge/internal/token"
)

// Config holds the OAuth client credentials and endpoints
type Config struct {
	// BaseURL is the CRM API base; the token endpoint is <BaseURL>/oauth/token
	BaseURL string
	// ClientID is the OAuth2 client identifier registered with the CRM
	ClientID string
	// ClientSecret is the OAuth2 client secret
	ClientSecret string
	// RedirectURI is the callback URL sent with authorization-code exchanges
	RedirectURI string
	// Timeout bounds each token request; zero means 30 seconds
	Timeout time.Duration
}

// tokenResponse maps the CRM's OAuth token response
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	APIDomain    string `json:"api_domain"`
}

// ExchangeResult is the outcome of an authorization-code exchange
type ExchangeResult struct {
	// Token is the issued token pair
	Token token.Token
	// APIDomain is the account-specific API base returned by the CRM,
	// used as the post-authorization redirect target
	APIDomain string
}

// Client exchanges authorization codes and refresh tokens for token pairs.
// Requests authenticate with HTTP Basic (clientId:clientSecret) and carry a
// form-encoded body, matching the CRM's token endpoint contract.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *circuitbreaker.GoBreakerAdapter
}

// NewClient creates an OAuth client for the configured CRM
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: httputil.NewHTTPClientWithTimeout(timeout),
		breaker:    circuitbreaker.NewGoBreaker("oauth-exchange", circuitbreaker.OAuthConfig, nil),
	}
}

// ExchangeCode trades an authorization code for a token pair
func (c *Client) ExchangeCode(ctx context.Context, code string) (*ExchangeResult, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.config.RedirectURI)

	resp, err := c.exchange(ctx, data)
	if err != nil {
		return nil, err
	}

	return &ExchangeResult{
		Token: token.Token{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			ExpiresIn:    resp.ExpiresIn,
			ObtainedAt:   time.Now().UTC(),
		},
		APIDomain: resp.APIDomain,
	}, nil
}

// Refresh trades a refresh token for a new token pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*token.Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	resp, err := c.exchange(ctx, data)
	if err != nil {
		return nil, err
	}

	return &token.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		ObtainedAt:   time.Now().UTC(),
	}, nil
}

// exchange posts the form to the token endpoint and decodes the response
func (c *Client) exchange(ctx context.Context, data url.Values) (*tokenResponse, error) {
	tokenURL := strings.TrimSuffix(c.config.BaseURL, "/") + "/oauth/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.InternalError("failed to create token request", err)
	}

	req.Header.Set("Authorization", c.basicAuth())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp *http.Response
	err = c.breaker.Execute(ctx, func() error {
		var httpErr error
		resp, httpErr = c.httpClient.Do(req)
		return httpErr
	})
	if err != nil {
		return nil, errors.OAuthExchangeError(fmt.Sprintf("token request failed: %v", err), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.InternalError("failed to read token response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.OAuthExchangeError(
			fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, errors.OAuthExchangeError(fmt.Sprintf("failed to decode token response: %v", err), resp.StatusCode)
	}

	if tokenResp.AccessToken == "" {
		return nil, errors.OAuthExchangeError("no access token in response", resp.StatusCode)
	}

	return &tokenResp, nil
}

func (c *Client) basicAuth() string {
	credentials := c.config.ClientID + ":" + c.config.ClientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}
