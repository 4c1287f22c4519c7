// Package token manages the CRM token pair: its durable storage and its
// periodic background renewal.
package token

import "time"

// Token is the persisted CRM token pair. It is always read and written as a
// whole record; partial merges are never performed.
type Token struct {
	// AccessToken is the short-lived token used for CRM API calls
	AccessToken string `json:"access_token"`
	// RefreshToken is the long-lived token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`
	// ExpiresIn is the lifetime in seconds of the access token as issued
	ExpiresIn int `json:"expires_in"`
	// ObtainedAt records when the pair was issued. Informational only; the
	// refresh schedule never consults it.
	ObtainedAt time.Time `json:"obtained_at,omitempty"`
}
