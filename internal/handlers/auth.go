package handlers

import (
	"net/http"
	"net/url"

	"lead-bridge/internal/common/logging"
)

const authorizeURL = "https://oauth.pipedrive.com/oauth/authorize"

// Authorize redirects the browser to the CRM's OAuth authorization page
func (h *Handlers) Authorize(w http.ResponseWriter, r *http.Request) {
	if h.config.ClientID == "" || h.config.RedirectURI == "" {
		http.Error(w, "CLIENT_ID or REDIRECT_URI is not configured", http.StatusInternalServerError)
		return
	}

	query := url.Values{}
	query.Set("client_id", h.config.ClientID)
	query.Set("redirect_uri", h.config.RedirectURI)

	http.Redirect(w, r, authorizeURL+"?"+query.Encode(), http.StatusFound)
}

// Auth is the OAuth callback: it exchanges the authorization code for a
// token pair, persists the full record and redirects to the CRM's API
// domain from the exchange response.
func (h *Handlers) Auth(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "query parameter code is required", http.StatusBadRequest)
		return
	}

	result, err := h.exchanger.ExchangeCode(r.Context(), code)
	if err != nil {
		logging.Error("Authorization code exchange failed", err)
		http.Error(w, "failed to authorize application", http.StatusInternalServerError)
		return
	}

	// Persistence is fire-and-forget: a failed write is logged but the
	// authorization still succeeds for the user
	if err := h.store.Write(r.Context(), &result.Token); err != nil {
		logging.Warn("Failed to persist token after authorization",
			logging.Field{Key: "error", Value: err.Error()})
	}

	logging.Info("Application authorized",
		logging.Field{Key: "api_domain", Value: result.APIDomain})

	http.Redirect(w, r, result.APIDomain, http.StatusFound)
}
