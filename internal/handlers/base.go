// Package handlers implements the bridge's HTTP surface: the interactive
// OAuth authorization endpoints and the lead integration webhook.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"lead-bridge/internal/config"
	"lead-bridge/internal/oauth"
	"lead-bridge/internal/pipeline"
	"lead-bridge/internal/tenant"
	"lead-bridge/internal/token"
)

// CodeExchanger performs the interactive authorization-code exchange
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*oauth.ExchangeResult, error)
}

// Handlers carries the dependencies of all HTTP endpoints
type Handlers struct {
	config    *config.Config
	exchanger CodeExchanger
	store     token.Store
	pipeline  *pipeline.Pipeline
}

// New creates the HTTP handler set
func New(cfg *config.Config, exchanger CodeExchanger, store token.Store, pipe *pipeline.Pipeline) *Handlers {
	return &Handlers{
		config:    cfg,
		exchanger: exchanger,
		store:     store,
		pipeline:  pipe,
	}
}

// HealthCheck reports liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// parseSubmission extracts the form values shaped as fields.<name>.value
// into a flat field map.
func parseSubmission(r *http.Request) (tenant.Fields, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	fields := make(tenant.Fields)
	for key, values := range r.PostForm {
		name, ok := fieldName(key)
		if !ok || len(values) == 0 {
			continue
		}
		fields[name] = values[0]
	}

	return fields, nil
}

func fieldName(key string) (string, bool) {
	if !strings.HasPrefix(key, "fields.") || !strings.HasSuffix(key, ".value") {
		return "", false
	}

	name := strings.TrimSuffix(strings.TrimPrefix(key, "fields."), ".value")
	if name == "" || strings.Contains(name, ".") {
		return "", false
	}

	return name, true
}
