package tenant

import (
	"strings"

	"lead-bridge/internal/common/errors"
)

// CRM custom field keys shared by both tenants' account
var defaultFieldKeys = map[string]string{
	"cidade":     "84a4d867a88b27fe1552cb95fb2cb75c73127f96",
	"cnpj":       "c9e6cddb7061f8ce898bcf4cabf08636584e01a0",
	"modelo":     "f6ac0ab6b51cddb7db2482dd796e9ad22a3cb928",
	"valorConta": "2a5b858a90969173c95ca539bee1ba5e0ecb88d0",
	"origemLead": "83b630d614df3a1642f8d60389f7827406520925",
}

// Resolver matches inbound requests against the closed tenant set
type Resolver struct {
	tenants []*Tenant
}

// NewResolver builds the resolver over the two known web properties
func NewResolver() *Resolver {
	return &Resolver{
		tenants: []*Tenant{
			{
				ID:               "hbenergia",
				MatchHeaderValue: "https://hbenergia.com.br",
				PipelineID:       1,
				StageID:          1,
				LeadOrigin:       74,
				fieldKeys:        defaultFieldKeys,
				mapLead:          mapSiteLead,
			},
			{
				ID:               "hbenergia-lp",
				MatchHeaderValue: "https://lp.hbenergia.com.br",
				PipelineID:       19,
				StageID:          114,
				LeadOrigin:       75,
				fieldKeys:        defaultFieldKeys,
				mapLead:          mapLandingLead,
			},
		},
	}
}

// Resolve classifies a request by its User-Agent header. The header is
// semicolon-delimited; the second segment, trimmed, must match exactly one
// tenant's match value. Case matters.
func (r *Resolver) Resolve(userAgent string) (*Tenant, error) {
	segments := strings.Split(userAgent, ";")
	if len(segments) < 2 {
		return nil, errors.ValidationError("unrecognized User-Agent")
	}

	value := strings.TrimSpace(segments[1])
	for _, t := range r.tenants {
		if t.MatchHeaderValue == value {
			return t, nil
		}
	}

	return nil, errors.ValidationError("unrecognized User-Agent")
}

// Tenants returns the configured tenant set
func (r *Resolver) Tenants() []*Tenant {
	return r.tenants
}
