// Package tenant classifies inbound submissions into one of a closed set of
// web properties and carries each property's CRM field mapping.
package tenant

import (
	"strconv"
	"strings"

	"lead-bridge/internal/common/errors"
)

// Fields holds the raw form values of one submission, keyed by the tenant's
// form field names.
type Fields map[string]string

// Monetary is a currency-bearing amount attached to a lead
type Monetary struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PersonBasics are the tenant-independent person attributes extracted from
// every submission.
type PersonBasics struct {
	Name  string
	Email string
	Phone string
}

// LeadPartial is the tenant-dependent part of the lead payload: custom field
// values keyed by the CRM's opaque field keys, plus an optional monetary
// value.
type LeadPartial struct {
	Custom map[string]interface{}
	Value  *Monetary
}

// MappedLead is the result of mapping a submission for one tenant
type MappedLead struct {
	Person PersonBasics
	Lead   LeadPartial
}

// Tenant is one of the known web properties. Each tenant carries its own
// field-mapping capability, selected once by Resolve and threaded through
// the rest of the pipeline; adding a tenant means adding a new value here,
// not a lookup-table entry, because the tenants' field shapes differ
// structurally.
type Tenant struct {
	// ID names the tenant in logs
	ID string
	// MatchHeaderValue is compared against the second User-Agent segment
	MatchHeaderValue string
	// PipelineID and StageID identify the CRM pipeline this tenant feeds
	PipelineID int
	StageID    int
	// LeadOrigin is the tenant's fixed lead-origin code
	LeadOrigin int
	// fieldKeys maps logical field names to the CRM's opaque custom field keys
	fieldKeys map[string]string
	// mapLead builds the tenant-dependent lead partial
	mapLead func(t *Tenant, fields Fields) (LeadPartial, error)
}

// MapLead transforms a submission's raw fields into the person attributes
// and the tenant-shaped lead partial. Missing required fields yield a
// validation error before any CRM call is made.
func (t *Tenant) MapLead(fields Fields) (*MappedLead, error) {
	person, err := extractPerson(fields)
	if err != nil {
		return nil, err
	}

	lead, err := t.mapLead(t, fields)
	if err != nil {
		return nil, err
	}

	lead.Custom[t.fieldKeys["origemLead"]] = t.LeadOrigin

	return &MappedLead{Person: person, Lead: lead}, nil
}

func extractPerson(fields Fields) (PersonBasics, error) {
	for _, name := range []string{"nome", "email", "cel"} {
		if fields[name] == "" {
			return PersonBasics{}, errors.ValidationError("missing required field: " + name)
		}
	}

	return PersonBasics{
		Name:  fields["nome"],
		Email: fields["email"],
		Phone: fields["cel"],
	}, nil
}

// mapSiteLead maps the main-site submission: city, optional CNPJ and the
// account bill amount.
func mapSiteLead(t *Tenant, fields Fields) (LeadPartial, error) {
	for _, name := range []string{"cidade", "conta"} {
		if fields[name] == "" {
			return LeadPartial{}, errors.ValidationError("missing required field: " + name)
		}
	}

	custom := map[string]interface{}{
		t.fieldKeys["cidade"]:     fields["cidade"],
		t.fieldKeys["valorConta"]: fields["conta"],
	}

	// CNPJ is optional; absence is tolerated rather than rejected
	if cnpj := fields["cnpj"]; cnpj != "" {
		custom[t.fieldKeys["cnpj"]] = cnpj
	}

	return LeadPartial{Custom: custom}, nil
}

// mapLandingLead maps the landing-page submission: city plus a combined
// "<name>:<price>" model field that yields both the model custom field and a
// BRL monetary value.
func mapLandingLead(t *Tenant, fields Fields) (LeadPartial, error) {
	for _, name := range []string{"cidade", "modelo"} {
		if fields[name] == "" {
			return LeadPartial{}, errors.ValidationError("missing required field: " + name)
		}
	}

	parts := strings.SplitN(fields["modelo"], ":", 2)
	if len(parts) != 2 {
		return LeadPartial{}, errors.ValidationError("field modelo must have the form <name>:<price>")
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LeadPartial{}, errors.ValidationError("field modelo carries an unparsable price: " + parts[1])
	}

	custom := map[string]interface{}{
		t.fieldKeys["cidade"]: fields["cidade"],
		t.fieldKeys["modelo"]: strings.TrimSpace(parts[0]),
	}

	return LeadPartial{
		Custom: custom,
		Value:  &Monetary{Amount: amount, Currency: "BRL"},
	}, nil
}
