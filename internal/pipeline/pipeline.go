// Package pipeline orchestrates one webhook submission end to end: tenant
// resolution, field mapping, person creation, owner assignment and lead
// creation.
package pipeline

import (
	"context"

	"lead-bridge/internal/common/errors"
	"lead-bridge/internal/common/logging"
	"lead-bridge/internal/crm"
	"lead-bridge/internal/tenant"
	"lead-bridge/internal/token"
)

// CRMAPI is the slice of the CRM client the pipeline uses
type CRMAPI interface {
	CreatePerson(ctx context.Context, accessToken string, basics tenant.PersonBasics) (*crm.Person, error)
	CreateLead(ctx context.Context, accessToken string, payload crm.LeadPayload) (*crm.Lead, error)
	ListUsers(ctx context.Context, accessToken string) ([]crm.User, error)
}

// Pipeline runs once per inbound webhook request, reading the latest token
// from the store at call time.
//
// Failure policy: any rejection before person creation returns a validation
// error and performs zero CRM calls. A failed person creation aborts the
// run. A failed user listing only skips owner assignment. A failed lead
// creation after a created person leaves that person behind; there is no
// compensation, the orphan is logged and accepted.
type Pipeline struct {
	resolver *tenant.Resolver
	store    token.Store
	api      CRMAPI
	assigner *OwnerAssigner
}

// New creates the integration pipeline
func New(resolver *tenant.Resolver, store token.Store, api CRMAPI, assigner *OwnerAssigner) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		store:    store,
		api:      api,
		assigner: assigner,
	}
}

// Run processes one submission identified by its User-Agent header and raw
// form fields.
func (p *Pipeline) Run(ctx context.Context, userAgent string, fields tenant.Fields) error {
	t, err := p.resolver.Resolve(userAgent)
	if err != nil {
		return err
	}

	mapped, err := t.MapLead(fields)
	if err != nil {
		return err
	}

	accessToken := p.currentAccessToken(ctx)

	person, err := p.api.CreatePerson(ctx, accessToken, mapped.Person)
	if err != nil {
		return err
	}

	log := logging.GetGlobalLogger().WithFields(
		logging.Field{Key: "tenant", Value: t.ID},
		logging.Field{Key: "person_id", Value: person.ID})

	payload := crm.LeadPayload{
		PersonID: person.ID,
		Custom:   mapped.Lead.Custom,
		Value:    mapped.Lead.Value,
	}

	if ownerID, ok := p.pickOwner(ctx, accessToken, log); ok {
		payload.OwnerID = &ownerID
	}

	if _, err := p.api.CreateLead(ctx, accessToken, payload); err != nil {
		// The person already exists in the CRM and stays there
		log.Error("Lead creation failed, person record is orphaned", err)
		return err
	}

	log.Info("Lead created")
	return nil
}

// currentAccessToken reads the latest persisted token. Read failures are
// logged and degrade to an empty token; the CRM rejects the call and the
// failure surfaces as an api_call error.
func (p *Pipeline) currentAccessToken(ctx context.Context) string {
	tok, err := p.store.Read(ctx)
	if err != nil {
		logging.Warn("Failed to read token for request",
			logging.Field{Key: "error", Value: err.Error()})
		return ""
	}
	if tok == nil {
		logging.Warn("No token persisted, CRM calls will be rejected")
		return ""
	}
	return tok.AccessToken
}

// pickOwner lists the CRM's active users and draws one uniformly. A failed
// listing or an empty user list skips assignment instead of failing the lead.
func (p *Pipeline) pickOwner(ctx context.Context, accessToken string, log logging.Logger) (int, bool) {
	users, err := p.api.ListUsers(ctx, accessToken)
	if err != nil {
		log.Warn("Failed to list users, skipping owner assignment",
			logging.Field{Key: "error", Value: err.Error()})
		return 0, false
	}

	ids := make([]int, len(users))
	for i, user := range users {
		ids[i] = user.ID
	}

	ownerID, ok := p.assigner.Assign(ids)
	if !ok {
		log.Warn("User list is empty, skipping owner assignment")
		return 0, false
	}

	return ownerID, true
}

// IsRejection reports whether the pipeline error was a pre-CRM rejection
// (unknown tenant or missing field) rather than a CRM failure.
func IsRejection(err error) bool {
	return errors.IsType(err, errors.ErrTypeValidation)
}
