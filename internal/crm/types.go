package crm

import (
	"time"

	"lead-bridge/internal/tenant"
)

// labeledValue is the CRM's shape for a person's contact entries
type labeledValue struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary"`
	Label   string `json:"label"`
}

// personPayload is the wire shape for person creation. Every person gets a
// single primary email labeled "main", a single primary phone labeled
// "mobile", the fixed visibility level and the subscribed marketing status.
type personPayload struct {
	Name            string         `json:"name"`
	Email           []labeledValue `json:"email"`
	Phone           []labeledValue `json:"phone"`
	VisibleTo       string         `json:"visible_to"`
	MarketingStatus string         `json:"marketing_status"`
	AddTime         time.Time      `json:"add_time"`
}

func newPersonPayload(basics tenant.PersonBasics, now time.Time) personPayload {
	return personPayload{
		Name:            basics.Name,
		Email:           []labeledValue{{Value: basics.Email, Primary: true, Label: "main"}},
		Phone:           []labeledValue{{Value: basics.Phone, Primary: true, Label: "mobile"}},
		VisibleTo:       "3",
		MarketingStatus: "subscribed",
		AddTime:         now,
	}
}

// Person is the created CRM contact; only its id is consumed, to link the
// subsequent lead.
type Person struct {
	ID int `json:"id"`
}

// Lead is the created CRM lead record; the result is not otherwise consumed
type Lead struct {
	ID string `json:"id"`
}

// User is one CRM user from the active user list
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// LeadPayload is the mapped object sent to the lead-creation endpoint. The
// tenant's custom field values marshal as top-level keys next to person_id
// and owner_id, which is why the payload flattens itself into a map.
type LeadPayload struct {
	PersonID int
	// OwnerID is nil when owner assignment was skipped
	OwnerID *int
	Custom  map[string]interface{}
	Value   *tenant.Monetary
}

func (p LeadPayload) body() map[string]interface{} {
	body := make(map[string]interface{}, len(p.Custom)+3)
	for key, value := range p.Custom {
		body[key] = value
	}

	body["person_id"] = p.PersonID
	if p.OwnerID != nil {
		body["owner_id"] = *p.OwnerID
	}
	if p.Value != nil {
		body["value"] = p.Value
	}

	return body
}
