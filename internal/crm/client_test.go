package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-bridge/internal/common/errors"
	"lead-bridge/internal/tenant"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]interface{}
}

// newCRMServer returns a test CRM that records every request and replies
// per-path with the configured JSON bodies.
func newCRMServer(t *testing.T, responses map[string]string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				rec.body = body
			}
		}
		requests = append(requests, rec)

		response, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func fixedClock(c *Client) {
	c.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}
}

func TestCreatePerson(t *testing.T) {
	server, requests := newCRMServer(t, map[string]string{
		"/v1/persons": `{"id": 42}`,
	})

	client := NewClient(server.URL, 5*time.Second)
	fixedClock(client)

	person, err := client.CreatePerson(context.Background(), "tok-1", tenant.PersonBasics{
		Name:  "Ana",
		Email: "a@x.com",
		Phone: "119999",
	})
	require.NoError(t, err)
	assert.Equal(t, 42, person.ID)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "Bearer tok-1", req.auth)
	assert.Equal(t, "Ana", req.body["name"])
	assert.Equal(t, "3", req.body["visible_to"])
	assert.Equal(t, "subscribed", req.body["marketing_status"])
	assert.Equal(t, "2024-03-15T10:00:00Z", req.body["add_time"])

	emails, ok := req.body["email"].([]interface{})
	require.True(t, ok)
	require.Len(t, emails, 1)
	email := emails[0].(map[string]interface{})
	assert.Equal(t, "a@x.com", email["value"])
	assert.Equal(t, true, email["primary"])
	assert.Equal(t, "main", email["label"])

	phones := req.body["phone"].([]interface{})
	phone := phones[0].(map[string]interface{})
	assert.Equal(t, "119999", phone["value"])
	assert.Equal(t, "mobile", phone["label"])
}

func TestCreateLeadFlattensCustomFields(t *testing.T) {
	server, requests := newCRMServer(t, map[string]string{
		"/v1/leads": `{"id": "lead-uuid-1"}`,
	})

	client := NewClient(server.URL, 5*time.Second)
	ownerID := 7
	lead, err := client.CreateLead(context.Background(), "tok-1", LeadPayload{
		PersonID: 42,
		OwnerID:  &ownerID,
		Custom: map[string]interface{}{
			"84a4d867a88b27fe1552cb95fb2cb75c73127f96": "SP",
			"83b630d614df3a1642f8d60389f7827406520925": 74,
		},
		Value: &tenant.Monetary{Amount: 1500.50, Currency: "BRL"},
	})
	require.NoError(t, err)
	assert.Equal(t, "lead-uuid-1", lead.ID)

	require.Len(t, *requests, 1)
	body := (*requests)[0].body

	// Custom field keys sit at the top level next to person_id and owner_id
	assert.Equal(t, "SP", body["84a4d867a88b27fe1552cb95fb2cb75c73127f96"])
	assert.Equal(t, float64(74), body["83b630d614df3a1642f8d60389f7827406520925"])
	assert.Equal(t, float64(42), body["person_id"])
	assert.Equal(t, float64(7), body["owner_id"])

	value, ok := body["value"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1500.50, value["amount"])
	assert.Equal(t, "BRL", value["currency"])
}

func TestCreateLeadWithoutOwnerOrValue(t *testing.T) {
	server, requests := newCRMServer(t, map[string]string{
		"/v1/leads": `{"id": "lead-uuid-2"}`,
	})

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.CreateLead(context.Background(), "tok-1", LeadPayload{
		PersonID: 42,
		Custom:   map[string]interface{}{"key": "v"},
	})
	require.NoError(t, err)

	body := (*requests)[0].body
	assert.NotContains(t, body, "owner_id")
	assert.NotContains(t, body, "value")
}

func TestListUsers(t *testing.T) {
	server, requests := newCRMServer(t, map[string]string{
		"/v1/users": `[{"id": 1, "name": "Rep One"}, {"id": 2, "name": "Rep Two"}]`,
	})

	client := NewClient(server.URL, 5*time.Second)
	users, err := client.ListUsers(context.Background(), "tok-1")
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, 1, users[0].ID)
	assert.Equal(t, "Rep One", users[0].Name)

	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "Bearer tok-1", req.auth)
}

func TestNonSuccessStatusBecomesAPICallError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.ListUsers(context.Background(), "stale-token")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrTypeAPICall, appErr.Type)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestUndecodableBodyBecomesAPICallError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.ListUsers(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeAPICall))
}

func TestUnreachableServerBecomesAPICallError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.ListUsers(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeAPICall))
}
