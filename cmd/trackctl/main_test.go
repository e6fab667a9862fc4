package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/safepack/tracking-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type remoteState struct {
	mu      sync.Mutex
	created bool
	payload models.TrackingPayload
	path    string
}

func (st *remoteState) record(r *http.Request) {
	st.mu.Lock()
	defer st.mu.Unlock()
	_ = json.NewDecoder(r.Body).Decode(&st.payload)
	st.path = r.URL.Path
}

func (st *remoteState) last() (models.TrackingPayload, string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.payload, st.path
}

func fakeRemote(t *testing.T) (*httptest.Server, *remoteState) {
	t.Helper()
	state := &remoteState{}
	mux := http.NewServeMux()
	mux.HandleFunc("/public/SWIFT1234567", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"trackingNumber":"SWIFT1234567","recipientName":"John Smith","origin":"New York, NY","destination":"Los Angeles, CA","status":"in_transit","service":"Express Delivery","shipDate":1736496000000}`))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok"}`))
	})
	mux.HandleFunc("/admin", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if r.Method == http.MethodPost {
			state.record(r)
			state.mu.Lock()
			state.created = true
			state.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			return
		}
		list := `{"id":1,"trackingNumber":"SWIFT1234567","recipientName":"John Smith","recipientPhone":"+1 555 0100","origin":"New York, NY","destination":"Los Angeles, CA","status":"in_transit","service":"Express Delivery"},
			{"id":2,"trackingNumber":"SWIFT9876543","recipientName":"Alice Johnson","status":"delivered","service":"Standard Shipping"}`
		state.mu.Lock()
		if state.created {
			list += `,{"id":3,"trackingNumber":"SWIFT3333333","recipientName":"Bob Lee","status":"pending","service":"Ground"}`
		}
		state.mu.Unlock()
		_, _ = w.Write([]byte("[" + list + "]"))
	})
	mux.HandleFunc("/admin/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		state.record(r)
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, state
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{
		"--public-url", srv.URL + "/public",
		"--admin-url", srv.URL + "/admin",
		"--login-url", srv.URL + "/login",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTrackCommand(t *testing.T) {
	srv, _ := fakeRemote(t)

	out, err := run(t, srv, "track", "swift1234567")
	require.NoError(t, err)
	assert.Contains(t, out, "SWIFT1234567  [In Transit]")
	assert.Contains(t, out, "Current status: in_transit")
}

func TestTrackCommand_NotFound(t *testing.T) {
	srv, _ := fakeRemote(t)

	_, err := run(t, srv, "track", "SWIFT0000000")
	assert.ErrorContains(t, err, "not found")
}

func TestListCommand_Search(t *testing.T) {
	srv, _ := fakeRemote(t)

	out, err := run(t, srv, "list", "-u", "admin", "-p", "secret", "--search", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "SWIFT9876543")
	assert.NotContains(t, out, "SWIFT1234567")
	assert.True(t, strings.HasPrefix(out, "TRACKING"))
}

func TestListCommand_RequiresCredentials(t *testing.T) {
	t.Setenv("TRACKCTL_USERNAME", "")
	t.Setenv("TRACKCTL_PASSWORD", "")
	srv, _ := fakeRemote(t)

	_, err := run(t, srv, "list")
	assert.ErrorContains(t, err, "credentials required")
}

func TestDeleteCommand_NeedsConfirmation(t *testing.T) {
	srv, _ := fakeRemote(t)

	_, err := run(t, srv, "delete", "SWIFT1234567", "-u", "admin", "-p", "secret")
	assert.Error(t, err)
}

func TestCreateCommand(t *testing.T) {
	srv, state := fakeRemote(t)

	out, err := run(t, srv, "create", "-u", "admin", "-p", "secret",
		"--recipient", "Bob Lee", "--phone", "+1 555 0123", "--origin", "Boise, ID",
		"--destination", "Reno, NV", "--service", "Ground", "--eta", "2025-02-01")
	require.NoError(t, err)
	assert.Contains(t, out, "created SWIFT3333333")

	payload, _ := state.last()
	assert.Equal(t, "Bob Lee", payload.RecipientName)
	assert.Equal(t, models.StatusPending, payload.Status)
	require.NotNil(t, payload.EstimatedDeliveryDate)
}

func TestCreateCommand_MissingFields(t *testing.T) {
	srv, _ := fakeRemote(t)

	_, err := run(t, srv, "create", "-u", "admin", "-p", "secret", "--recipient", "Bob Lee")
	assert.ErrorContains(t, err, "required fields")
}

func TestEditCommand_KeepsUnsetFields(t *testing.T) {
	srv, state := fakeRemote(t)

	out, err := run(t, srv, "edit", "swift1234567", "-u", "admin", "-p", "secret",
		"--recipient", "Johnny Smith", "--status", "delivered")
	require.NoError(t, err)
	assert.Contains(t, out, "updated SWIFT1234567")

	payload, path := state.last()
	assert.Equal(t, "/admin/SWIFT1234567", path)
	assert.Equal(t, "Johnny Smith", payload.RecipientName)
	assert.Equal(t, "New York, NY", payload.Origin)
	assert.Equal(t, models.StatusDelivered, payload.Status)
}

func TestEditCommand_BadDate(t *testing.T) {
	srv, _ := fakeRemote(t)

	_, err := run(t, srv, "edit", "SWIFT1234567", "-u", "admin", "-p", "secret", "--eta", "next week")
	assert.ErrorContains(t, err, "invalid date")
}
