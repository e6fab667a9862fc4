package providers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

func TestPublicLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/SWIFT1234567", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":7,"trackingNumber":"SWIFT1234567","status":"processing","shipDate":1736496000000}`))
	}))
	defer srv.Close()

	p := providers.NewPublicTrackingProvider(srv.URL, testTimeout)
	rt, err := p.Lookup(context.Background(), "SWIFT1234567")
	require.NoError(t, err)
	assert.Equal(t, models.RemoteID("7"), rt.ID)
	assert.Equal(t, "processing", rt.Status)
}

func TestPublicLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := providers.NewPublicTrackingProvider(srv.URL, testTimeout)
	_, err := p.Lookup(context.Background(), "SWIFT0000000")
	assert.ErrorIs(t, err, providers.ErrTrackingNotFound)
}

func TestPublicLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := providers.NewPublicTrackingProvider(srv.URL, testTimeout)
	_, err := p.Lookup(context.Background(), "SWIFT1")

	var re *providers.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
	assert.Equal(t, "failed to fetch tracking info: Internal Server Error", re.Message)
}

func TestPublicLookup_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := providers.NewPublicTrackingProvider(url, testTimeout)
	_, err := p.Lookup(context.Background(), "SWIFT1")

	var te *providers.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestAdminList_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":1,"trackingNumber":"A1"},{"id":2,"trackingNumber":"B2"}]`))
	}))
	defer srv.Close()

	p := providers.NewAdminTrackingProvider(srv.URL+"/", testTimeout)
	list, err := p.List(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAdminCreate_PostsPayload(t *testing.T) {
	var got models.TrackingPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9,"trackingNumber":"SWIFT9"}`))
	}))
	defer srv.Close()

	p := providers.NewAdminTrackingProvider(srv.URL, testTimeout)
	rt, err := p.Create(context.Background(), "tok", models.TrackingPayload{RecipientName: "Jane", Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, "SWIFT9", rt.TrackingNumber)
	assert.Equal(t, "Jane", got.RecipientName)
}

func TestAdminUpdate_UsesTrackingPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/SWIFT1", r.URL.Path)
		_, _ = w.Write([]byte(`{"trackingNumber":"SWIFT1","status":"delivered"}`))
	}))
	defer srv.Close()

	p := providers.NewAdminTrackingProvider(srv.URL, testTimeout)
	rt, err := p.Update(context.Background(), "tok", "SWIFT1", models.TrackingPayload{Status: models.StatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, "delivered", rt.Status)
}

func TestAdminDelete_RemoteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Tracking SWIFT404 does not exist"}`))
	}))
	defer srv.Close()

	p := providers.NewAdminTrackingProvider(srv.URL, testTimeout)
	err := p.Delete(context.Background(), "tok", "SWIFT404")

	var re *providers.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.Equal(t, "Tracking SWIFT404 does not exist", re.Message)
}

func TestAdminDelete_EmptyBodySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := providers.NewAdminTrackingProvider(srv.URL, testTimeout)
	assert.NoError(t, p.Delete(context.Background(), "tok", "SWIFT1"))
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "admin" && body["password"] == "secret" {
			_, _ = w.Write([]byte(`{"token":"abc"}`))
			return
		}
		if body["username"] == "empty" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := providers.NewAuthProvider(srv.URL, testTimeout)

	tok, err := p.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = p.Login(context.Background(), "admin", "wrong")
	assert.True(t, providers.IsStatus(err, http.StatusUnauthorized))

	_, err = p.Login(context.Background(), "empty", "x")
	assert.True(t, errors.Is(err, providers.ErrNoToken))
}
