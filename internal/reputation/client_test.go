package reputation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient("test-key", srv.Client())
	client.baseURL = srv.URL
	return client, srv
}

func TestNewClient_NilHTTPClientGetsDefault(t *testing.T) {
	client := NewClient("test-key", nil)
	require.NotNil(t, client.httpClient)
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
}

func TestCheck_NilHTTPClientStillWorks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email": "user@example.com", "deliverability": "DELIVERABLE"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", nil)
	client.baseURL = srv.URL

	got, err := client.Check(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "DELIVERABLE", got.Deliverability)
}

func TestCheck_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "user@example.com", r.URL.Query().Get("email"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"email": "user@example.com",
			"deliverability": "DELIVERABLE",
			"quality_score": "0.95",
			"is_free_email": {"value": true},
			"is_disposable_email": {"value": false},
			"is_mx_found": {"value": true}
		}`))
	})
	defer srv.Close()

	got, err := client.Check(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got.Email)
	assert.Equal(t, "DELIVERABLE", got.Deliverability)
	assert.InDelta(t, 0.95, got.QualityScore, 1e-9)
	require.NotNil(t, got.IsFreeEmail)
	assert.True(t, *got.IsFreeEmail)
	require.NotNil(t, got.IsDisposableEmail)
	assert.False(t, *got.IsDisposableEmail)
	assert.Nil(t, got.IsSMTPValid)
}

func TestCheck_EmptyKeyNotConfigured(t *testing.T) {
	client := NewClient("", nil)

	_, err := client.Check(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCheck_UnexpectedStatus(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := client.Check(context.Background(), "user@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestParseScore(t *testing.T) {
	assert.InDelta(t, 0.7, parseScore([]byte(`0.7`)), 1e-9)
	assert.InDelta(t, 0.7, parseScore([]byte(`"0.7"`)), 1e-9)
	assert.Zero(t, parseScore([]byte(`"n/a"`)))
	assert.Zero(t, parseScore(nil))
}
