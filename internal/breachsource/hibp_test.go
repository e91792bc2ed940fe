package breachsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHIBPTestClient(handler http.HandlerFunc) (*HIBPClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewHIBPClient("test-key", srv.Client())
	client.baseURL = srv.URL
	return client, srv
}

func TestHIBPLookup_Success(t *testing.T) {
	client, srv := newHIBPTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("hibp-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"Name": "Adobe",
				"Title": "Adobe",
				"Domain": "adobe.com",
				"BreachDate": "2013-10-04",
				"Description": "credential leak",
				"DataClasses": ["Email addresses", "Passwords"],
				"IsVerified": true,
				"PwnCount": 152445165
			}
		]`))
	})
	defer srv.Close()

	got, err := client.Lookup(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Adobe", got[0].Name)
	assert.Equal(t, "2013-10-04", got[0].Date)
	assert.Equal(t, 152445165, got[0].HitCount)
	assert.True(t, got[0].Verified)
	assert.False(t, got[0].Demo)
}

func TestHIBPLookup_NotFoundMeansEmpty(t *testing.T) {
	client, srv := newHIBPTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	got, err := client.Lookup(context.Background(), "clean@example.com")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHIBPLookup_ServerErrorIsProviderError(t *testing.T) {
	client, srv := newHIBPTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer srv.Close()

	_, err := client.Lookup(context.Background(), "user@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
}

func TestHIBPLookup_MalformedBodyIsProviderError(t *testing.T) {
	client, srv := newHIBPTestClient(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	defer srv.Close()

	_, err := client.Lookup(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, ErrProvider)
}
