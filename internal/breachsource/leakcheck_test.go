package breachsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalguardian/breachwatch/internal/config"
)

func newLeakCheckTestClient(handler http.HandlerFunc) (*LeakCheckClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewLeakCheckClient("test-key", srv.Client())
	client.baseURL = srv.URL
	return client, srv
}

func TestLeakCheckLookup_NestedSourceFields(t *testing.T) {
	client, srv := newLeakCheckTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"result": [
				{
					"source": {"name": "LinkedIn", "domain": "linkedin.com", "description": "big leak"},
					"date": "2012-05",
					"fields": ["email", "password"],
					"count": 164611595
				}
			]
		}`))
	})
	defer srv.Close()

	got, err := client.Lookup(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "LinkedIn", got[0].Name)
	assert.Equal(t, "linkedin.com", got[0].Domain)
	assert.Equal(t, "2012-05", got[0].Date)
	assert.Equal(t, []string{"email", "password"}, got[0].DataClasses)
	assert.Equal(t, 164611595, got[0].HitCount)
}

func TestLeakCheckLookup_FlatFieldsAndDefaults(t *testing.T) {
	client, srv := newLeakCheckTestClient(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"result": [
				{"name": "SomeSite", "pwn_count": 5000}
			]
		}`))
	})
	defer srv.Close()

	got, err := client.Lookup(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SomeSite", got[0].Name)
	assert.Equal(t, "unknown", got[0].Domain)
	assert.Equal(t, "unknown", got[0].Date)
	assert.Equal(t, "Breach detected.", got[0].Description)
	assert.Equal(t, []string{"Email addresses"}, got[0].DataClasses)
	assert.Equal(t, 5000, got[0].HitCount)
}

func TestLeakCheckLookup_NoSuccessMeansEmpty(t *testing.T) {
	client, srv := newLeakCheckTestClient(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	})
	defer srv.Close()

	got, err := client.Lookup(context.Background(), "clean@example.com")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLeakCheckLookup_ServerErrorIsProviderError(t *testing.T) {
	client, srv := newLeakCheckTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := client.Lookup(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestDemoSource_Lookup(t *testing.T) {
	source := NewDemoSource()

	got, err := source.Lookup(context.Background(), "anyone@example.com")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, b := range got {
		assert.True(t, b.Demo)
	}
}

func TestNew_PicksAdapterByConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.BreachProvider
		want any
	}{
		{
			name: "hibp with key",
			cfg:  config.BreachProvider{Provider: "hibp", HIBPAPIKey: "key"},
			want: &HIBPClient{},
		},
		{
			name: "leakcheck with key",
			cfg:  config.BreachProvider{Provider: "leakcheck", LeakCheckAPIKey: "key"},
			want: &LeakCheckClient{},
		},
		{
			name: "no keys falls back to demo",
			cfg:  config.BreachProvider{Provider: "leakcheck"},
			want: &DemoSource{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.want, New(tt.cfg))
		})
	}
}
