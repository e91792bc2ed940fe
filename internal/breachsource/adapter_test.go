package breachsource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digitalguardian/breachwatch/internal/config"
)

func TestNew_PicksAdapterByConfiguredKeys(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.BreachProvider
		want any
	}{
		{
			name: "hibp with its key",
			cfg:  config.BreachProvider{Provider: "hibp", HIBPAPIKey: "k"},
			want: &HIBPClient{},
		},
		{
			name: "leakcheck with its key",
			cfg:  config.BreachProvider{Provider: "leakcheck", LeakCheckAPIKey: "k"},
			want: &LeakCheckClient{},
		},
		{
			name: "hibp configured but only leakcheck key present",
			cfg:  config.BreachProvider{Provider: "hibp", LeakCheckAPIKey: "k"},
			want: &LeakCheckClient{},
		},
		{
			name: "leakcheck configured but only hibp key present",
			cfg:  config.BreachProvider{Provider: "leakcheck", HIBPAPIKey: "k"},
			want: &HIBPClient{},
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
