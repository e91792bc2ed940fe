package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/digitalguardian/breachwatch/internal/models"
)

func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trialEnd := now.Add(24 * time.Hour)
	expiredEnd := now.Add(-time.Hour)

	rules := NewRules("Admin@Example.com")

	tests := []struct {
		name  string
		email string
		sub   *models.Subscription
		want  Status
	}{
		{
			name:  "exempt email wins over everything",
			email: "admin@example.com",
			sub:   &models.Subscription{Status: "canceled"},
			want:  Exempt,
		},
		{
			name:  "exempt email comparison is case insensitive",
			email: "ADMIN@EXAMPLE.COM",
			sub:   nil,
			want:  Exempt,
		},
		{
			name:  "no subscription",
			email: "user@example.com",
			sub:   nil,
			want:  None,
		},
		{
			name:  "active subscription",
			email: "user@example.com",
			sub:   &models.Subscription{Status: "active"},
			want:  Active,
		},
		{
			name:  "trialing before trial end",
			email: "user@example.com",
			sub:   &models.Subscription{Status: "trialing", TrialEndsAt: &trialEnd},
			want:  TrialActive,
		},
		{
			name:  "trialing after trial end",
			email: "user@example.com",
			sub:   &models.Subscription{Status: "trialing", TrialEndsAt: &expiredEnd},
			want:  TrialExpired,
		},
		{
			name:  "trialing without trial end date",
			email: "user@example.com",
			sub:   &models.Subscription{Status: "trialing"},
			want:  TrialExpired,
		},
		{
			name:  "unknown status",
			email: "user@example.com",
			sub:   &models.Subscription{Status: "past_due"},
			want:  None,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Classify(tt.email, tt.sub, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_TrialBoundaryIsStrict(t *testing.T) {
	rules := NewRules("")
	trialEnd := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	sub := &models.Subscription{Status: "trialing", TrialEndsAt: &trialEnd}

	justBefore := rules.Classify("user@example.com", sub, trialEnd.Add(-time.Millisecond))
	assert.Equal(t, TrialActive, justBefore)
	assert.True(t, justBefore.Premium())

	atEnd := rules.Classify("user@example.com", sub, trialEnd)
	assert.Equal(t, TrialExpired, atEnd)
	assert.False(t, atEnd.Premium())
}

func TestClassify_IsPure(t *testing.T) {
	rules := NewRules("admin@example.com")
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	sub := &models.Subscription{Status: "active"}

	first := rules.Classify("user@example.com", sub, now)
	second := rules.Classify("user@example.com", sub, now)
	assert.Equal(t, first, second)
	// Вход не мутируется.
	assert.Equal(t, "active", sub.Status)
}

func TestPremium(t *testing.T) {
	assert.True(t, Exempt.Premium())
	assert.True(t, Active.Premium())
	assert.True(t, TrialActive.Premium())
	assert.False(t, TrialExpired.Premium())
	assert.False(t, None.Premium())
}

func TestTrialEnd_ExactDuration(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	got := TrialEnd(createdAt, 72*time.Hour)
	assert.Equal(t, time.Date(2025, 6, 4, 23, 30, 0, 0, time.UTC), got)
}
