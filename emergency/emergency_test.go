package emergency

import (
	"testing"
	"time"

	"medira/models"
)

func TestGrantActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fresh := &models.EmergencyGrant{ExpiresAt: now.Add(30 * time.Minute)}
	if !GrantActive(fresh, now) {
		t.Fatal("grant expiring in 30m should be active")
	}

	stale := &models.EmergencyGrant{ExpiresAt: now.Add(-time.Second)}
	if GrantActive(stale, now) {
		t.Fatal("expired grant should not be active")
	}

	// expiry instant itself is not active
	edge := &models.EmergencyGrant{ExpiresAt: now}
	if GrantActive(edge, now) {
		t.Fatal("grant at its expiry instant should not be active")
	}

	if GrantActive(nil, now) {
		t.Fatal("nil grant should not be active")
	}
}
