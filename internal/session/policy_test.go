package session

import (
	"testing"

	"github.com/wamigrate/wamigrate/internal/shared"
)

func TestPolicy(t *testing.T) {
	admin := "+15550001111"
	pairs := []shared.MigrationPair{
		{From: "+15553334444", To: "+15555556666"},
	}
	policy := NewPolicy(admin, pairs)

	t.Run("admin may migrate anywhere", func(t *testing.T) {
		for _, dest := range []string{"+15551234567", admin, ""} {
			if !policy.CanMigrate(admin, dest) {
				t.Errorf("admin should be allowed to migrate to %q", dest)
			}
		}
	})

	t.Run("allow-listed pair", func(t *testing.T) {
		if !policy.CanMigrate("+15553334444", "+15555556666") {
			t.Error("allow-listed pair should be permitted")
		}
		if policy.CanMigrate("+15553334444", "+15557778888") {
			t.Error("allow-listed source with other destination should be denied")
		}
		if policy.CanMigrate("+15555556666", "+15553334444") {
			t.Error("allow-list is directional")
		}
	})

	t.Run("unknown source is denied", func(t *testing.T) {
		if policy.CanMigrate("+15559990000", "+15551234567") {
			t.Error("unknown source should be denied")
		}
	})

	t.Run("empty admin never matches", func(t *testing.T) {
		open := NewPolicy("", nil)
		if open.CanMigrate("", "+15551234567") {
			t.Error("empty source must not match empty admin config")
		}
		if open.IsAdmin("") {
			t.Error("empty phone must not be admin")
		}
	})
}
