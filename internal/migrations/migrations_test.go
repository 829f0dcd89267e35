package migrations

import (
	"strings"
	"testing"
)

func TestSessionMigrationEmbedded(t *testing.T) {
	data, err := Files.ReadFile("001_console_sessions.sql")
	if err != nil {
		t.Fatalf("expected embedded migration, got error: %v", err)
	}
	if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS console_sessions") {
		t.Fatalf("migration does not create console_sessions")
	}
}
