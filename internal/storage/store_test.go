package storage

import (
	"context"
	"testing"

	"github.com/matchforge/swiss-engine/internal/domain"
)

// Save validates before it ever touches the database, so the rejection
// path is exercised here with a nil *sql.DB; reaching the db would panic,
// proving Validate runs first.
func TestSaveRefusesInconsistentTournamentBeforeTouchingTheDatabase(t *testing.T) {
	s := New(nil)
	t1 := &domain.Tournament{
		Config:      domain.Config{NumTeams: 2, NumPrelimRounds: 1},
		PairingText: "garbage that cannot correspond to any match",
	}
	if err := s.Save(context.Background(), t1); err == nil {
		t.Fatal("expected Save to reject a tournament whose pairing log can't be validated")
	}
}
