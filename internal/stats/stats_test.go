package stats

import (
	"testing"

	"github.com/matchforge/swiss-engine/internal/domain"
)

func newTournament(numTeams, prelimRounds int) *domain.Tournament {
	teams := make([]*domain.Team, numTeams)
	for i := range teams {
		teams[i] = domain.NewTeam(i, "Team", "", [2]domain.Member{})
	}
	return &domain.Tournament{
		Config: domain.Config{NumTeams: numTeams, NumPrelimRounds: prelimRounds},
		Teams:  teams,
	}
}

func ptr(f float64) *float64 { return &f }

func TestRecomputeAppliesScoreAndWins(t *testing.T) {
	tour := newTournament(4, 2)
	tour.Matches = []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1, Result: domain.ResultAff},
		{MatchID: 2, RoundNum: 1, AffID: 2, NegID: 3, Result: domain.ResultNeg},
	}
	Recompute(tour)

	if tour.Teams[0].Score != 1 || tour.Teams[0].Wins != 1 {
		t.Errorf("team 0 (won as Aff): score=%d wins=%d, want 1/1", tour.Teams[0].Score, tour.Teams[0].Wins)
	}
	if tour.Teams[1].Score != 0 {
		t.Errorf("team 1 (lost as Neg): score=%d, want 0", tour.Teams[1].Score)
	}
	if tour.Teams[3].Score != 1 || tour.Teams[3].Wins != 1 {
		t.Errorf("team 3 (won as Neg): score=%d wins=%d, want 1/1", tour.Teams[3].Score, tour.Teams[3].Wins)
	}
	if tour.Teams[0].AffCount != 1 || tour.Teams[1].NegCount != 1 {
		t.Errorf("side counts not recorded: team0 aff=%d team1 neg=%d", tour.Teams[0].AffCount, tour.Teams[1].NegCount)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	tour := newTournament(4, 2)
	tour.Matches = []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1, Result: domain.ResultAff},
		{MatchID: 2, RoundNum: 1, AffID: 2, NegID: 3, Result: domain.ResultNeg},
	}
	Recompute(tour)
	first := tour.Teams[0].Score
	Recompute(tour)
	Recompute(tour)
	if tour.Teams[0].Score != first {
		t.Fatalf("recompute is not idempotent: score changed from %d to %d across repeated calls", first, tour.Teams[0].Score)
	}
}

func TestRecomputeAppliesByeAsWinWithoutSide(t *testing.T) {
	tour := newTournament(3, 1)
	tour.Matches = []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: domain.ByeOpponentID, Result: domain.ResultAff},
	}
	Recompute(tour)
	if tour.Teams[0].Score != 1 || tour.Teams[0].Wins != 1 {
		t.Fatalf("bye team should be credited a win, got score=%d wins=%d", tour.Teams[0].Score, tour.Teams[0].Wins)
	}
	if tour.Teams[0].AffCount != 0 || tour.Teams[0].NegCount != 0 {
		t.Fatalf("a bye should not record a side, got aff=%d neg=%d", tour.Teams[0].AffCount, tour.Teams[0].NegCount)
	}
	if len(tour.Teams[0].Opponents) != 1 || tour.Teams[0].Opponents[0] != domain.ByeOpponentID {
		t.Fatalf("expected a bye-sentinel opponent entry, got %v", tour.Teams[0].Opponents)
	}
}

func TestRecomputeBuchholzExcludesByeSentinel(t *testing.T) {
	tour := newTournament(3, 2)
	tour.Matches = []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1, Result: domain.ResultAff},
		{MatchID: 2, RoundNum: 1, AffID: 2, NegID: domain.ByeOpponentID, Result: domain.ResultAff},
		{MatchID: 3, RoundNum: 2, AffID: 0, NegID: 2, Result: domain.ResultNeg},
	}
	Recompute(tour)
	// Team 0 faced team 1 (score 0) then team 2 (score 2): buchholz = 0+2 = 2.
	if tour.Teams[0].Buchholz != 2 {
		t.Errorf("team 0 buchholz = %d, want 2", tour.Teams[0].Buchholz)
	}
	// Team 2 faced a bye (excluded) then team 0 (score 1 at that point... but
	// buchholz sums *current* opponent scores, so team 0's final score 1):
	if tour.Teams[2].Buchholz != 1 {
		t.Errorf("team 2 buchholz = %d, want 1 (bye excluded, team 0's final score counted once)", tour.Teams[2].Buchholz)
	}
}

func TestDeriveCurrentRoundIsLargestFullyReportedPrefix(t *testing.T) {
	tour := newTournament(4, 3)
	tour.Matches = []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1, Result: domain.ResultAff},
		{MatchID: 2, RoundNum: 1, AffID: 2, NegID: 3, Result: domain.ResultAff},
		{MatchID: 3, RoundNum: 2, AffID: 0, NegID: 2, Result: domain.ResultUnreported},
		{MatchID: 4, RoundNum: 2, AffID: 1, NegID: 3, Result: domain.ResultUnreported},
	}
	Recompute(tour)
	if tour.CurrentRound != 1 {
		t.Fatalf("CurrentRound = %d, want 1 (round 2 not yet reported)", tour.CurrentRound)
	}
}

func TestDeriveCurrentRoundZeroBeforeAnyResult(t *testing.T) {
	tour := newTournament(2, 1)
	tour.Matches = []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1},
	}
	Recompute(tour)
	if tour.CurrentRound != 0 {
		t.Fatalf("CurrentRound = %d, want 0 before round 1 is reported", tour.CurrentRound)
	}
}

func TestRecomputeRecordsSpeakerPointsPerRound(t *testing.T) {
	tour := newTournament(2, 1)
	tour.Matches = []*domain.Match{
		{
			MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1, Result: domain.ResultAff,
			SpeakerPoints: &domain.SpeakerPoints{Aff0: ptr(27), Aff1: ptr(28), Neg0: ptr(25), Neg1: ptr(26)},
		},
	}
	Recompute(tour)
	hist := tour.Teams[0].SpeakerPointsHistory
	if len(hist) != 1 || hist[0].Round != 1 {
		t.Fatalf("expected one speaker-points round entry for round 1, got %+v", hist)
	}
	if *hist[0].Points[0] != 27 || *hist[0].Points[1] != 28 {
		t.Errorf("aff speaker points = %v/%v, want 27/28", *hist[0].Points[0], *hist[0].Points[1])
	}
}

func TestRecomputeUnreportedMatchStillRecordsMeeting(t *testing.T) {
	tour := newTournament(2, 2)
	tour.Matches = []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1, Result: domain.ResultUnreported},
	}
	Recompute(tour)
	if !tour.Teams[0].HasFaced(1) {
		t.Fatal("expected the pairing to establish a meeting even before a result is reported")
	}
	if tour.Teams[0].Score != 0 {
		t.Fatalf("an unreported match must not award a score, got %d", tour.Teams[0].Score)
	}
}
