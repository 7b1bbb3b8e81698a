package bracket

import (
	"math/rand"
	"testing"

	"github.com/matchforge/swiss-engine/internal/domain"
)

func TestSeedPairsEightTeams(t *testing.T) {
	pairs, err := SeedPairs(8)
	if err != nil {
		t.Fatalf("SeedPairs(8): %v", err)
	}
	want := [][2]int{{1, 8}, {4, 5}, {3, 6}, {2, 7}}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i, p := range want {
		if pairs[i] != p {
			t.Errorf("pair %d = %v, want %v", i, pairs[i], p)
		}
	}
}

func TestSeedPairsFourTeams(t *testing.T) {
	pairs, err := SeedPairs(4)
	if err != nil {
		t.Fatalf("SeedPairs(4): %v", err)
	}
	want := [][2]int{{1, 4}, {2, 3}}
	for i, p := range want {
		if pairs[i] != p {
			t.Errorf("pair %d = %v, want %v", i, pairs[i], p)
		}
	}
}

func TestSeedPairsTwoTeams(t *testing.T) {
	pairs, err := SeedPairs(2)
	if err != nil {
		t.Fatalf("SeedPairs(2): %v", err)
	}
	if len(pairs) != 1 || pairs[0] != [2]int{1, 2} {
		t.Fatalf("got %v, want [[1 2]]", pairs)
	}
}

func TestSeedPairsRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := SeedPairs(6); err == nil {
		t.Fatal("expected an error for a non-power-of-two seed count")
	}
}

func TestSeedPairsEverySeedAppearsOnce(t *testing.T) {
	pairs, err := SeedPairs(16)
	if err != nil {
		t.Fatalf("SeedPairs(16): %v", err)
	}
	seen := make(map[int]bool)
	for _, p := range pairs {
		if p[0]+p[1] != 17 {
			t.Errorf("pair %v does not sum to n+1=17", p)
		}
		seen[p[0]] = true
		seen[p[1]] = true
	}
	if len(seen) != 16 {
		t.Fatalf("expected 16 distinct seeds across pairs, saw %d", len(seen))
	}
}

func newTeamWithRecord(id, score, buchholz, wins int) *domain.Team {
	team := domain.NewTeam(id, "Team", "", [2]domain.Member{})
	team.Score = score
	team.Buchholz = buchholz
	team.Wins = wins
	return team
}

func TestBreakTeamsOrdersByScoreThenBuchholzThenWinsThenID(t *testing.T) {
	teams := []*domain.Team{
		newTeamWithRecord(0, 2, 1, 2),
		newTeamWithRecord(1, 3, 5, 3),
		newTeamWithRecord(2, 3, 5, 3),
		newTeamWithRecord(3, 3, 9, 3),
	}

	qualified, err := BreakTeams(teams, 4)
	if err != nil {
		t.Fatalf("BreakTeams: %v", err)
	}
	wantOrder := []int{3, 1, 2, 0}
	for i, id := range wantOrder {
		if qualified[i].ID != id {
			t.Errorf("position %d = team %d, want team %d", i, qualified[i].ID, id)
		}
		if qualified[i].BreakSeed != i+1 {
			t.Errorf("team %d BreakSeed = %d, want %d", qualified[i].ID, qualified[i].BreakSeed, i+1)
		}
	}
}

func TestBreakTeamsRejectsNonPowerOfTwoBreakSize(t *testing.T) {
	teams := []*domain.Team{newTeamWithRecord(0, 0, 0, 0), newTeamWithRecord(1, 0, 0, 0), newTeamWithRecord(2, 0, 0, 0)}
	if _, err := BreakTeams(teams, 3); err == nil {
		t.Fatal("expected an error for a non-power-of-two break size")
	}
}

func TestBreakTeamsRejectsTooFewTeams(t *testing.T) {
	teams := []*domain.Team{newTeamWithRecord(0, 0, 0, 0)}
	if _, err := BreakTeams(teams, 4); err == nil {
		t.Fatal("expected an error when fewer teams are registered than the break size")
	}
}

func TestFirstRoundPairsBySeed(t *testing.T) {
	teams := make([]*domain.Team, 8)
	for i := range teams {
		teams[i] = domain.NewTeam(i, "Team", "", [2]domain.Member{})
		teams[i].BreakSeed = i + 1
	}

	rnd := rand.New(rand.NewSource(1))
	pairs, err := FirstRound(teams, rnd)
	if err != nil {
		t.Fatalf("FirstRound: %v", err)
	}
	want := [][2]int{{0, 7}, {3, 4}, {2, 5}, {1, 6}}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i, w := range want {
		got := [2]int{pairs[i].AffID, pairs[i].NegID}
		if (got != w) && (got != [2]int{w[1], w[0]}) {
			t.Errorf("pair %d = %v, want a permutation of %v", i, got, w)
		}
	}
}

func TestNextRoundAdvancesWinnersOnly(t *testing.T) {
	teams := make(map[int]*domain.Team)
	for i := 0; i < 4; i++ {
		teams[i] = domain.NewTeam(i, "Team", "", [2]domain.Member{})
	}
	lookup := func(id int) *domain.Team { return teams[id] }

	prevRound := []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1, Result: domain.ResultAff},
		{MatchID: 2, RoundNum: 1, AffID: 2, NegID: 3, Result: domain.ResultNeg},
	}

	rnd := rand.New(rand.NewSource(1))
	pairs, err := NextRound(prevRound, lookup, rnd)
	if err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	ids := map[int]bool{pairs[0].AffID: true, pairs[0].NegID: true}
	if !ids[0] || !ids[3] {
		t.Errorf("expected winners 0 and 3 to meet, got pair %v", pairs[0])
	}
}

func TestNextRoundRejectsUnreportedMatch(t *testing.T) {
	teams := map[int]*domain.Team{0: domain.NewTeam(0, "A", "", [2]domain.Member{}), 1: domain.NewTeam(1, "B", "", [2]domain.Member{})}
	lookup := func(id int) *domain.Team { return teams[id] }
	prevRound := []*domain.Match{
		{MatchID: 1, RoundNum: 1, AffID: 0, NegID: 1},
	}
	if _, err := NextRound(prevRound, lookup, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected an error for an unreported previous-round match")
	}
}
