// Package bracket builds the single-elimination break bracket: the
// preliminary-round break seeding and the recursive mod-4 split seed
// ordering described in spec §4.3, plus winner advancement between
// elimination rounds.
package bracket

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/matchforge/swiss-engine/internal/domain"
	"github.com/matchforge/swiss-engine/internal/pairing"
)

// BreakTeams sorts teams by (score desc, buchholz desc, wins desc, id asc), takes the
// top breakSize, and stamps BreakSeed 1..breakSize on the returned slice in
// order. It does not mutate teams outside that top slice.
func BreakTeams(teams []*domain.Team, breakSize int) ([]*domain.Team, error) {
	if breakSize <= 0 || breakSize&(breakSize-1) != 0 {
		return nil, fmt.Errorf("bracket: break size %d is not a positive power of two", breakSize)
	}
	if len(teams) < breakSize {
		return nil, fmt.Errorf("bracket: only %d teams registered, need %d to break", len(teams), breakSize)
	}

	ranked := make([]*domain.Team, len(teams))
	copy(ranked, teams)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Buchholz != b.Buchholz {
			return a.Buchholz > b.Buchholz
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.ID < b.ID
	})

	qualified := ranked[:breakSize]
	for i, t := range qualified {
		t.BreakSeed = i + 1
	}
	return qualified, nil
}

// SeedPairs returns the round-1 bracket pairs, expressed as seed numbers
// (1-based), in emission order. n must be a power of two.
//
// The rule is a recursive mod-4 split: at each level the current ascending
// list of seeds is partitioned by 1-based position mod 4 — positions
// congruent to 0 or 1 go to the first half, positions congruent to 2 or 3
// go to the second half — each half is paired recursively, and the
// second half's pairs are emitted in reverse order. That reproduces the
// "seed 1 in the first pair, seed 2 in the last pair, every pair sums to
// n+1" invariant without the snake-seeding swap a traditional single-elim
// bracket applies.
func SeedPairs(n int) ([][2]int, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("bracket: seed count %d is not a power of two", n)
	}
	seeds := make([]int, n)
	for i := range seeds {
		seeds[i] = i + 1
	}
	return seedPairs(seeds), nil
}

func seedPairs(seeds []int) [][2]int {
	if len(seeds) == 2 {
		return [][2]int{{seeds[0], seeds[1]}}
	}

	var groupA, groupB []int
	for i, s := range seeds {
		pos := i + 1
		if m := pos % 4; m == 0 || m == 1 {
			groupA = append(groupA, s)
		} else {
			groupB = append(groupB, s)
		}
	}

	pairsA := seedPairs(groupA)
	pairsB := seedPairs(groupB)
	reversePairs(pairsB)

	return append(pairsA, pairsB...)
}

func reversePairs(p [][2]int) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

// FirstRound builds the opening elimination round's pairings from the
// break-seeded qualifiers (qualified[i].BreakSeed must be i+1, i.e. the
// slice BreakTeams returns). Sides are assigned with the same §4.2.b
// preference/rematch logic the prelim pairing core uses.
func FirstRound(qualified []*domain.Team, rnd *rand.Rand) ([]pairing.AssignedPair, error) {
	bySeed := make(map[int]*domain.Team, len(qualified))
	for _, t := range qualified {
		bySeed[t.BreakSeed] = t
	}

	seedPairs, err := SeedPairs(len(qualified))
	if err != nil {
		return nil, err
	}

	pairs := make([]pairing.AssignedPair, 0, len(seedPairs))
	for _, sp := range seedPairs {
		t1, ok1 := bySeed[sp[0]]
		t2, ok2 := bySeed[sp[1]]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("bracket: missing team for seed pair %v", sp)
		}
		pairs = append(pairs, pairing.AssignSides(t1, t2, rnd))
	}
	return pairs, nil
}

// NextRound advances winners from a fully-reported elimination round into
// the next round's pairings. prevRoundMatches must be in the same
// emission order the round was created in (consecutive pairs of matches
// feed one next-round match each), and every match must carry a result.
func NextRound(prevRoundMatches []*domain.Match, lookup func(id int) *domain.Team, rnd *rand.Rand) ([]pairing.AssignedPair, error) {
	if len(prevRoundMatches)%2 != 0 {
		return nil, fmt.Errorf("bracket: %d matches in the previous round is not an even count", len(prevRoundMatches))
	}

	winners := make([]*domain.Team, 0, len(prevRoundMatches))
	for _, m := range prevRoundMatches {
		winnerID, ok := m.Winner()
		if !ok {
			return nil, fmt.Errorf("bracket: match %d has no reported result", m.MatchID)
		}
		t := lookup(winnerID)
		if t == nil {
			return nil, fmt.Errorf("bracket: unknown winner id %d for match %d", winnerID, m.MatchID)
		}
		winners = append(winners, t)
	}

	pairs := make([]pairing.AssignedPair, 0, len(winners)/2)
	for i := 0; i+1 < len(winners); i += 2 {
		pairs = append(pairs, pairing.AssignSides(winners[i], winners[i+1], rnd))
	}
	return pairs, nil
}
