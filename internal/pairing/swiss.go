// Package pairing implements the score-group + floating Swiss pairing
// algorithm described in spec §4.2: bracket construction by score, a
// float list carried between brackets, a greedy best-opponent search
// within each working list, and side assignment by preference.
//
// The search for an opponent is a pure predicate over the current bracket
// list (§9's "find an opponent" pattern) — it returns an index or none; the
// caller performs the removal and pair emission. That keeps the policy
// testable in isolation from the surrounding bracket/float bookkeeping.
package pairing

import (
	"math/rand"
	"sort"

	"github.com/matchforge/swiss-engine/internal/domain"
)

// AssignedPair is one pairing decision with sides already resolved.
type AssignedPair struct {
	AffID int
	NegID int
}

// Result is the full output of one round's pairing: an ordered list of
// pairs plus at most one bye (-1 when nobody floats alone).
type Result struct {
	Pairs []AssignedPair
	Bye   int
}

// Pair runs the Swiss pairing algorithm for round (1-based) over teams,
// using rnd for the shuffle and any tie-breaking. The live tournament
// manager passes a platform-seeded *rand.Rand; the simulator passes one
// backed by its own deterministic source — callers must not mix the two.
func Pair(teams []*domain.Team, round int, rnd *rand.Rand) *Result {
	recomputeBuchholz(teams)

	shuffled := make([]*domain.Team, len(teams))
	copy(shuffled, teams)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var brackets [][]*domain.Team
	if round <= 2 {
		// Rounds 1-2 ignore score: one synthetic bracket, shuffle order
		// preserved rather than sorted.
		brackets = [][]*domain.Team{shuffled}
	} else {
		brackets = groupByScore(shuffled)
	}

	res := &Result{Bye: -1}
	var floats []*domain.Team

	for _, bracket := range brackets {
		working := make([]*domain.Team, 0, len(floats)+len(bracket))
		working = append(working, floats...)
		working = append(working, bracket...)

		if round > 2 {
			sort.SliceStable(working, func(i, j int) bool {
				a, b := working[i], working[j]
				if a.Score != b.Score {
					return a.Score > b.Score
				}
				if a.Buchholz != b.Buchholz {
					return a.Buchholz > b.Buchholz
				}
				return a.ID < b.ID
			})
		}

		pairs, nextFloats := pairWorkingList(working, rnd)
		res.Pairs = append(res.Pairs, pairs...)
		floats = nextFloats
	}

	// Drain: floats are last resort, no repeat check.
	for len(floats) >= 2 {
		t1, t2 := floats[0], floats[1]
		floats = floats[2:]
		swappable := t1.HasFaced(t2.ID)
		res.Pairs = append(res.Pairs, assignSides(t1, t2, swappable, rnd))
	}
	if len(floats) == 1 {
		res.Bye = floats[0].ID
	}

	return res
}

func recomputeBuchholz(teams []*domain.Team) {
	byID := make(map[int]*domain.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	for _, t := range teams {
		sum := 0
		for _, oppID := range t.Opponents {
			if oppID == domain.ByeOpponentID {
				continue
			}
			if opp, ok := byID[oppID]; ok {
				sum += opp.Score
			}
		}
		t.Buchholz = sum
	}
}

// groupByScore buckets teams by exact score value, preserving the shuffled
// order within each bucket, and returns the buckets ordered by descending
// score.
func groupByScore(shuffled []*domain.Team) [][]*domain.Team {
	byScore := make(map[int][]*domain.Team)
	var scores []int
	for _, t := range shuffled {
		if _, ok := byScore[t.Score]; !ok {
			scores = append(scores, t.Score)
		}
		byScore[t.Score] = append(byScore[t.Score], t)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))

	brackets := make([][]*domain.Team, 0, len(scores))
	for _, s := range scores {
		brackets = append(brackets, byScore[s])
	}
	return brackets
}

// pairWorkingList greedily pairs the working list head-first, per §4.2
// steps 6-7. Teams that find no opponent float to the next bracket.
func pairWorkingList(working []*domain.Team, rnd *rand.Rand) ([]AssignedPair, []*domain.Team) {
	list := make([]*domain.Team, len(working))
	copy(list, working)

	var pairs []AssignedPair
	var floats []*domain.Team

	for len(list) > 0 {
		t1 := list[0]
		rest := list[1:]

		idx, swappable, found := findBestOpponent(t1, rest)
		if !found {
			floats = append(floats, t1)
			list = rest
			continue
		}

		t2 := rest[idx]
		pairs = append(pairs, assignSides(t1, t2, swappable, rnd))

		// Remove t1 (already dropped via rest) and t2 (at rest[idx]) from
		// the working list.
		next := make([]*domain.Team, 0, len(rest)-1)
		for i, t := range rest {
			if i == idx {
				continue
			}
			next = append(next, t)
		}
		list = next
	}

	return pairs, floats
}

// findBestOpponent implements §4.2.a: scan candidates in order, returning
// the first fresh opponent (priority 1, non-swappable), or failing that
// the first previously-met opponent who hasn't played both sides against
// t1 yet (priority 2, swappable). Returns found=false if neither exists.
func findBestOpponent(t1 *domain.Team, candidates []*domain.Team) (index int, swappable bool, found bool) {
	for i, c := range candidates {
		if !t1.HasFaced(c.ID) {
			return i, false, true
		}
	}
	for i, c := range candidates {
		if !t1.HasFaced(c.ID) {
			continue
		}
		if _, oneUnused := t1.UnusedSideAgainst(c.ID); oneUnused {
			return i, true, true
		}
	}
	return 0, false, false
}

// AssignSides exposes the §4.2.b side-assignment policy for callers outside
// this package (the elimination bracket reuses it verbatim: same
// preference logic, same swap-if-previously-met check).
func AssignSides(t1, t2 *domain.Team, rnd *rand.Rand) AssignedPair {
	return assignSides(t1, t2, t1.HasFaced(t2.ID), rnd)
}

// assignSides implements §4.2.b.
func assignSides(t1, t2 *domain.Team, swappable bool, rnd *rand.Rand) AssignedPair {
	if swappable {
		if side, ok := t1.UnusedSideAgainst(t2.ID); ok {
			if side == domain.Aff {
				return AssignedPair{AffID: t1.ID, NegID: t2.ID}
			}
			return AssignedPair{AffID: t2.ID, NegID: t1.ID}
		}
	}

	prefT1 := t1.SidePreference()
	prefT2 := t2.SidePreference()

	switch {
	case prefT1 > prefT2:
		return AssignedPair{AffID: t1.ID, NegID: t2.ID}
	case prefT2 > prefT1:
		return AssignedPair{AffID: t2.ID, NegID: t1.ID}
	default:
		if rnd.Intn(2) == 0 {
			return AssignedPair{AffID: t1.ID, NegID: t2.ID}
		}
		return AssignedPair{AffID: t2.ID, NegID: t1.ID}
	}
}
