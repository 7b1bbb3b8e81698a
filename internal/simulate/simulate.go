// Package simulate runs a Monte Carlo forecast of a tournament: given a
// fixed "true rank" for every team, it replays the whole pairing and
// elimination process many times, drawing each match's winner from
// internal/winmodel, and aggregates outcomes. It never touches a live
// tournament's state — every run builds its own fresh domain.Tournament
// from scratch.
//
// The worker pool below is grounded in the teacher's batch-simulation
// harness: each worker owns its own team/match state and its own
// internal/rng-backed source, and a mutex-guarded aggregator collects
// results as workers finish, the same shape as a goroutines-plus-
// waitgroup-plus-mutex batch runner.
package simulate

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/matchforge/swiss-engine/internal/bracket"
	"github.com/matchforge/swiss-engine/internal/domain"
	"github.com/matchforge/swiss-engine/internal/pairing"
	"github.com/matchforge/swiss-engine/internal/rng"
	"github.com/matchforge/swiss-engine/internal/winmodel"
)

// Simulator replays a tournament shape against a fixed skill ordering.
// TrueRanks[i] is the 1-based true rank of team i (1 = strongest);
// ranks need not be unique.
type Simulator struct {
	Config    domain.Config
	TrueRanks []int
}

// Snapshot is one simulated tournament's outcome.
type Snapshot struct {
	FinalRank map[int]int            // team id -> final 1-based rank
	Wins      map[int]int            // team id -> prelim win count
	History   map[int][]HistoryEntry // team id -> ordered per-round prelim record
	Champion  int                    // team id of the elimination-bracket winner, -1 if no elim rounds
}

// New builds a simulator for the given shape and skill ordering.
func New(cfg domain.Config, trueRanks []int) (*Simulator, error) {
	if len(trueRanks) != cfg.NumTeams {
		return nil, fmt.Errorf("simulate: %d true ranks for %d teams", len(trueRanks), cfg.NumTeams)
	}
	return &Simulator{Config: cfg, TrueRanks: trueRanks}, nil
}

// RunOne plays one full simulated tournament using rnd for every draw:
// pairing shuffles/tiebreaks and match outcomes alike, so a single seed
// reproduces the whole run deterministically.
func (s *Simulator) RunOne(rnd *rand.Rand) (Snapshot, error) {
	teams := make([]*domain.Team, s.Config.NumTeams)
	for i := range teams {
		teams[i] = domain.NewTeam(i, fmt.Sprintf("Team %d", i), "", [2]domain.Member{})
	}
	t := &domain.Tournament{Config: s.Config, Teams: teams}
	history := make(map[int][]HistoryEntry, len(teams))

	for round := 1; round <= s.Config.NumPrelimRounds; round++ {
		res := pairing.Pair(teams, round, rnd)
		for _, p := range res.Pairs {
			won, err := s.playMatch(t, round, p.AffID, p.NegID, rnd)
			if err != nil {
				return Snapshot{}, err
			}
			history[p.AffID] = append(history[p.AffID], HistoryEntry{OpponentID: p.NegID, Won: won})
			history[p.NegID] = append(history[p.NegID], HistoryEntry{OpponentID: p.AffID, Won: !won})
		}
		if res.Bye != -1 {
			t.Matches = append(t.Matches, &domain.Match{
				MatchID: nextID(t), RoundNum: round,
				AffID: res.Bye, NegID: domain.ByeOpponentID,
				Result: domain.ResultAff, JudgeID: domain.UnassignedJudge,
			})
			history[res.Bye] = append(history[res.Bye], HistoryEntry{OpponentID: domain.ByeOpponentID, Won: true})
		}
		recomputeLite(t)
	}

	snap := Snapshot{Wins: make(map[int]int, len(teams)), History: history, Champion: -1}
	for _, team := range teams {
		snap.Wins[team.ID] = team.Wins
	}

	champion := -1
	if s.Config.NumElimRounds > 0 {
		qualified, err := bracket.BreakTeams(teams, s.Config.BreakSize())
		if err != nil {
			return Snapshot{}, err
		}
		round := s.Config.NumPrelimRounds + 1
		pairs, err := bracket.FirstRound(qualified, rnd)
		if err != nil {
			return Snapshot{}, err
		}
		for r := 0; r < s.Config.NumElimRounds; r++ {
			for _, p := range pairs {
				if _, err := s.playMatch(t, round, p.AffID, p.NegID, rnd); err != nil {
					return Snapshot{}, err
				}
			}
			roundMatches := t.MatchesInRound(round)
			if r == s.Config.NumElimRounds-1 {
				winnerID, _ := roundMatches[0].Winner()
				champion = winnerID
				break
			}
			pairs, err = bracket.NextRound(roundMatches, t.Team, rnd)
			if err != nil {
				return Snapshot{}, err
			}
			round++
		}
	}
	snap.Champion = champion

	snap.FinalRank = make(map[int]int, len(teams))
	ranked := make([]*domain.Team, len(teams))
	copy(ranked, teams)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Buchholz != ranked[j].Buchholz {
			return ranked[i].Buchholz > ranked[j].Buchholz
		}
		return ranked[i].ID < ranked[j].ID
	})
	for i, team := range ranked {
		snap.FinalRank[team.ID] = i + 1
	}
	return snap, nil
}

func (s *Simulator) playMatch(t *domain.Tournament, round, affID, negID int, rnd *rand.Rand) (bool, error) {
	p, err := winmodel.PWin(s.Config.WinModel, s.TrueRanks[affID], s.TrueRanks[negID])
	if err != nil {
		return false, err
	}
	affWon := rnd.Float64() < p
	result := domain.ResultNeg
	if affWon {
		result = domain.ResultAff
	}
	t.Matches = append(t.Matches, &domain.Match{
		MatchID: nextID(t), RoundNum: round,
		AffID: affID, NegID: negID, Result: result, JudgeID: domain.UnassignedJudge,
	})
	return affWon, nil
}

func nextID(t *domain.Tournament) int {
	id := t.NextMatchID
	t.NextMatchID++
	return id
}

// recomputeLite rebuilds only what pairing needs between prelim rounds:
// score, opponents, side history, buchholz. It mirrors internal/stats but
// skips speaker-point bookkeeping the simulator never populates, so a
// many-thousand-run batch isn't paying for work it discards every time.
func recomputeLite(t *domain.Tournament) {
	byID := make(map[int]*domain.Team, len(t.Teams))
	for _, team := range t.Teams {
		team.Score, team.Wins, team.Buchholz = 0, 0, 0
		team.AffCount, team.NegCount = 0, 0
		team.LastSide = domain.None
		team.Opponents = team.Opponents[:0]
		team.SideHistory = make(map[int][]domain.Side)
		byID[team.ID] = team
	}
	sort.SliceStable(t.Matches, func(i, j int) bool {
		if t.Matches[i].RoundNum != t.Matches[j].RoundNum {
			return t.Matches[i].RoundNum < t.Matches[j].RoundNum
		}
		return t.Matches[i].MatchID < t.Matches[j].MatchID
	})
	for _, m := range t.Matches {
		if m.IsBye() {
			liveID := m.AffID
			if liveID == domain.ByeOpponentID {
				liveID = m.NegID
			}
			if team, ok := byID[liveID]; ok {
				team.Opponents = append(team.Opponents, domain.ByeOpponentID)
				team.Score++
				team.Wins++
			}
			continue
		}
		aff, neg := byID[m.AffID], byID[m.NegID]
		aff.Opponents = append(aff.Opponents, neg.ID)
		aff.SideHistory[neg.ID] = append(aff.SideHistory[neg.ID], domain.Aff)
		aff.AffCount++
		aff.LastSide = domain.Aff
		neg.Opponents = append(neg.Opponents, aff.ID)
		neg.SideHistory[aff.ID] = append(neg.SideHistory[aff.ID], domain.Neg)
		neg.NegCount++
		neg.LastSide = domain.Neg
		if winnerID, _ := m.Winner(); winnerID == aff.ID {
			aff.Score++
			aff.Wins++
		} else {
			neg.Score++
			neg.Wins++
		}
	}
	for _, team := range t.Teams {
		sum := 0
		for _, oppID := range team.Opponents {
			if oppID == domain.ByeOpponentID {
				continue
			}
			if opp, ok := byID[oppID]; ok {
				sum += opp.Score
			}
		}
		team.Buchholz = sum
	}
}

// Batch runs n independent simulations across workers goroutines, seeded
// deterministically from seed so the whole batch is reproducible:
// simulation i always uses seed+i, whichever worker runs it and in
// whatever order.
func (s *Simulator) Batch(n int, seed int64, workers int) ([]Snapshot, error) {
	if workers < 1 {
		workers = 1
	}
	snapshots := make([]Snapshot, n)
	errs := make([]error, n)

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				workerRnd := rng.NewRand(seed + int64(i))
				snap, err := s.RunOne(workerRnd)
				mu.Lock()
				snapshots[i] = snap
				errs[i] = err
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return snapshots, nil
}
