// Package tournament is the driver that owns a single live tournament:
// initialization, pairing, result reporting, judge assignment, and the
// standings queries built on top of internal/stats. Pairing and result
// operations end with a full stats.Recompute and a consistency.Validate
// call; judge assignment changes end with consistency.Validate only, since
// team stats do not depend on judges. There is no code path that updates
// team stats without going through the rebuild.
package tournament

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/matchforge/swiss-engine/internal/bracket"
	"github.com/matchforge/swiss-engine/internal/consistency"
	"github.com/matchforge/swiss-engine/internal/domain"
	"github.com/matchforge/swiss-engine/internal/pairing"
	"github.com/matchforge/swiss-engine/internal/stats"
)

// TeamSpec is the caller-supplied registration payload for one team.
type TeamSpec struct {
	Name        string
	Institution string
	Members     [2]domain.Member
}

// Manager drives one tournament's lifecycle. It is not safe for
// concurrent use from multiple goroutines without external locking — the
// HTTP router serializes requests with a mutex.
type Manager struct {
	T    *domain.Tournament
	Rand *rand.Rand
}

// New builds a manager with a platform-seeded random source, for live
// play. The simulator does not use a Manager; it drives internal/pairing
// directly with an internal/rng-backed source.
func New() *Manager {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand builds a manager with an explicit random source.
func NewWithRand(rnd *rand.Rand) *Manager {
	return &Manager{Rand: rnd}
}

// Init creates a fresh tournament from config and team registrations. It
// replaces any tournament the manager was already holding.
func (m *Manager) Init(cfg domain.Config, specs []TeamSpec) error {
	if cfg.NumTeams < 2 {
		return configErrorf("num_teams must be at least 2, got %d", cfg.NumTeams)
	}
	if len(specs) != cfg.NumTeams {
		return configErrorf("config declares %d teams but %d were registered", cfg.NumTeams, len(specs))
	}
	if cfg.NumPrelimRounds < 1 {
		return configErrorf("num_prelim_rounds must be at least 1, got %d", cfg.NumPrelimRounds)
	}
	breakSize := cfg.BreakSize()
	if cfg.NumElimRounds > 0 && breakSize > cfg.NumTeams {
		return configErrorf("break size %d exceeds num_teams %d", breakSize, cfg.NumTeams)
	}
	if _, err := pwinSanityCheck(cfg.WinModel); err != nil {
		return configErrorf("%s", err.Error())
	}

	teams := make([]*domain.Team, len(specs))
	for i, s := range specs {
		teams[i] = domain.NewTeam(i, s.Name, s.Institution, s.Members)
	}

	t := &domain.Tournament{
		Config:      cfg,
		Teams:       teams,
		NextMatchID: 0,
		NextJudgeID: 0,
	}
	stats.Recompute(t)
	m.T = t
	return nil
}

// Reinit discards the current tournament and state entirely; the caller
// must Init again before any other operation.
func (m *Manager) Reinit() {
	m.T = nil
}

// PairRound generates and stores the pairings for round, which must
// equal the highest already-paired round plus one (rounds cannot be
// paired out of order, and a round cannot be re-paired once it has
// matches). Round 2 is deliberately allowed before round 1 is fully
// reported, to permit parallel scheduling; every later round requires
// every prior round to be fully reported first.
func (m *Manager) PairRound(round int) ([]*domain.Match, error) {
	const op = "pair_round"
	if m.T == nil {
		return nil, validationErrorf(op, "tournament not initialized")
	}
	nextRound := m.T.HighestPairedRound() + 1
	if round != nextRound {
		return nil, validationErrorf(op, "round %d is not the next round to pair (%d)", round, nextRound)
	}
	if round > m.T.Config.NumRounds() {
		return nil, validationErrorf(op, "round %d exceeds the tournament's %d rounds", round, m.T.Config.NumRounds())
	}
	if round > 2 {
		for r := 1; r < round; r++ {
			if !m.T.RoundFullyReported(r) {
				return nil, validationErrorf(op, "round %d is not fully reported yet", r)
			}
		}
	}

	var assigned []pairing.AssignedPair
	bye := -1

	switch {
	case round <= m.T.Config.NumPrelimRounds:
		res := pairing.Pair(m.T.Teams, round, m.Rand)
		assigned = res.Pairs
		bye = res.Bye

	case round == m.T.Config.NumPrelimRounds+1:
		qualified, err := bracket.BreakTeams(m.T.Teams, m.T.Config.BreakSize())
		if err != nil {
			return nil, validationErrorf(op, "%s", err.Error())
		}
		assigned, err = bracket.FirstRound(qualified, m.Rand)
		if err != nil {
			return nil, validationErrorf(op, "%s", err.Error())
		}

	default:
		prevMatches := m.T.MatchesInRound(round - 1)
		if !m.T.RoundFullyReported(round - 1) {
			return nil, validationErrorf(op, "round %d is not fully reported yet", round-1)
		}
		var err error
		assigned, err = bracket.NextRound(prevMatches, m.T.Team, m.Rand)
		if err != nil {
			return nil, validationErrorf(op, "%s", err.Error())
		}
	}

	created := make([]*domain.Match, 0, len(assigned)+1)
	for _, a := range assigned {
		created = append(created, m.newMatch(round, a.AffID, a.NegID))
	}
	if bye != -1 {
		byeMatch := m.newMatch(round, bye, domain.ByeOpponentID)
		byeMatch.Result = domain.ResultAff
		created = append(created, byeMatch)
	}

	m.T.Matches = append(m.T.Matches, created...)
	stats.Recompute(m.T)
	consistency.SyncPairingLog(m.T)
	for _, match := range created {
		consistency.AppendResult(m.T, match.MatchID)
	}
	if err := consistency.Validate(m.T); err != nil {
		return nil, err
	}

	return created, nil
}

func (m *Manager) newMatch(round, affID, negID int) *domain.Match {
	match := &domain.Match{
		MatchID:  m.T.NextMatchID,
		RoundNum: round,
		AffID:    affID,
		NegID:    negID,
		JudgeID:  domain.UnassignedJudge,
	}
	if affID != domain.ByeOpponentID {
		match.AffName = m.T.Team(affID).Name
	}
	if negID != domain.ByeOpponentID {
		match.NegName = m.T.Team(negID).Name
	}
	m.T.NextMatchID++
	return match
}

// ReportResult records a match's first outcome. It is a validation error
// to report a match that already has one — use UpdateResult for that,
// which carries the force semantic a correction needs.
func (m *Manager) ReportResult(matchID int, result domain.Result, sp *domain.SpeakerPoints) error {
	const op = "report_result"
	if m.T == nil {
		return validationErrorf(op, "tournament not initialized")
	}
	match := m.T.Match(matchID)
	if match == nil {
		return validationErrorf(op, "no match with id %d", matchID)
	}
	if match.IsBye() {
		return validationErrorf(op, "match %d is a bye and cannot be reported", matchID)
	}
	if match.Reported() {
		return validationErrorf(op, "match %d already has a result, use update_result to correct it", matchID)
	}
	if result != domain.ResultAff && result != domain.ResultNeg {
		return validationErrorf(op, "result must be %q or %q, got %q", domain.ResultAff, domain.ResultNeg, result)
	}

	match.Result = result
	match.SpeakerPoints = sp

	stats.Recompute(m.T)
	consistency.AppendResult(m.T, matchID)
	return consistency.Validate(m.T)
}

// UpdateResult force-corrects a match's outcome and/or speaker points,
// whether or not it was previously reported. Passing a nil newResult
// clears the match back to unreported — the result log's superseded
// line is commented out and nothing new is appended for it.
func (m *Manager) UpdateResult(matchID int, newResult *domain.Result, sp *domain.SpeakerPoints) error {
	const op = "update_result"
	if m.T == nil {
		return validationErrorf(op, "tournament not initialized")
	}
	match := m.T.Match(matchID)
	if match == nil {
		return validationErrorf(op, "no match with id %d", matchID)
	}
	if match.IsBye() {
		return validationErrorf(op, "match %d is a bye and cannot be reported", matchID)
	}
	if newResult != nil && *newResult != domain.ResultAff && *newResult != domain.ResultNeg {
		return validationErrorf(op, "result must be %q or %q, got %q", domain.ResultAff, domain.ResultNeg, *newResult)
	}

	if newResult == nil {
		match.Result = domain.ResultUnreported
		match.SpeakerPoints = nil
		stats.Recompute(m.T)
		consistency.ClearResult(m.T, matchID)
		return consistency.Validate(m.T)
	}

	match.Result = *newResult
	if sp != nil {
		match.SpeakerPoints = sp
	}

	stats.Recompute(m.T)
	consistency.AppendResult(m.T, matchID)
	return consistency.Validate(m.T)
}

// AssignJudge assigns (or reassigns) a judge to a match.
func (m *Manager) AssignJudge(matchID, judgeID int) error {
	const op = "assign_judge"
	if m.T == nil {
		return validationErrorf(op, "tournament not initialized")
	}
	match := m.T.Match(matchID)
	if match == nil {
		return validationErrorf(op, "no match with id %d", matchID)
	}
	judge := m.T.Judge(judgeID)
	if judge == nil {
		return validationErrorf(op, "no judge with id %d", judgeID)
	}
	if match.JudgeID != domain.UnassignedJudge && match.JudgeID != judgeID {
		if prev := m.T.Judge(match.JudgeID); prev != nil {
			delete(prev.MatchesJudged, matchID)
		}
	}
	match.JudgeID = judgeID
	judge.MatchesJudged[matchID] = true
	if match.Reported() {
		consistency.AppendResult(m.T, matchID)
	}
	return consistency.Validate(m.T)
}

// UnassignJudge clears a match's judge assignment.
func (m *Manager) UnassignJudge(matchID int) error {
	const op = "unassign_judge"
	if m.T == nil {
		return validationErrorf(op, "tournament not initialized")
	}
	match := m.T.Match(matchID)
	if match == nil {
		return validationErrorf(op, "no match with id %d", matchID)
	}
	if match.JudgeID != domain.UnassignedJudge {
		if j := m.T.Judge(match.JudgeID); j != nil {
			delete(j.MatchesJudged, matchID)
		}
	}
	match.JudgeID = domain.UnassignedJudge
	if match.Reported() {
		consistency.AppendResult(m.T, matchID)
	}
	return consistency.Validate(m.T)
}

// AddJudge registers a new judge and returns its id.
func (m *Manager) AddJudge(name, institution string) (int, error) {
	const op = "add_judge"
	if m.T == nil {
		return 0, validationErrorf(op, "tournament not initialized")
	}
	for _, existing := range m.T.Judges {
		if strings.EqualFold(existing.Name, name) {
			return 0, validationErrorf(op, "a judge named %q already exists", existing.Name)
		}
	}
	j := domain.NewJudge(m.T.NextJudgeID, name, institution)
	m.T.NextJudgeID++
	m.T.Judges = append(m.T.Judges, j)
	return j.ID, nil
}

// RemoveJudge deletes a judge that is not currently assigned to any match.
func (m *Manager) RemoveJudge(judgeID int) error {
	const op = "remove_judge"
	if m.T == nil {
		return validationErrorf(op, "tournament not initialized")
	}
	j := m.T.Judge(judgeID)
	if j == nil {
		return validationErrorf(op, "no judge with id %d", judgeID)
	}
	if len(j.MatchesJudged) > 0 {
		return validationErrorf(op, "judge %d is assigned to %d match(es)", judgeID, len(j.MatchesJudged))
	}
	for i, cand := range m.T.Judges {
		if cand.ID == judgeID {
			m.T.Judges = append(m.T.Judges[:i], m.T.Judges[i+1:]...)
			break
		}
	}
	return nil
}

// RoundMatches returns the matches for a given round, in creation order.
func (m *Manager) RoundMatches(round int) []*domain.Match {
	if m.T == nil {
		return nil
	}
	return m.T.MatchesInRound(round)
}

// Standings returns every team ranked by (score desc, buchholz desc, id
// asc) — the tournament's overall standings at the current point in time.
func (m *Manager) Standings() []*domain.Team {
	if m.T == nil {
		return nil
	}
	ranked := make([]*domain.Team, len(m.T.Teams))
	copy(ranked, m.T.Teams)
	sortByBreakScore(ranked)
	return ranked
}

// PreliminaryStandings ranks teams using only prelim-round results,
// ignoring any elimination-round matches that have already been played.
// This is what break seeding is computed from, and it's exposed directly
// so a query can see the break order before elimination rounds start.
func (m *Manager) PreliminaryStandings() []*domain.Team {
	if m.T == nil {
		return nil
	}
	shadow := &domain.Tournament{Config: m.T.Config, Teams: cloneTeams(m.T.Teams)}
	for _, match := range m.T.Matches {
		if match.RoundNum <= m.T.Config.NumPrelimRounds {
			shadow.Matches = append(shadow.Matches, match)
		}
	}
	stats.Recompute(shadow)
	sort.SliceStable(shadow.Teams, func(i, j int) bool {
		a, b := shadow.Teams[i], shadow.Teams[j]
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
	return shadow.Teams
}

func cloneTeams(teams []*domain.Team) []*domain.Team {
	out := make([]*domain.Team, len(teams))
	for i, t := range teams {
		cp := *t
		cp.Opponents = nil
		cp.SideHistory = nil
		cp.SpeakerPointsHistory = nil
		out[i] = &cp
	}
	return out
}

func sortByBreakScore(teams []*domain.Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Buchholz != b.Buchholz {
			return a.Buchholz > b.Buchholz
		}
		return a.ID < b.ID
	})
}

// SpeakerStandingMode selects how ParticipantStandings adjusts a
// participant's per-round point list before totaling, per spec §4.6.
type SpeakerStandingMode int

const (
	// SpeakerTotal sums every prelim round's points, no drops.
	SpeakerTotal SpeakerStandingMode = iota
	// SpeakerDrop1 drops the single lowest and single highest round, if
	// at least 3 rounds were recorded.
	SpeakerDrop1
	// SpeakerDrop2 drops the two lowest and two highest rounds, if at
	// least 5 rounds were recorded.
	SpeakerDrop2
)

// ParticipantStanding is one debater's aggregated speaker-point ranking.
type ParticipantStanding struct {
	TeamID int
	Slot   int
	Name   string
	Total  float64
	Adjusted float64
}

// ParticipantStandings ranks individual members (not teams) by adjusted
// total speaker points over prelim rounds only, per §4.6: order is
// (adjusted desc, total desc, name asc).
func (m *Manager) ParticipantStandings(mode SpeakerStandingMode) []ParticipantStanding {
	if m.T == nil {
		return nil
	}
	var out []ParticipantStanding
	for _, t := range m.T.Teams {
		for slot := 0; slot < 2; slot++ {
			rounds := prelimPoints(t, slot, m.T.Config.NumPrelimRounds)
			total := sumFloats(rounds)
			out = append(out, ParticipantStanding{
				TeamID:   t.ID,
				Slot:     slot,
				Name:     t.Members[slot].Name,
				Total:    total,
				Adjusted: adjustedTotal(rounds, mode),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Adjusted != out[j].Adjusted {
			return out[i].Adjusted > out[j].Adjusted
		}
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func prelimPoints(t *domain.Team, slot, numPrelimRounds int) []float64 {
	var rounds []float64
	for _, r := range t.SpeakerPointsHistory {
		if r.Round > numPrelimRounds {
			continue
		}
		if p := r.Points[slot]; p != nil {
			rounds = append(rounds, *p)
		}
	}
	return rounds
}

func sumFloats(vs []float64) float64 {
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total
}

func adjustedTotal(rounds []float64, mode SpeakerStandingMode) float64 {
	drop := 0
	switch mode {
	case SpeakerDrop1:
		if len(rounds) >= 3 {
			drop = 1
		}
	case SpeakerDrop2:
		if len(rounds) >= 5 {
			drop = 2
		}
	}
	if drop == 0 {
		return sumFloats(rounds)
	}

	sorted := make([]float64, len(rounds))
	copy(sorted, rounds)
	sort.Float64s(sorted)
	return sumFloats(sorted[drop : len(sorted)-drop])
}

func pwinSanityCheck(model domain.WinModel) (bool, error) {
	switch model {
	case domain.WinModelElo, domain.WinModelLinear, domain.WinModelDeterministic, "":
		return true, nil
	default:
		return false, configErrorf("unknown win model %q", model)
	}
}
