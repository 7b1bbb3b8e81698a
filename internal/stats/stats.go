// Package stats rebuilds every team's derived fields from the ordered
// match log, per spec §4.4. There is no incremental patching: a new
// pairing, a result change, or a speaker-point correction all funnel
// through the same full rebuild, which is the single source of truth for
// score, wins, buchholz, side counts, side history, and the round cursor.
package stats

import (
	"sort"

	"github.com/matchforge/swiss-engine/internal/domain"
)

// Recompute replays t.Matches in (round_num, match_id) order and
// overwrites every team's derived fields in place. It is safe to call
// after any mutation to the match log — init, a new pairing, a result
// report, a correction, or a judge change.
func Recompute(t *domain.Tournament) {
	resetTeams(t.Teams)

	ordered := make([]*domain.Match, len(t.Matches))
	copy(ordered, t.Matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].RoundNum != ordered[j].RoundNum {
			return ordered[i].RoundNum < ordered[j].RoundNum
		}
		return ordered[i].MatchID < ordered[j].MatchID
	})

	for _, m := range ordered {
		applyMatch(t, m)
	}

	recomputeBuchholz(t.Teams)
	t.CurrentRound = deriveCurrentRound(t)
}

func resetTeams(teams []*domain.Team) {
	for _, team := range teams {
		team.Score = 0
		team.Wins = 0
		team.Buchholz = 0
		team.AffCount = 0
		team.NegCount = 0
		team.LastSide = domain.None
		team.Opponents = team.Opponents[:0]
		team.SideHistory = make(map[int][]domain.Side)
		team.SpeakerPointsHistory = team.SpeakerPointsHistory[:0]
	}
}

func applyMatch(t *domain.Tournament, m *domain.Match) {
	if m.IsBye() {
		applyBye(t, m)
		return
	}
	if !m.Reported() {
		// Unreported matches still establish that the two teams have
		// met (opponent/side history exists before a result is known).
		recordMeeting(t, m)
		return
	}

	aff := t.Team(m.AffID)
	neg := t.Team(m.NegID)
	if aff == nil || neg == nil {
		return
	}

	recordMeeting(t, m)
	recordSpeakerPoints(aff, neg, m)

	winnerID, _ := m.Winner()
	if winnerID == aff.ID {
		aff.Score++
		aff.Wins++
	} else {
		neg.Score++
		neg.Wins++
	}
}

func recordMeeting(t *domain.Tournament, m *domain.Match) {
	aff := t.Team(m.AffID)
	neg := t.Team(m.NegID)
	if aff == nil || neg == nil {
		return
	}

	aff.Opponents = append(aff.Opponents, neg.ID)
	aff.SideHistory[neg.ID] = append(aff.SideHistory[neg.ID], domain.Aff)
	aff.AffCount++
	aff.LastSide = domain.Aff

	neg.Opponents = append(neg.Opponents, aff.ID)
	neg.SideHistory[aff.ID] = append(neg.SideHistory[aff.ID], domain.Neg)
	neg.NegCount++
	neg.LastSide = domain.Neg
}

func recordSpeakerPoints(aff, neg *domain.Team, m *domain.Match) {
	if m.SpeakerPoints == nil {
		return
	}
	sp := m.SpeakerPoints
	aff.SpeakerPointsHistory = append(aff.SpeakerPointsHistory, domain.SpeakerRound{
		Round:  m.RoundNum,
		Points: [2]*float64{sp.Aff0, sp.Aff1},
	})
	neg.SpeakerPointsHistory = append(neg.SpeakerPointsHistory, domain.SpeakerRound{
		Round:  m.RoundNum,
		Points: [2]*float64{sp.Neg0, sp.Neg1},
	})
}

// applyBye handles a match record with one side set to ByeOpponentID: the
// live team is credited a win without a side, matching an opponent entry
// of ByeOpponentID in its opponent log.
func applyBye(t *domain.Tournament, m *domain.Match) {
	liveID := m.AffID
	if liveID == domain.ByeOpponentID {
		liveID = m.NegID
	}
	team := t.Team(liveID)
	if team == nil {
		return
	}
	team.Opponents = append(team.Opponents, domain.ByeOpponentID)
	if m.Reported() {
		team.Score++
		team.Wins++
	}
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

// deriveCurrentRound implements invariant 5: the largest R such that
// every match with round_num <= R has a reported result, or 0 if no
// round is yet fully reported.
func deriveCurrentRound(t *domain.Tournament) int {
	r := 0
	for round := 1; t.RoundFullyReported(round); round++ {
		r = round
	}
	return r
}
