package domain

// WinModel selects which probability function internal/winmodel uses.
type WinModel string

const (
	WinModelElo           WinModel = "elo"
	WinModelLinear        WinModel = "linear"
	WinModelDeterministic WinModel = "deterministic"
)

// Config is the tournament's static configuration, fixed at init.
type Config struct {
	NumTeams        int      `json:"num_teams"`
	NumPrelimRounds int      `json:"num_prelim_rounds"`
	NumElimRounds   int      `json:"num_elim_rounds"`
	WinModel        WinModel `json:"win_model"`
}

// NumRounds returns the total round count, prelim plus elimination.
func (c Config) NumRounds() int {
	return c.NumPrelimRounds + c.NumElimRounds
}

// BreakSize is the number of teams that break into the elimination bracket.
func (c Config) BreakSize() int {
	return 1 << uint(c.NumElimRounds)
}

// Tournament is the top-level aggregate: config, registries, match log, and
// the two redundant textual projections described in spec §4.7.
type Tournament struct {
	Config Config `json:"config"`

	CurrentRound int `json:"current_round"`

	Teams  []*Team  `json:"teams"`
	Judges []*Judge `json:"judges"`
	Matches []*Match `json:"matches"`

	NextMatchID int `json:"next_match_id"`
	NextJudgeID int `json:"next_judge_id"`

	PairingText string `json:"pairing_text"`
	ResultText  string `json:"result_text"`
}

// Team looks up a team by id, returning nil if out of range.
func (t *Tournament) Team(id int) *Team {
	if id < 0 || id >= len(t.Teams) {
		return nil
	}
	return t.Teams[id]
}

// Judge looks up a judge by id.
func (t *Tournament) Judge(id int) *Judge {
	for _, j := range t.Judges {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// Match looks up a match by id.
func (t *Tournament) Match(id int) *Match {
	for _, m := range t.Matches {
		if m.MatchID == id {
			return m
		}
	}
	return nil
}

// MatchesInRound returns matches for a given round, in creation order.
func (t *Tournament) MatchesInRound(round int) []*Match {
	var out []*Match
	for _, m := range t.Matches {
		if m.RoundNum == round {
			out = append(out, m)
		}
	}
	return out
}

// RoundFullyReported reports whether every match in round r has a result.
func (t *Tournament) RoundFullyReported(round int) bool {
	found := false
	for _, m := range t.Matches {
		if m.RoundNum != round {
			continue
		}
		found = true
		if !m.Reported() {
			return false
		}
	}
	return found
}

// HighestPairedRound returns the largest round number with any matches, or 0.
func (t *Tournament) HighestPairedRound() int {
	max := 0
	for _, m := range t.Matches {
		if m.RoundNum > max {
			max = m.RoundNum
		}
	}
	return max
}
