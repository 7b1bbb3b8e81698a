// Package consistency maintains the two redundant textual projections
// described in spec §4.7 and §6 — a pairing log and a result log — and
// validates them against the structured match records. The structured
// record is always the source of truth.
//
// The pairing log is a pure function of the match list: a match's
// aff_id/neg_id/round_num/match_id never change once created, so the
// whole log is simply re-derived whenever a round is paired. The result
// log is append-only: a correction never rewrites a prior line in place,
// it comments the superseded line out (preserved for audit) and appends
// the fresh one below it.
package consistency

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matchforge/swiss-engine/internal/domain"
)

// Error marks a structured/textual disagreement. Per spec §7 this is
// fatal and not recoverable by retry: the two representations must never
// drift, so a mismatch means a bug in the code that keeps them in sync.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return "consistency: " + e.Msg }

const pairingHeader = "# Format: Round MatchID AffID NegID"
const resultHeader = "# Format: Round MatchID AffID NegID Outcome JudgeID [Aff1 Aff2 Neg1 Neg2]"

// RenderPairingLog rebuilds the pairing log from scratch. Call it after
// every pair_round — it is deterministic in the match list, so calling
// it again with no new matches reproduces byte-identical text.
func RenderPairingLog(t *domain.Tournament) string {
	var b strings.Builder
	b.WriteString(pairingHeader)
	b.WriteString("\n")
	for _, m := range orderedMatches(t) {
		fmt.Fprintf(&b, "%s\n", pairingLine(m))
	}
	return b.String()
}

// SyncPairingLog regenerates and stores t.PairingText.
func SyncPairingLog(t *domain.Tournament) {
	t.PairingText = RenderPairingLog(t)
}

func pairingLine(m *domain.Match) string {
	return fmt.Sprintf("%d %d %d %d", m.RoundNum, m.MatchID, m.AffID, m.NegID)
}

// AppendResult appends the result-log entry for matchID. If a result was
// already logged for this match, the old line is commented out first —
// this is how a correction is recorded. Call this any time a match's
// result, judge, or speaker points change, as long as the match currently
// has a reported result; unreported matches have no result-log line.
func AppendResult(t *domain.Tournament, matchID int) {
	m := t.Match(matchID)
	if m == nil || !m.Reported() {
		return
	}

	lines := splitLines(t.ResultText)
	if len(lines) == 0 {
		lines = []string{resultHeader}
	}
	for i, l := range lines {
		if isActiveResultLineForMatch(l, matchID) {
			lines[i] = "# " + l + "  # Updated/Corrected"
		}
	}
	lines = append(lines, resultLine(m))
	t.ResultText = strings.Join(lines, "\n") + "\n"
}

// ClearResult comments out matchID's active result-log line, if any,
// without appending a replacement. Used when update_result clears a
// match back to unreported.
func ClearResult(t *domain.Tournament, matchID int) {
	lines := splitLines(t.ResultText)
	if len(lines) == 0 {
		return
	}
	for i, l := range lines {
		if isActiveResultLineForMatch(l, matchID) {
			lines[i] = "# " + l + "  # Updated/Corrected"
		}
	}
	t.ResultText = strings.Join(lines, "\n") + "\n"
}

func resultLine(m *domain.Match) string {
	winnerID, _ := m.Winner()
	outcome := "A"
	if winnerID == m.NegID {
		outcome = "N"
	}
	line := fmt.Sprintf("%d %d %d %d %s %d", m.RoundNum, m.MatchID, m.AffID, m.NegID, outcome, m.JudgeID)
	if sp := m.SpeakerPoints; sp != nil {
		line += fmt.Sprintf(" %s %s %s %s", pointTok(sp.Aff0), pointTok(sp.Aff1), pointTok(sp.Neg0), pointTok(sp.Neg1))
	}
	return line
}

func pointTok(p *float64) string {
	if p == nil {
		return "null"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func orderedMatches(t *domain.Tournament) []*domain.Match {
	out := make([]*domain.Match, len(t.Matches))
	copy(out, t.Matches)
	// Matches are appended in (round, match_id) order by construction;
	// this guards the invariant explicitly rather than trusting it.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if a.RoundNum < b.RoundNum || (a.RoundNum == b.RoundNum && a.MatchID < b.MatchID) {
				break
			}
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func splitLines(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func isActiveResultLineForMatch(line string, matchID int) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return false
	}
	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return false
	}
	id, err := strconv.Atoi(fields[1])
	return err == nil && id == matchID
}

// Validate parses the two projections (ignoring comments and blanks) and
// checks them against the structured record, per §4.7's validator
// contract: the pairing log must have exactly one line per match, and
// the result log must have exactly one active line per reported match,
// each agreeing field-for-field with the corresponding domain.Match.
func Validate(t *domain.Tournament) error {
	if err := validatePairingLog(t); err != nil {
		return err
	}
	return validateResultLog(t)
}

func validatePairingLog(t *domain.Tournament) error {
	lines := activeLines(t.PairingText)
	if len(lines) != len(t.Matches) {
		return &Error{Msg: fmt.Sprintf("pairing log has %d lines, tournament has %d matches", len(lines), len(t.Matches))}
	}
	byID := make(map[int]string, len(lines))
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) != 4 {
			return &Error{Msg: fmt.Sprintf("malformed pairing log line %q", l)}
		}
		byID[atoi(fields[1])] = l
	}
	for _, m := range t.Matches {
		l, ok := byID[m.MatchID]
		if !ok {
			return &Error{Msg: fmt.Sprintf("pairing log missing match %d", m.MatchID)}
		}
		if l != pairingLine(m) {
			return &Error{Msg: fmt.Sprintf("pairing log entry for match %d does not match its record", m.MatchID)}
		}
	}
	return nil
}

func validateResultLog(t *domain.Tournament) error {
	lines := activeLines(t.ResultText)
	reported := 0
	for _, m := range t.Matches {
		if m.Reported() {
			reported++
		}
	}
	if len(lines) != reported {
		return &Error{Msg: fmt.Sprintf("result log has %d active lines, tournament has %d reported matches", len(lines), reported)}
	}
	byID := make(map[int]string, len(lines))
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) < 6 {
			return &Error{Msg: fmt.Sprintf("malformed result log line %q", l)}
		}
		byID[atoi(fields[1])] = l
	}
	for _, m := range t.Matches {
		if !m.Reported() {
			continue
		}
		l, ok := byID[m.MatchID]
		if !ok {
			return &Error{Msg: fmt.Sprintf("result log missing match %d", m.MatchID)}
		}
		if l != resultLine(m) {
			return &Error{Msg: fmt.Sprintf("result log entry for match %d does not match its record", m.MatchID)}
		}
	}
	return nil
}

func activeLines(text string) []string {
	var out []string
	for _, l := range splitLines(text) {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
