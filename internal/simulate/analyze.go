package simulate

import (
	"fmt"

	"github.com/matchforge/swiss-engine/internal/domain"
)

// TopN reports, for each team id, the fraction of snapshots in which that
// team finished at rank n or better.
func TopN(snapshots []Snapshot, n int) map[int]float64 {
	counts := make(map[int]int)
	for _, snap := range snapshots {
		for teamID, rank := range snap.FinalRank {
			if rank <= n {
				counts[teamID]++
			}
		}
	}
	out := make(map[int]float64, len(counts))
	total := float64(len(snapshots))
	for teamID, c := range counts {
		out[teamID] = float64(c) / total
	}
	return out
}

// WinDistribution returns, for each true rank present in trueRanks, the
// distribution over prelim win counts observed across the batch: a map
// from win count to the fraction of (snapshot, team-with-that-rank) pairs
// that ended with that many wins.
func WinDistribution(snapshots []Snapshot, trueRanks []int) map[int]map[int]float64 {
	teamsByRank := make(map[int][]int)
	for teamID, rank := range trueRanks {
		teamsByRank[rank] = append(teamsByRank[rank], teamID)
	}

	raw := make(map[int]map[int]int)
	denom := make(map[int]int)
	for _, snap := range snapshots {
		for rank, teamIDs := range teamsByRank {
			if raw[rank] == nil {
				raw[rank] = make(map[int]int)
			}
			for _, teamID := range teamIDs {
				raw[rank][snap.Wins[teamID]]++
				denom[rank]++
			}
		}
	}

	out := make(map[int]map[int]float64, len(raw))
	for rank, hist := range raw {
		out[rank] = make(map[int]float64, len(hist))
		for wins, c := range hist {
			out[rank][wins] = float64(c) / float64(denom[rank])
		}
	}
	return out
}

// RankDistributionFromWins returns, conditioned on a team finishing
// prelims with exactly wins wins, the distribution over its final rank.
func RankDistributionFromWins(snapshots []Snapshot, wins int) map[int]float64 {
	hist := make(map[int]int)
	total := 0
	for _, snap := range snapshots {
		for teamID, w := range snap.Wins {
			if w != wins {
				continue
			}
			hist[snap.FinalRank[teamID]]++
			total++
		}
	}
	out := make(map[int]float64, len(hist))
	for rank, c := range hist {
		out[rank] = float64(c) / float64(total)
	}
	return out
}

// HistoryEntry is one round's prelim record for a single team: the
// opponent it faced (by team id, domain.ByeOpponentID for a bye round)
// and whether it won.
type HistoryEntry struct {
	OpponentID int
	Won        bool
}

// winLossPrefix renders entries' Won sequence as a string of 'W'/'L', one
// character per round, e.g. a team that beat its round-1 opponent and
// lost its round-2 opponent renders "WL".
func winLossPrefix(entries []HistoryEntry) string {
	b := make([]byte, len(entries))
	for i, h := range entries {
		if h.Won {
			b[i] = 'W'
		} else {
			b[i] = 'L'
		}
	}
	return string(b)
}

// RankDistributionFromHistory returns the distribution over final rank
// for snapshots in which team teamID's W/L prefix — win/loss only, not
// who it played or their rank — equals prefix (e.g. "WW", "WL"). Two
// teams with the same win/loss record but different opponents condition
// identically. An empty prefix matches every snapshot.
func RankDistributionFromHistory(snapshots []Snapshot, teamID int, prefix string) map[int]float64 {
	hist := make(map[int]int)
	total := 0
	for _, snap := range snapshots {
		entries := snap.History[teamID]
		if len(prefix) > len(entries) {
			continue
		}
		if winLossPrefix(entries[:len(prefix)]) != prefix {
			continue
		}
		hist[snap.FinalRank[teamID]]++
		total++
	}
	out := make(map[int]float64, len(hist))
	for rank, c := range hist {
		out[rank] = float64(c) / float64(total)
	}
	return out
}

// HeadToHeadResult aggregates every observed round-len(prefixA) meeting
// between a team whose W/L prefix equals prefixA and a team whose W/L
// prefix equals prefixB.
type HeadToHeadResult struct {
	Matchups      int
	WinsByA       int
	WinsByB       int
	MeanTrueRankA float64
	MeanTrueRankB float64
}

// HeadToHead runs batches of full tournament simulations, and for each,
// scans every team whose prelim W/L prefix equals prefixA; if that
// team's round-len(prefixA) opponent's own prefix through that round
// equals prefixB, the matchup is recorded. It stops once minMatchups
// have been observed or maxTournaments tournaments have been simulated,
// whichever comes first, returning whatever was observed either way.
// prefixA and prefixB must be the same length — that length is the
// round in which A-cohort and B-cohort teams would meet.
func (s *Simulator) HeadToHead(prefixA, prefixB string, seed int64, batchSize, minMatchups, maxTournaments int) (HeadToHeadResult, error) {
	if batchSize < 1 {
		batchSize = 100
	}
	if len(prefixA) != len(prefixB) {
		return HeadToHeadResult{}, fmt.Errorf("simulate: head-to-head prefixes must be the same length, got %q and %q", prefixA, prefixB)
	}
	if len(prefixA) == 0 {
		return HeadToHeadResult{}, fmt.Errorf("simulate: head-to-head prefixes must not be empty")
	}
	round := len(prefixA)

	var result HeadToHeadResult
	var sumRankA, sumRankB float64
	sameCohort := prefixA == prefixB
	tournaments := 0
	nextSeed := seed

	for result.Matchups < minMatchups && tournaments < maxTournaments {
		n := batchSize
		if tournaments+n > maxTournaments {
			n = maxTournaments - tournaments
		}
		snaps, err := s.Batch(n, nextSeed, 1)
		if err != nil {
			return HeadToHeadResult{}, err
		}
		nextSeed += int64(n)
		tournaments += n

		for _, snap := range snaps {
			for teamID, entries := range snap.History {
				if round > len(entries) || winLossPrefix(entries[:round]) != prefixA {
					continue
				}
				oppID := entries[round-1].OpponentID
				if oppID == domain.ByeOpponentID {
					continue
				}
				// When both cohorts are the same string, only count the
				// match from the lower-id side to avoid double-counting
				// the same meeting from both ends.
				if sameCohort && teamID > oppID {
					continue
				}
				oppEntries := snap.History[oppID]
				if round > len(oppEntries) || winLossPrefix(oppEntries[:round]) != prefixB {
					continue
				}
				result.Matchups++
				sumRankA += float64(s.TrueRanks[teamID])
				sumRankB += float64(s.TrueRanks[oppID])
				if entries[round-1].Won {
					result.WinsByA++
				} else {
					result.WinsByB++
				}
			}
		}
	}

	if result.Matchups > 0 {
		result.MeanTrueRankA = sumRankA / float64(result.Matchups)
		result.MeanTrueRankB = sumRankB / float64(result.Matchups)
	}
	return result, nil
}
