package simulate

import (
	"testing"

	"github.com/matchforge/swiss-engine/internal/domain"
	"github.com/matchforge/swiss-engine/internal/rng"
)

func trueRanksAscending(n int) []int {
	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = i + 1
	}
	return ranks
}

func TestNewRejectsMismatchedRankCount(t *testing.T) {
	cfg := domain.Config{NumTeams: 4, NumPrelimRounds: 2}
	if _, err := New(cfg, []int{1, 2, 3}); err == nil {
		t.Fatal("expected an error when trueRanks doesn't match NumTeams")
	}
}

func TestRunOneProducesACompleteRanking(t *testing.T) {
	cfg := domain.Config{NumTeams: 8, NumPrelimRounds: 3, WinModel: domain.WinModelElo}
	sim, err := New(cfg, trueRanksAscending(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snap, err := sim.RunOne(rng.NewRand(1))
	if err != nil {
		t.Fatalf("RunOne: %v", err)
	}
	if len(snap.FinalRank) != 8 {
		t.Fatalf("got %d ranked teams, want 8", len(snap.FinalRank))
	}
	seenRanks := make(map[int]bool)
	for _, rank := range snap.FinalRank {
		if rank < 1 || rank > 8 {
			t.Fatalf("rank %d out of range [1,8]", rank)
		}
		seenRanks[rank] = true
	}
	if len(seenRanks) != 8 {
		t.Fatalf("expected 8 distinct ranks, got %d", len(seenRanks))
	}
	if snap.Champion != -1 {
		t.Errorf("Champion = %d, want -1 (no elimination rounds configured)", snap.Champion)
	}
}

func TestRunOneWithElimRoundsProducesAChampion(t *testing.T) {
	cfg := domain.Config{NumTeams: 8, NumPrelimRounds: 3, NumElimRounds: 3, WinModel: domain.WinModelElo}
	sim, err := New(cfg, trueRanksAscending(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snap, err := sim.RunOne(rng.NewRand(1))
	if err != nil {
		t.Fatalf("RunOne: %v", err)
	}
	if snap.Champion < 0 || snap.Champion >= 8 {
		t.Fatalf("Champion = %d, want a valid team id", snap.Champion)
	}
}

func TestRunOneIsDeterministicForAFixedSeed(t *testing.T) {
	cfg := domain.Config{NumTeams: 8, NumPrelimRounds: 3, WinModel: domain.WinModelElo}
	sim, err := New(cfg, trueRanksAscending(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snapA, err := sim.RunOne(rng.NewRand(12345))
	if err != nil {
		t.Fatalf("RunOne: %v", err)
	}
	snapB, err := sim.RunOne(rng.NewRand(12345))
	if err != nil {
		t.Fatalf("RunOne: %v", err)
	}
	for id, rank := range snapA.FinalRank {
		if snapB.FinalRank[id] != rank {
			t.Fatalf("team %d rank diverged across identically-seeded runs: %d vs %d", id, rank, snapB.FinalRank[id])
		}
	}
}

func TestBatchRunsNIndependentSimulations(t *testing.T) {
	cfg := domain.Config{NumTeams: 8, NumPrelimRounds: 2, WinModel: domain.WinModelElo}
	sim, err := New(cfg, trueRanksAscending(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snaps, err := sim.Batch(20, 1, 4)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if len(snaps) != 20 {
		t.Fatalf("got %d snapshots, want 20", len(snaps))
	}
}

func TestBatchIsReproducibleAcrossWorkerCounts(t *testing.T) {
	cfg := domain.Config{NumTeams: 8, NumPrelimRounds: 2, WinModel: domain.WinModelElo}
	sim, err := New(cfg, trueRanksAscending(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	single, err := sim.Batch(10, 5, 1)
	if err != nil {
		t.Fatalf("Batch(workers=1): %v", err)
	}
	parallel, err := sim.Batch(10, 5, 4)
	if err != nil {
		t.Fatalf("Batch(workers=4): %v", err)
	}
	for i := range single {
		for id, rank := range single[i].FinalRank {
			if parallel[i].FinalRank[id] != rank {
				t.Fatalf("snapshot %d team %d diverged between worker counts: %d vs %d", i, id, rank, parallel[i].FinalRank[id])
			}
		}
	}
}
