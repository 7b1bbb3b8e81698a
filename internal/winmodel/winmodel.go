// Package winmodel computes the probability that one team defeats another
// given their true ranks, per spec §4.1. It is a pure function of rank and
// mode — it never touches tournament state or randomness.
package winmodel

import (
	"fmt"
	"math"

	"github.com/matchforge/swiss-engine/internal/domain"
)

// A team's Elo rating is EloBaseRating minus EloRatingStep times its rank,
// so rank 1 rates 1950 and each lower rank subtracts another EloRatingStep.
const (
	EloBaseRating = 2000.0
	EloRatingStep = 50.0
)

// PWin returns the probability that the team with true rank rankA (1 =
// best) defeats the team with true rank rankB, under the given model.
func PWin(model domain.WinModel, rankA, rankB int) (float64, error) {
	switch model {
	case domain.WinModelElo, "":
		return eloWin(rankA, rankB), nil
	case domain.WinModelLinear:
		return linearWin(rankA, rankB), nil
	case domain.WinModelDeterministic:
		return deterministicWin(rankA, rankB), nil
	default:
		return 0, fmt.Errorf("winmodel: unknown win model %q", model)
	}
}

func eloRating(rank int) float64 {
	return EloBaseRating - EloRatingStep*float64(rank)
}

func eloWin(rankA, rankB int) float64 {
	ra := eloRating(rankA)
	rb := eloRating(rankB)
	return 1.0 / (1.0 + math.Pow(10.0, (rb-ra)/400.0))
}

func linearWin(rankA, rankB int) float64 {
	ra, rb := float64(rankA), float64(rankB)
	maxR := math.Max(ra, rb)
	if maxR == 0 {
		return 0.5
	}
	p := 0.5 + (rb-ra)/(2*maxR)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func deterministicWin(rankA, rankB int) float64 {
	if rankA < rankB {
		return 1
	}
	return 0
}
