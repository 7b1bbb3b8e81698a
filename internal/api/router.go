// Package api exposes the tournament engine over HTTP with gin, the way
// the teacher's cmd/main.go wires its routes directly against the
// service layer rather than through an extra handler-interface tier.
package api

import (
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/matchforge/swiss-engine/internal/config"
	"github.com/matchforge/swiss-engine/internal/middleware"
	"github.com/matchforge/swiss-engine/internal/simulate"
	"github.com/matchforge/swiss-engine/internal/storage"
	"github.com/matchforge/swiss-engine/internal/tournament"
)

// API bundles everything a request handler needs: the live tournament
// manager, an optional persistence store, and the simulation worker
// count from config.
type API struct {
	Manager *tournament.Manager
	Store   *storage.Store
	Workers int
}

// NewAPI builds an API with a fresh, uninitialized tournament manager.
func NewAPI(store *storage.Store, cfg *config.Config) *API {
	return &API{
		Manager: tournament.New(),
		Store:   store,
		Workers: cfg.SimulationWorkers,
	}
}

// NewRouter builds the gin engine with middleware and every route wired.
func NewRouter(a *API) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	var mu sync.Mutex
	r.Use(func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", middleware.RequestIDHeader},
	}))

	r.POST("/init", a.handleInit)
	r.POST("/reinit", a.handleReinit)

	r.POST("/rounds/:n/pair", a.handlePairRound)
	r.GET("/rounds/:n/matches", a.handleRoundMatches)

	r.POST("/matches/:id/result", a.handleReportResult)
	r.PATCH("/matches/:id/result", a.handleUpdateResult)
	r.POST("/matches/:id/judge", a.handleAssignJudge)
	r.DELETE("/matches/:id/judge", a.handleUnassignJudge)

	r.POST("/judges", a.handleAddJudge)
	r.DELETE("/judges/:id", a.handleRemoveJudge)

	r.GET("/standings", a.handleStandings)
	r.GET("/standings/preliminary", a.handlePreliminaryStandings)
	r.GET("/standings/participants", a.handleParticipantStandings)

	r.GET("/export", a.handleExport)

	sim := r.Group("/simulate")
	sim.POST("/topn", a.handleSimulateTopN)
	sim.POST("/win-distribution", a.handleSimulateWinDistribution)
	sim.POST("/rank-distribution-from-wins", a.handleSimulateRankFromWins)
	sim.POST("/rank-distribution-from-history", a.handleSimulateRankFromHistory)
	sim.POST("/head-to-head", a.handleSimulateHeadToHead)

	return r
}

func writeError(c *gin.Context, err error) {
	switch err.(type) {
	case *tournament.ValidationError:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case *tournament.ConfigError:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// simulatorRequest is the shared body every /simulate/* endpoint
// parses to build a fresh simulate.Simulator.
type simulatorRequest struct {
	NumTeams        int    `json:"num_teams" binding:"required"`
	NumPrelimRounds int    `json:"num_prelim_rounds" binding:"required"`
	NumElimRounds   int    `json:"num_elim_rounds"`
	WinModel        string `json:"win_model"`
	TrueRanks       []int  `json:"true_ranks" binding:"required"`
	NumRuns         int    `json:"num_runs"`
	Seed            int64  `json:"seed"`
}

func (req simulatorRequest) build() (*simulate.Simulator, error) {
	cfg := req.toConfig()
	return simulate.New(cfg, req.TrueRanks)
}
