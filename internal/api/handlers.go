package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matchforge/swiss-engine/internal/domain"
	"github.com/matchforge/swiss-engine/internal/simulate"
	"github.com/matchforge/swiss-engine/internal/tournament"
)

func (req simulatorRequest) toConfig() domain.Config {
	return domain.Config{
		NumTeams:        req.NumTeams,
		NumPrelimRounds: req.NumPrelimRounds,
		NumElimRounds:   req.NumElimRounds,
		WinModel:        domain.WinModel(req.WinModel),
	}
}

func (req simulatorRequest) runs() int {
	if req.NumRuns <= 0 {
		return 1000
	}
	return req.NumRuns
}

type teamSpecRequest struct {
	Name        string `json:"name" binding:"required"`
	Institution string `json:"institution"`
	Member0     string `json:"member0"`
	Member1     string `json:"member1"`
}

type initRequest struct {
	NumPrelimRounds int               `json:"num_prelim_rounds" binding:"required"`
	NumElimRounds   int               `json:"num_elim_rounds"`
	WinModel        string            `json:"win_model"`
	Teams           []teamSpecRequest `json:"teams" binding:"required"`
}

func (a *API) handleInit(c *gin.Context) {
	var req initRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	specs := make([]tournament.TeamSpec, len(req.Teams))
	for i, ts := range req.Teams {
		specs[i] = tournament.TeamSpec{
			Name:        ts.Name,
			Institution: ts.Institution,
			Members: [2]domain.Member{
				{Name: ts.Member0, Slot: 0},
				{Name: ts.Member1, Slot: 1},
			},
		}
	}

	cfg := domain.Config{
		NumTeams:        len(req.Teams),
		NumPrelimRounds: req.NumPrelimRounds,
		NumElimRounds:   req.NumElimRounds,
		WinModel:        domain.WinModel(req.WinModel),
	}

	if err := a.Manager.Init(cfg, specs); err != nil {
		writeError(c, err)
		return
	}
	a.persist(c)
	c.JSON(http.StatusOK, gin.H{"current_round": a.Manager.T.CurrentRound})
}

func (a *API) handleReinit(c *gin.Context) {
	a.Manager.Reinit()
	if a.Store != nil {
		_ = a.Store.Clear(c.Request.Context())
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handlePairRound(c *gin.Context) {
	round, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "round must be an integer"})
		return
	}
	matches, err := a.Manager.PairRound(round)
	if err != nil {
		writeError(c, err)
		return
	}
	a.persist(c)
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (a *API) handleRoundMatches(c *gin.Context) {
	round, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "round must be an integer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": a.Manager.RoundMatches(round)})
}

type reportResultRequest struct {
	Result        string                `json:"result" binding:"required"`
	SpeakerPoints *domain.SpeakerPoints `json:"speaker_points"`
}

func (a *API) handleReportResult(c *gin.Context) {
	matchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match id must be an integer"})
		return
	}
	var req reportResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Manager.ReportResult(matchID, domain.Result(req.Result), req.SpeakerPoints); err != nil {
		writeError(c, err)
		return
	}
	a.persist(c)
	c.Status(http.StatusNoContent)
}

type updateResultRequest struct {
	Result        *string               `json:"result"`
	SpeakerPoints *domain.SpeakerPoints `json:"speaker_points"`
}

func (a *API) handleUpdateResult(c *gin.Context) {
	matchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match id must be an integer"})
		return
	}
	var req updateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var newResult *domain.Result
	if req.Result != nil {
		r := domain.Result(*req.Result)
		newResult = &r
	}

	if err := a.Manager.UpdateResult(matchID, newResult, req.SpeakerPoints); err != nil {
		writeError(c, err)
		return
	}
	a.persist(c)
	c.Status(http.StatusNoContent)
}

type assignJudgeRequest struct {
	JudgeID int `json:"judge_id" binding:"required"`
}

func (a *API) handleAssignJudge(c *gin.Context) {
	matchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match id must be an integer"})
		return
	}
	var req assignJudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Manager.AssignJudge(matchID, req.JudgeID); err != nil {
		writeError(c, err)
		return
	}
	a.persist(c)
	c.Status(http.StatusNoContent)
}

func (a *API) handleUnassignJudge(c *gin.Context) {
	matchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match id must be an integer"})
		return
	}
	if err := a.Manager.UnassignJudge(matchID); err != nil {
		writeError(c, err)
		return
	}
	a.persist(c)
	c.Status(http.StatusNoContent)
}

type addJudgeRequest struct {
	Name        string `json:"name" binding:"required"`
	Institution string `json:"institution"`
}

func (a *API) handleAddJudge(c *gin.Context) {
	var req addJudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := a.Manager.AddJudge(req.Name, req.Institution)
	if err != nil {
		writeError(c, err)
		return
	}
	a.persist(c)
	c.JSON(http.StatusCreated, gin.H{"judge_id": id})
}

func (a *API) handleRemoveJudge(c *gin.Context) {
	judgeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "judge id must be an integer"})
		return
	}
	if err := a.Manager.RemoveJudge(judgeID); err != nil {
		writeError(c, err)
		return
	}
	a.persist(c)
	c.Status(http.StatusNoContent)
}

func (a *API) handleStandings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"standings": a.Manager.Standings()})
}

func (a *API) handlePreliminaryStandings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"standings": a.Manager.PreliminaryStandings()})
}

func (a *API) handleParticipantStandings(c *gin.Context) {
	mode := tournament.SpeakerTotal
	switch c.Query("mode") {
	case "drop1":
		mode = tournament.SpeakerDrop1
	case "drop2":
		mode = tournament.SpeakerDrop2
	}
	c.JSON(http.StatusOK, gin.H{"standings": a.Manager.ParticipantStandings(mode)})
}

func (a *API) handleExport(c *gin.Context) {
	if a.Manager.T == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no tournament initialized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tournament":   a.Manager.T,
		"pairing_text": a.Manager.T.PairingText,
		"result_text":  a.Manager.T.ResultText,
	})
}

func (a *API) persist(c *gin.Context) {
	if a.Store == nil || a.Manager.T == nil {
		return
	}
	if err := a.Store.Save(c.Request.Context(), a.Manager.T); err != nil {
		// The operation already succeeded in memory; a persistence failure
		// is logged rather than rolling back an otherwise-valid state
		// transition.
		log.Printf("storage: save failed: %v", err)
	}
}

func (a *API) handleSimulateTopN(c *gin.Context) {
	var req simulatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n := 1
	if v := c.Query("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			n = parsed
		}
	}

	sim, err := req.build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snaps, err := sim.Batch(req.runs(), req.Seed, a.Workers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topn": simulate.TopN(snaps, n)})
}

func (a *API) handleSimulateWinDistribution(c *gin.Context) {
	var req simulatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sim, err := req.build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snaps, err := sim.Batch(req.runs(), req.Seed, a.Workers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"win_distribution": simulate.WinDistribution(snaps, req.TrueRanks)})
}

func (a *API) handleSimulateRankFromWins(c *gin.Context) {
	var req simulatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wins, _ := strconv.Atoi(c.Query("wins"))

	sim, err := req.build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snaps, err := sim.Batch(req.runs(), req.Seed, a.Workers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rank_distribution": simulate.RankDistributionFromWins(snaps, wins)})
}

type rankFromHistoryRequest struct {
	simulatorRequest
	TeamID  int    `json:"team_id" binding:"required"`
	History string `json:"history"`
}

func (a *API) handleSimulateRankFromHistory(c *gin.Context) {
	var req rankFromHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sim, err := req.simulatorRequest.build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snaps, err := sim.Batch(req.runs(), req.Seed, a.Workers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	dist := simulate.RankDistributionFromHistory(snaps, req.TeamID, req.History)
	c.JSON(http.StatusOK, gin.H{"rank_distribution": dist})
}

type headToHeadRequest struct {
	simulatorRequest
	PrefixA        string `json:"prefix_a" binding:"required"`
	PrefixB        string `json:"prefix_b" binding:"required"`
	BatchSize      int    `json:"batch_size"`
	MinMatchups    int    `json:"min_matchups"`
	MaxTournaments int    `json:"max_tournaments"`
}

func (a *API) handleSimulateHeadToHead(c *gin.Context) {
	var req headToHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MinMatchups <= 0 {
		req.MinMatchups = 100
	}
	if req.MaxTournaments <= 0 {
		req.MaxTournaments = 20000
	}

	sim, err := req.simulatorRequest.build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := sim.HeadToHead(req.PrefixA, req.PrefixB, req.Seed, req.BatchSize, req.MinMatchups, req.MaxTournaments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
