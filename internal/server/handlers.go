package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/debtlens/core"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
)

type snapshotRequest struct {
	Repo string `json:"repo"`
}

type historyRequest struct {
	Repo    string `json:"repo"`
	Commits int    `json:"commits"`
}

type opinionRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Analysis kinds used as metric labels.
const (
	snapshotKind = "snapshot"
	historyKind  = "history"
	opinionKind  = "opinion"
)

func (s *Server) handleSnapshot(c *gin.Context) {
	var req snapshotRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor := c.GetHeader(ActorHeader)
	if actor != "" {
		ctx = core.WithActor(ctx, actor)
	}

	start := time.Now()
	report, err := s.snapshot(ctx, s.cfg, s.mgr, req.Repo)
	s.metrics.observe(snapshotKind, start, err)
	if err != nil {
		writeError(c, err)
		return
	}

	// Anonymous requests are analyzed but never recorded.
	if actor != "" && s.mgr != nil && s.cfg.StoreBackend != schema.NoneBackend {
		if _, err := core.RecordRollup(ctx, s.cfg, s.mgr.GetRollupStore(), report); err != nil {
			contract.LogWarn("Failed to save rollup", err)
		}
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleHistory(c *gin.Context) {
	var req historyRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Commits <= 0 {
		req.Commits = s.cfg.Commits
	}

	start := time.Now()
	report, err := s.history(c.Request.Context(), s.cfg, s.mgr, req.Repo, req.Commits)
	s.metrics.observe(historyKind, start, err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleOpinion(c *gin.Context) {
	var req opinionRequest
	if !bindJSON(c, &req) {
		return
	}
	if s.opinion == nil {
		writeError(c, fmt.Errorf("%w: no model API key configured", contract.ErrSecondaryDegraded))
		return
	}

	start := time.Now()
	verdict, err := s.opinion.Opinion(c.Request.Context(), req.Filename, req.Content)
	s.metrics.observe(opinionKind, start, err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleRollups(c *gin.Context) {
	ctx := c.Request.Context()
	actor, _ := core.ActorFromContext(ctx)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, fmt.Errorf("%w: limit must be a non-negative integer", contract.ErrInvalidInput))
			return
		}
		limit = n
	}

	var store contract.RollupStore
	if s.mgr != nil {
		store = s.mgr.GetRollupStore()
	}
	if store == nil {
		c.JSON(http.StatusOK, []schema.RollupRecord{})
		return
	}
	records, err := store.ListRollups(ctx, actor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []schema.RollupRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, fmt.Errorf("%w: malformed request body: %v", contract.ErrInvalidInput, err))
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	code := contract.ErrorCode(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(code), errorBody{Error: err.Error(), Code: code})
}

func statusFor(code string) int {
	switch code {
	case contract.CodeInvalidInput:
		return http.StatusBadRequest
	case contract.CodeUnauthorized:
		return http.StatusUnauthorized
	case contract.CodeEmptyResult:
		return http.StatusNotFound
	case contract.CodeRateLimited, contract.CodeQuotaExhausted:
		return http.StatusTooManyRequests
	case contract.CodeUpstreamUnavailable:
		return http.StatusBadGateway
	case contract.CodeSecondaryDegraded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
