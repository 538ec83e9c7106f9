// Package recommend exposes the decision engine over HTTP: the merged
// recommendation feed, the power plan, per-mode lineups, the ask endpoint,
// and the classifier probe.
package recommend

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/advisor"
	"github.com/amk92987/wos-optimizer/internal/classify"
	"github.com/amk92987/wos-optimizer/internal/profiles"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/shared/server/middleware"
	"github.com/amk92987/wos-optimizer/internal/shared/server/respond"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
	"github.com/amk92987/wos-optimizer/internal/usage"
)

const (
	defaultFeedLimit = 10
	maxFeedLimit     = 50
	maxQuestionLen   = 500
)

// Handler serves the engine endpoints. Every route resolves the profile
// snapshot first, so foreign profiles read as not found before any engine
// work runs.
type Handler struct {
	Profiles *profiles.Service
	Advisor  *advisor.Advisor
	Usage    *usage.Service
	Tables   *refdata.Tables
}

// NewHandler constructs a Handler.
func NewHandler(profSvc *profiles.Service, adv *advisor.Advisor, usageSvc *usage.Service, tables *refdata.Tables) *Handler {
	return &Handler{Profiles: profSvc, Advisor: adv, Usage: usageSvc, Tables: tables}
}

// RegisterRoutes attaches engine routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profiles/:id/recommendations", h.recommendations)
	rg.GET("/profiles/:id/power", h.power)
	rg.GET("/profiles/:id/lineup/:mode", h.lineup)
	rg.POST("/profiles/:id/ask", h.ask)
	rg.POST("/classify", h.classify)
}

func (h *Handler) recommendations(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	snap, ok := h.snapshotOr404(c, userID, c.Param("id"))
	if !ok {
		return
	}

	recs, err := h.Advisor.GetRecommendations(c.Request.Context(), snap, feedLimit(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "engine_error", "failed to compute recommendations", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"phase":           h.Advisor.Phase(snap).Name,
		"recommendations": recs,
	})
}

func (h *Handler) power(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	snap, ok := h.snapshotOr404(c, userID, c.Param("id"))
	if !ok {
		return
	}

	plan, err := h.Advisor.GetPowerRecommendations(c.Request.Context(), snap, feedLimit(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "engine_error", "failed to compute power plan", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"powerPlan": plan})
}

func (h *Handler) lineup(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	snap, ok := h.snapshotOr404(c, userID, c.Param("id"))
	if !ok {
		return
	}

	built, err := h.Advisor.GetLineup(c.Request.Context(), c.Param("mode"), snap)
	if err != nil {
		switch {
		case errors.Is(err, refdata.ErrUnknownMode):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "engine_error", "failed to build lineup", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, built)
}

type askRequest struct {
	Question string `json:"question"`
	ForceAI  bool   `json:"forceAi"`
}

func (h *Handler) ask(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
		return
	}
	if len(req.Question) > maxQuestionLen {
		respond.Error(c, http.StatusBadRequest, "validation_error", "question is too long", nil)
		return
	}

	profile, err := h.Profiles.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondProfileError(c, err)
		return
	}
	c.Set("profileId", profile.ID)
	snap, err := h.Profiles.SnapshotFor(c.Request.Context(), userID, profile.ID)
	if err != nil {
		h.respondProfileError(c, err)
		return
	}

	// Only questions routed at the model consume quota; pure rule answers
	// stay free.
	cls := h.Advisor.Classify(req.Question)
	aiRoute := req.ForceAI || cls.Intent != classify.IntentRules
	if aiRoute && h.Usage != nil {
		quota := h.Tables.Spending[profile.SpendingTier].DailyAskQuota
		used, err := h.Usage.Consume(c.Request.Context(), userID, quota)
		if err != nil {
			if errors.Is(err, usage.ErrLimitReached) {
				respond.Error(c, http.StatusTooManyRequests, "quota_exceeded",
					"You have used all your AI questions for today.",
					[]map[string]string{{"resetsAt": used.ResetsAt.Format(time.RFC3339)}})
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to check usage", nil)
			return
		}
	}

	answer := h.Advisor.Ask(c.Request.Context(), snap, advisor.AskRequest{
		Question:  req.Question,
		ForceAI:   req.ForceAI,
		CallerKey: userID,
	})

	respond.JSON(c, http.StatusOK, answer)
}

type classifyRequest struct {
	Question string `json:"question"`
}

func (h *Handler) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
		return
	}

	respond.JSON(c, http.StatusOK, h.Advisor.Classify(req.Question))
}

// snapshotOr404 loads the normalized snapshot or writes the error response.
func (h *Handler) snapshotOr404(c *gin.Context, userID, profileID string) (snapshot.Snapshot, bool) {
	snap, err := h.Profiles.SnapshotFor(c.Request.Context(), userID, profileID)
	if err != nil {
		h.respondProfileError(c, err)
		return snapshot.Snapshot{}, false
	}
	c.Set("profileId", profileID)
	return snap, true
}

func (h *Handler) respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profiles.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
	}
}

func feedLimit(c *gin.Context) int {
	limit := defaultFeedLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	return limit
}
