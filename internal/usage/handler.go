package usage

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/profiles"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/shared/server/middleware"
	"github.com/amk92987/wos-optimizer/internal/shared/server/respond"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// Handler exposes usage endpoints.
type Handler struct {
	Svc      *Service
	Profiles *profiles.Service
	Tables   *refdata.Tables
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, profilesSvc *profiles.Service, tables *refdata.Tables) *Handler {
	return &Handler{Svc: svc, Profiles: profilesSvc, Tables: tables}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.get)
}

// RegisterDevRoutes attaches dev-only usage routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.reset)
}

// get reports today's AI question consumption. The limit follows the
// spending tier of the profile named by ?profileId, defaulting to the
// free-to-play policy.
func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	u, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch usage", nil)
		return
	}

	tier := snapshot.TierF2P
	if profileID := c.Query("profileId"); profileID != "" {
		p, err := h.Profiles.Get(c.Request.Context(), userID, profileID)
		if err != nil {
			if errors.Is(err, profiles.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
			return
		}
		tier = p.SpendingTier
	}

	limit := h.Tables.Spending[tier].DailyAskQuota
	remaining := limit - u.Used
	if remaining < 0 {
		remaining = 0
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"day":       u.Day,
		"used":      u.Used,
		"limit":     limit,
		"remaining": remaining,
		"resetsAt":  u.ResetsAt,
	})
}

func (h *Handler) reset(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	u, err := h.Svc.Reset(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset usage", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"day":      u.Day,
		"used":     u.Used,
		"resetsAt": u.ResetsAt,
	})
}
