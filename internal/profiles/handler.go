package profiles

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/shared/server/middleware"
	"github.com/amk92987/wos-optimizer/internal/shared/server/respond"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/profiles", h.create)
	rg.GET("/profiles", h.list)
	rg.GET("/profiles/:id", h.get)
	rg.PUT("/profiles/:id/state", h.updateState)
	rg.PUT("/profiles/:id/spending", h.updateSpending)
}

type createRequest struct {
	Name         string            `json:"name"`
	SpendingTier string            `json:"spendingTier"`
	State        snapshot.Snapshot `json:"state"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	p, err := h.Svc.Create(c.Request.Context(), userID, req.Name, snapshot.SpendingTier(req.SpendingTier), req.State)
	if err != nil {
		h.respondServiceError(c, err, "failed to create profile")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.respondServiceError(c, err, "failed to list profiles")
		return
	}

	resp := make([]gin.H, 0, len(list))
	for _, p := range list {
		resp = append(resp, gin.H{
			"profileId":    p.ID,
			"name":         p.Name,
			"spendingTier": p.SpendingTier,
			"furnaceLevel": p.State.Progression.FurnaceLevel,
			"updatedAt":    p.UpdatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	p, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "failed to fetch profile")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(p))
}

type updateStateRequest struct {
	State snapshot.Snapshot `json:"state"`
}

func (h *Handler) updateState(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	p, err := h.Svc.UpdateState(c.Request.Context(), userID, c.Param("id"), req.State)
	if err != nil {
		h.respondServiceError(c, err, "failed to update state")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(p))
}

type updateSpendingRequest struct {
	SpendingTier string `json:"spendingTier"`
}

func (h *Handler) updateSpending(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	p, err := h.Svc.UpdateSpendingTier(c.Request.Context(), userID, c.Param("id"), snapshot.SpendingTier(req.SpendingTier))
	if err != nil {
		h.respondServiceError(c, err, "failed to update spending tier")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(p))
}

func (h *Handler) respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
