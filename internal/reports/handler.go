package reports

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/profiles"
	"github.com/amk92987/wos-optimizer/internal/shared/server/middleware"
	"github.com/amk92987/wos-optimizer/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the reports service.
type Handler struct {
	Svc  *Service
	poll *pollLimiter
}

// NewHandler constructs a Handler with the default poll limit.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, poll: newPollLimiter(0, nil)}
}

// RegisterRoutes attaches report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/profiles/:id/reports", h.create)
	rg.GET("/reports", h.list)
	rg.GET("/reports/:id", h.get)
}

type createRequest struct {
	Focus string `json:"focus"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	report, err := h.Svc.Create(c.Request.Context(), userID, c.Param("id"), req.Focus)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create report", nil)
		}
		return
	}

	c.Set("profileId", report.ProfileID)
	c.Set("reportId", report.ID)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"reportId": report.ID,
		"status":   report.Status,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	reportID := c.Param("id")
	if reportID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "report id is required", nil)
		return
	}

	if !h.poll.Allow(userID, reportID) {
		c.Header("Retry-After", strconv.Itoa(h.poll.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "too_many_requests", "polling too fast, slow down", nil)
		return
	}

	report, err := h.Svc.Get(c.Request.Context(), userID, reportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "report not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch report", nil)
		}
		return
	}

	c.Set("profileId", report.ProfileID)
	c.Set("reportId", report.ID)
	resp := gin.H{
		"reportId":  report.ID,
		"profileId": report.ProfileID,
		"status":    report.Status,
		"createdAt": report.CreatedAt,
	}
	if report.Focus != "" {
		resp["focus"] = report.Focus
	}
	if report.Status == StatusCompleted && report.Result != nil {
		resp["result"] = report.Result
		resp["completedAt"] = report.CompletedAt
	}
	if report.Status == StatusFailed {
		resp["failureCode"] = report.FailureCode
		resp["failureReason"] = report.FailureReason
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) list(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

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
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list reports", nil)
		return
	}

	resp := make([]gin.H, 0, len(list))
	for _, report := range list {
		item := gin.H{
			"reportId":  report.ID,
			"profileId": report.ProfileID,
			"status":    report.Status,
			"createdAt": report.CreatedAt,
		}
		if report.Status == StatusCompleted && report.Result != nil {
			item["phase"] = report.Result.Phase
			if report.Result.Summary != "" {
				item["summary"] = report.Result.Summary
			}
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}
