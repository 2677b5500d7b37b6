package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/terraops/earthworks-dispatch/internal/http/middleware"
	"github.com/terraops/earthworks-dispatch/internal/model"
	"github.com/terraops/earthworks-dispatch/internal/service"
)

type matchResponse struct {
	ID                uuid.UUID `json:"id"`
	ExportSiteID      uuid.UUID `json:"export_site_id"`
	ImportSiteID      uuid.UUID `json:"import_site_id"`
	Score             float64   `json:"score"`
	DistanceMiles     float64   `json:"distance_miles"`
	CostSavings       float64   `json:"cost_savings"`
	CarbonReductionKg float64   `json:"carbon_reduction_kg"`
	Status            string    `json:"status"`
}

func toMatchResponse(m model.Match) matchResponse {
	return matchResponse{
		ID:                m.ID,
		ExportSiteID:      m.ExportSiteID,
		ImportSiteID:      m.ImportSiteID,
		Score:             m.Score,
		DistanceMiles:     m.DistanceMiles,
		CostSavings:       m.CostSavings,
		CarbonReductionKg: m.CarbonReductionKg,
		Status:            string(m.Status),
	}
}

func toMatchResponses(matches []model.Match) []matchResponse {
	resp := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		resp = append(resp, toMatchResponse(m))
	}
	return resp
}

type scheduleResponse struct {
	ID              uuid.UUID     `json:"id"`
	MatchID         uuid.UUID     `json:"match_id"`
	HaulerID        *uuid.UUID    `json:"hauler_id"`
	Date            string        `json:"date"`
	StartTime       string        `json:"start_time"`
	EndTime         string        `json:"end_time"`
	VolumeCuYd      float64       `json:"volume_cu_yd"`
	TrucksNeeded    int           `json:"trucks_needed"`
	Route           model.Route   `json:"route"`
	Status          string        `json:"status"`
	Alerts          []model.Alert `json:"alerts"`
	IsAIGenerated   bool          `json:"is_ai_generated"`
	WeatherDelayPct int           `json:"weather_delay_pct"`
}

func toScheduleResponse(s model.Schedule) scheduleResponse {
	alerts := s.Alerts
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return scheduleResponse{
		ID:              s.ID,
		MatchID:         s.MatchID,
		HaulerID:        s.HaulerID,
		Date:            formatDate(s.Date),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		VolumeCuYd:      s.VolumeCuYd,
		TrucksNeeded:    s.TrucksNeeded,
		Route:           s.Route,
		Status:          string(s.Status),
		Alerts:          alerts,
		IsAIGenerated:   s.IsAIGenerated,
		WeatherDelayPct: s.WeatherDelayPct,
	}
}

func toScheduleResponses(schedules []model.Schedule) []scheduleResponse {
	resp := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		resp = append(resp, toScheduleResponse(s))
	}
	return resp
}

func (h *Handler) generateMatches(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	matches, err := h.matches.Generate(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": toMatchResponses(matches)})
}

func (h *Handler) listMatches(c *gin.Context) {
	var status *model.MatchStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed := model.MatchStatus(raw)
		switch parsed {
		case model.MatchStatusSuggested, model.MatchStatusApproved, model.MatchStatusRejected:
			status = &parsed
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	matches, err := h.matches.List(c.Request.Context(), status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMatchResponses(matches))
}

func (h *Handler) approveMatch(c *gin.Context) {
	h.transitionMatch(c, h.matches.Approve)
}

func (h *Handler) rejectMatch(c *gin.Context) {
	h.transitionMatch(c, h.matches.Reject)
}

func (h *Handler) transitionMatch(c *gin.Context, fn func(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Match, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	match, err := fn(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMatchResponse(*match))
}

func (h *Handler) generateSchedules(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	schedules, err := h.schedules.Generate(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": toScheduleResponses(schedules)})
}

func (h *Handler) listSchedules(c *gin.Context) {
	schedules, err := h.schedules.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponses(schedules))
}

type rescheduleRequest struct {
	Date      string  `json:"date" binding:"required"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	HaulerID  *string `json:"hauler_id"`
}

func (h *Handler) rescheduleSchedule(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input := service.RescheduleInput{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.HaulerID != nil {
		haulerID, err := uuid.Parse(strings.TrimSpace(*req.HaulerID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hauler_id"})
			return
		}
		input.HaulerID = &haulerID
	}
	schedule, err := h.schedules.Reschedule(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponse(*schedule))
}

func (h *Handler) exportSchedules(c *gin.Context) {
	result, err := h.schedules.ExportWorkbook(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.writeFile(c, result)
}

func (h *Handler) exportSchedulesCSV(c *gin.Context) {
	result, err := h.schedules.ExportCSV(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.writeFile(c, result)
}

func (h *Handler) scheduleManifest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	result, err := h.schedules.Manifest(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.writeFile(c, result)
}

func (h *Handler) writeFile(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Type", result.ContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) analyticsSummary(c *gin.Context) {
	summary, err := h.analytics.Summarize(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type assistantRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) assistantMessage(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": h.assistant.Respond(req.Message)})
}
