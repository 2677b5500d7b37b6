package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/terraops/earthworks-dispatch/internal/http/middleware"
	"github.com/terraops/earthworks-dispatch/internal/model"
	"github.com/terraops/earthworks-dispatch/internal/service"
)

type Handler struct {
	sites     *service.SiteService
	haulers   *service.HaulerService
	matches   *service.MatchService
	schedules *service.ScheduleService
	analytics *service.AnalyticsService
	assistant Assistant
	log       zerolog.Logger
}

type Assistant interface {
	Respond(message string) string
}

func NewHandler(
	sites *service.SiteService,
	haulers *service.HaulerService,
	matches *service.MatchService,
	schedules *service.ScheduleService,
	analytics *service.AnalyticsService,
	assistant Assistant,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		sites:     sites,
		haulers:   haulers,
		matches:   matches,
		schedules: schedules,
		analytics: analytics,
		assistant: assistant,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/sites", h.createSite)
	protected.GET("/sites", h.listSites)
	protected.GET("/sites/:id", h.getSite)
	protected.PATCH("/sites/:id", h.updateSite)
	protected.DELETE("/sites/:id", h.deleteSite)

	protected.POST("/haulers", h.createHauler)
	protected.GET("/haulers", h.listHaulers)
	protected.PATCH("/haulers/:id", h.updateHauler)

	protected.POST("/matches/generate", h.generateMatches)
	protected.GET("/matches", h.listMatches)
	protected.POST("/matches/:id/approve", h.approveMatch)
	protected.POST("/matches/:id/reject", h.rejectMatch)

	protected.POST("/schedules/generate", h.generateSchedules)
	protected.GET("/schedules", h.listSchedules)
	protected.PATCH("/schedules/:id", h.rescheduleSchedule)
	protected.GET("/schedules/export", h.exportSchedules)
	protected.GET("/schedules/export/csv", h.exportSchedulesCSV)
	protected.GET("/schedules/:id/manifest", h.scheduleManifest)

	protected.GET("/analytics/summary", h.analyticsSummary)
	protected.POST("/assistant/messages", h.assistantMessage)
}

type siteRequest struct {
	Name         string   `json:"name" binding:"required"`
	Type         string   `json:"type" binding:"required"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	SoilType     string   `json:"soil_type"`
	Contaminated bool     `json:"contaminated"`
	VolumeCuYd   float64  `json:"volume_cu_yd" binding:"required"`
	WindowStart  string   `json:"window_start" binding:"required"`
	WindowEnd    string   `json:"window_end" binding:"required"`
}

func (r siteRequest) toInput() service.SiteInput {
	return service.SiteInput{
		Name:         r.Name,
		Type:         model.SiteType(r.Type),
		Lat:          r.Lat,
		Lng:          r.Lng,
		SoilType:     r.SoilType,
		Contaminated: r.Contaminated,
		VolumeCuYd:   r.VolumeCuYd,
		WindowStart:  r.WindowStart,
		WindowEnd:    r.WindowEnd,
	}
}

type siteResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	SoilType     string    `json:"soil_type"`
	Contaminated bool      `json:"contaminated"`
	VolumeCuYd   float64   `json:"volume_cu_yd"`
	WindowStart  string    `json:"window_start"`
	WindowEnd    string    `json:"window_end"`
	Status       string    `json:"status"`
}

func toSiteResponse(site model.Site) siteResponse {
	resp := siteResponse{
		ID:           site.ID,
		Name:         site.Name,
		Type:         string(site.Type),
		SoilType:     site.SoilType,
		Contaminated: site.Contaminated,
		VolumeCuYd:   site.VolumeCuYd,
		WindowStart:  formatDate(site.WindowStart),
		WindowEnd:    formatDate(site.WindowEnd),
		Status:       string(site.Status),
	}
	if site.Coordinates != nil {
		lat, lng := (*site.Coordinates)[1], (*site.Coordinates)[0]
		resp.Lat, resp.Lng = &lat, &lng
	}
	return resp
}

func (h *Handler) createSite(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	site, err := h.sites.Create(c.Request.Context(), principal, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSiteResponse(*site))
}

func (h *Handler) listSites(c *gin.Context) {
	sites, err := h.sites.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]siteResponse, 0, len(sites))
	for _, site := range sites {
		resp = append(resp, toSiteResponse(site))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getSite(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	site, err := h.sites.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSiteResponse(*site))
}

func (h *Handler) updateSite(c *gin.Context) {
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
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	site, err := h.sites.Update(c.Request.Context(), principal, id, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSiteResponse(*site))
}

func (h *Handler) deleteSite(c *gin.Context) {
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
	if err := h.sites.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type haulerRequest struct {
	Name             string  `json:"name" binding:"required"`
	ReliabilityScore float64 `json:"reliability_score"`
	TrucksAvailable  int     `json:"trucks_available"`
	CostPerMile      float64 `json:"cost_per_mile"`
	Status           string  `json:"status"`
}

type haulerResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ReliabilityScore float64   `json:"reliability_score"`
	TrucksAvailable  int       `json:"trucks_available"`
	CostPerMile      float64   `json:"cost_per_mile"`
	Status           string    `json:"status"`
}

func toHaulerResponse(hauler model.Hauler) haulerResponse {
	return haulerResponse{
		ID:               hauler.ID,
		Name:             hauler.Name,
		ReliabilityScore: hauler.ReliabilityScore,
		TrucksAvailable:  hauler.TrucksAvailable,
		CostPerMile:      hauler.CostPerMile,
		Status:           string(hauler.Status),
	}
}

func (h *Handler) createHauler(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	var req haulerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hauler, err := h.haulers.Create(c.Request.Context(), principal, service.HaulerInput{
		Name:             req.Name,
		ReliabilityScore: req.ReliabilityScore,
		TrucksAvailable:  req.TrucksAvailable,
		CostPerMile:      req.CostPerMile,
		Status:           model.HaulerStatus(req.Status),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHaulerResponse(*hauler))
}

func (h *Handler) listHaulers(c *gin.Context) {
	haulers, err := h.haulers.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]haulerResponse, 0, len(haulers))
	for _, hauler := range haulers {
		resp = append(resp, toHaulerResponse(hauler))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) updateHauler(c *gin.Context) {
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
	var req haulerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hauler, err := h.haulers.Update(c.Request.Context(), principal, id, service.HaulerInput{
		Name:             req.Name,
		ReliabilityScore: req.ReliabilityScore,
		TrucksAvailable:  req.TrucksAvailable,
		CostPerMile:      req.CostPerMile,
		Status:           model.HaulerStatus(req.Status),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHaulerResponse(*hauler))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNothingToGenerate):
		c.JSON(http.StatusOK, gin.H{"schedules": []any{}, "notice": "no approved matches to schedule"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
