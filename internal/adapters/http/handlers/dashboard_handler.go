package handlers

import (
	"gcub-intake/internal/core/services"
	"gcub-intake/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles statistics and dashboard endpoints
type DashboardHandler struct {
	statsService *services.StatisticsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(statsService *services.StatisticsService) *DashboardHandler {
	return &DashboardHandler{
		statsService: statsService,
	}
}

// GetStatistics returns per-status application counts
// @Summary Application statistics
// @Description Per-status application counts for reporting
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Response
// @Router /applications/stats [get]
func (h *DashboardHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.statsService.GetStatistics(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}

// GetDashboard returns statistics plus recent applications
// @Summary Admin dashboard
// @Description Statistics plus the most recent applications
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.statsService.GetDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
