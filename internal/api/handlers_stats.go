package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// getStatistics handles GET /api/v1/stats
// @Summary Inventory counts and utilization ratios
// @Tags reporting
// @Produce json
// @Param location_id query int false "Limit to one location"
// @Param exclude_archived query bool false "Leave archived rows out"
// @Success 200 {object} StatsResponse
// @Router /api/v1/stats [get]
func (s *Server) getStatistics(c echo.Context) error {
	filter, err := parseReportFilter(c)
	if err != nil {
		return err
	}

	stats, err := s.storage.Stats(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, StatsResponse{Status: statusSuccess, Data: stats})
}

// getHierarchy handles GET /api/v1/hierarchy
// @Summary Full containment tree with per-location rollups
// @Tags reporting
// @Produce json
// @Param location_id query int false "Limit to one location"
// @Param exclude_archived query bool false "Leave archived rows out"
// @Success 200 {object} HierarchyResponse
// @Router /api/v1/hierarchy [get]
func (s *Server) getHierarchy(c echo.Context) error {
	filter, err := parseReportFilter(c)
	if err != nil {
		return err
	}

	tree, err := s.storage.Hierarchy(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, HierarchyResponse{Status: statusSuccess, Data: tree})
}

// getDatabaseInfo handles GET /api/v1/info
func (s *Server) getDatabaseInfo(c echo.Context) error {
	info, err := s.storage.GetDatabaseInfo(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}
