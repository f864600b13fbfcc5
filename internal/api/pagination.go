package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"evalgo.org/fibertrack/internal/storage"
)

// parseListParams reads page, per_page, filter, sort and status. Malformed
// numbers fall through as zero and take the storage defaults.
func parseListParams(c echo.Context) storage.ListParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	return storage.ListParams{
		Status:  c.QueryParam("status"),
		Filter:  c.QueryParam("filter"),
		Sort:    c.QueryParam("sort"),
		Page:    page,
		PerPage: perPage,
	}
}

// parseID reads the :id path parameter. ValidateIDFormat has already
// rejected anything that is not a positive integer.
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, BadRequestError("Invalid ID format", "ID must be a positive integer")
	}
	return uint(id), nil
}

// parseReportFilter reads location_id and exclude_archived.
func parseReportFilter(c echo.Context) (storage.ReportFilter, error) {
	var filter storage.ReportFilter
	if raw := c.QueryParam("location_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, BadRequestError("Invalid location_id", "location_id must be a positive integer")
		}
		filter.LocationID = uint(id)
	}
	if raw := c.QueryParam("exclude_archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, BadRequestError("Invalid exclude_archived", "exclude_archived must be a boolean")
		}
		filter.ExcludeArchived = v
	}
	return filter, nil
}
