package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/fibertrack/internal/events"
	"evalgo.org/fibertrack/internal/storage"
)

var actionEvents = map[storage.Action]events.Type{
	storage.ActionArchive:   events.TypeArchived,
	storage.ActionUnarchive: events.TypeUnarchived,
	storage.ActionDelete:    events.TypeDeleted,
	storage.ActionRestore:   events.TypeRestored,
}

var actionMessages = map[storage.Action]string{
	storage.ActionArchive:   "archived",
	storage.ActionUnarchive: "unarchived",
	storage.ActionDelete:    "deleted",
	storage.ActionRestore:   "restored",
}

// transition handles PATCH /api/v1/{kind}/:id/{archive|unarchive|restore}
// and DELETE /api/v1/{kind}/:id
// @Summary Apply a lifecycle transition
// @Description archive needs a non-deleted entity; restore needs a deleted one (409 otherwise). DELETE soft-deletes.
// @Tags lifecycle
// @Produce json
// @Param kind path string true "Collection"
// @Param id path int true "Entity ID"
// @Success 200 {object} ItemResponse
// @Failure 404 {object} APIError
// @Failure 409 {object} APIError
// @Router /api/v1/{kind}/{id}/archive [patch]
// @Router /api/v1/{kind}/{id}/unarchive [patch]
// @Router /api/v1/{kind}/{id}/restore [patch]
// @Router /api/v1/{kind}/{id} [delete]
func (s *Server) transition(kind *storage.Kind, action storage.Action) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		rec, err := s.storage.Apply(c.Request().Context(), kind, id, action)
		if err != nil {
			return err
		}

		s.metrics.RecordTransition(kind.Name, string(action))
		s.publish(actionEvents[action], kind.Name, id, rec)

		return c.JSON(http.StatusOK, ItemResponse{
			Status:  statusSuccess,
			Data:    rec,
			Message: fmt.Sprintf("%s %s", kind.Label, actionMessages[action]),
		})
	}
}

// bulkAction handles POST /api/v1/{kind}/bulk
// @Summary Apply archive, delete or restore to a set of ids
// @Description Missing ids are skipped and reported. Bulk restore also sets status to active.
// @Tags lifecycle
// @Accept json
// @Produce json
// @Param kind path string true "Collection"
// @Param request body storage.BulkRequest true "Bulk request"
// @Success 200 {object} BulkResponse
// @Failure 422 {object} APIError
// @Router /api/v1/{kind}/bulk [post]
func (s *Server) bulkAction(kind *storage.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readBody(c)
		if err != nil {
			return err
		}

		var req storage.BulkRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return ValidationError("Invalid bulk request", map[string]string{"body": err.Error()})
		}

		res, err := s.storage.Bulk(c.Request().Context(), kind, req)
		if err != nil {
			return err
		}

		s.metrics.RecordBulk(kind.Name, string(req.Action), len(res.Processed), len(res.Skipped))
		s.publish(events.TypeBulk, kind.Name, 0, res)

		message := fmt.Sprintf("%d %s processed", len(res.Processed), kind.Name)
		if len(res.Skipped) > 0 {
			message += fmt.Sprintf(", %d skipped", len(res.Skipped))
		}

		return c.JSON(http.StatusOK, BulkResponse{
			Status:  statusSuccess,
			Data:    res,
			Message: message,
		})
	}
}
