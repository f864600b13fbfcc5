package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/fibertrack/internal/events"
	"evalgo.org/fibertrack/internal/storage"
)

// listEntities handles GET /api/v1/{kind}
// @Summary List entities of a kind
// @Description Filter by visibility (status), free text (filter, matched through the parent chain), sort (column|asc or column|dsc) and page.
// @Tags inventory
// @Produce json
// @Param kind path string true "Collection" Enums(locations, splitters, cables, tubes, cores, distribution-points, subscribers)
// @Param status query string false "Comma-separated visibility classes (active, archived, deleted)"
// @Param filter query string false "Free-text search"
// @Param sort query string false "column|direction"
// @Param page query int false "1-indexed page"
// @Param per_page query int false "Page size (default 15)"
// @Success 200 {object} ListResponse
// @Router /api/v1/{kind} [get]
func (s *Server) listEntities(kind *storage.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, err := s.storage.List(c.Request().Context(), kind, parseListParams(c))
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, ListResponse{
			Status: statusSuccess,
			Data:   page.Items,
			Meta:   page.Meta,
		})
	}
}

// getEntity handles GET /api/v1/{kind}/:id
// @Summary Get an entity, soft-deleted included
// @Tags inventory
// @Produce json
// @Param kind path string true "Collection"
// @Param id path int true "Entity ID"
// @Success 200 {object} ItemResponse
// @Failure 404 {object} APIError
// @Router /api/v1/{kind}/{id} [get]
func (s *Server) getEntity(kind *storage.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		rec, err := s.storage.Get(c.Request().Context(), kind, id)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, ItemResponse{Status: statusSuccess, Data: rec})
	}
}

// createEntity handles POST /api/v1/{kind}
// @Summary Create an entity
// @Description Status defaults to active.
// @Tags inventory
// @Accept json
// @Produce json
// @Param kind path string true "Collection"
// @Success 201 {object} ItemResponse
// @Failure 422 {object} APIError
// @Router /api/v1/{kind} [post]
func (s *Server) createEntity(kind *storage.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readBody(c)
		if err != nil {
			return err
		}

		rec, err := s.storage.Create(c.Request().Context(), kind, body)
		if err != nil {
			return err
		}

		s.publish(events.TypeCreated, kind.Name, rec.GetID(), rec)

		return c.JSON(http.StatusCreated, ItemResponse{
			Status:  statusSuccess,
			Data:    rec,
			Message: fmt.Sprintf("%s created", kind.Label),
		})
	}
}

// updateEntity handles PUT and PATCH /api/v1/{kind}/:id
// @Summary Partially update an entity
// @Description Only fields present in the body change. Soft-deleted entities are editable.
// @Tags inventory
// @Accept json
// @Produce json
// @Param kind path string true "Collection"
// @Param id path int true "Entity ID"
// @Success 200 {object} ItemResponse
// @Failure 404 {object} APIError
// @Failure 422 {object} APIError
// @Router /api/v1/{kind}/{id} [put]
func (s *Server) updateEntity(kind *storage.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		body, err := readBody(c)
		if err != nil {
			return err
		}

		rec, err := s.storage.Update(c.Request().Context(), kind, id, body)
		if err != nil {
			return err
		}

		s.publish(events.TypeUpdated, kind.Name, id, rec)

		return c.JSON(http.StatusOK, ItemResponse{
			Status:  statusSuccess,
			Data:    rec,
			Message: fmt.Sprintf("%s updated", kind.Label),
		})
	}
}

// getChildren handles GET /api/v1/{kind}/:id/children
// @Summary List the immediate non-deleted children of an entity
// @Tags inventory
// @Produce json
// @Param kind path string true "Collection"
// @Param id path int true "Entity ID"
// @Success 200 {object} ChildrenResponse
// @Failure 404 {object} APIError
// @Router /api/v1/{kind}/{id}/children [get]
func (s *Server) getChildren(kind *storage.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		children, err := s.storage.Children(c.Request().Context(), kind, id)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, ChildrenResponse{Status: statusSuccess, Data: children})
	}
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, BadRequestError("Invalid request body", err.Error())
	}
	return body, nil
}
