package api

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/fibertrack/internal/storage"
	"evalgo.org/fibertrack/internal/validation"
)

// validateEntity handles POST /api/v1/validate/:kind
// @Summary Dry-run the field rules of a collection
// @Description Parent existence and link uniqueness are not checked; nothing is written.
// @Tags validation
// @Accept json
// @Produce json
// @Param kind path string true "Collection"
// @Success 200 {object} validation.ValidationResult
// @Failure 422 {object} validation.ValidationResult
// @Router /api/v1/validate/{kind} [post]
func (s *Server) validateEntity(c echo.Context) error {
	kind, ok := storage.LookupKind(c.Param("kind"))
	if !ok {
		return BadRequestError("Invalid entity type", "unknown collection: "+c.Param("kind"))
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}

	rec := kind.New()
	if err := json.Unmarshal(body, rec); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, &validation.ValidationResult{
			Errors: []validation.ValidationError{{Field: "document", Message: err.Error()}},
		})
	}

	result := s.validator.ValidateStruct(rec)
	if result.Valid {
		return c.JSON(http.StatusOK, result)
	}

	return c.JSON(http.StatusUnprocessableEntity, result)
}
