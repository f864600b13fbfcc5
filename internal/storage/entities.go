package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evalgo.org/fibertrack/models"
)

// unscopedPreload loads parent summaries even when the parent is soft-deleted.
func unscopedPreload(tx *gorm.DB) *gorm.DB {
	return tx.Unscoped()
}

func (s *Storage) withPreloads(tx *gorm.DB, kind *Kind) *gorm.DB {
	for _, p := range kind.Preloads {
		tx = tx.Preload(p, unscopedPreload)
	}
	return tx
}

// Get retrieves a single entity by id. Soft-deleted rows are included.
func (s *Storage) Get(ctx context.Context, kind *Kind, id uint) (models.Entity, error) {
	rec := kind.New()
	tx := s.withPreloads(s.db.WithContext(ctx).Unscoped(), kind)
	if err := tx.First(rec, id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, &NotFoundError{Kind: kind.Label, ID: id}
		}
		return nil, fmt.Errorf("failed to get %s %d: %w", kind.Label, id, err)
	}
	return rec, nil
}

// Create decodes payload into a new entity of kind, validates it and inserts
// it. Status defaults to active; id, timestamps and deleted_at are ignored.
func (s *Storage) Create(ctx context.Context, kind *Kind, payload []byte) (models.Entity, error) {
	rec := kind.New()
	if err := decodePayload(payload, rec); err != nil {
		return nil, err
	}
	resetProtected(rec, 0, time.Time{}, nil)
	if lc, ok := rec.(models.Lifecycled); ok && lc.LifecycleState().Status == "" {
		lc.LifecycleState().Status = models.StatusActive
	}

	err := s.write(ctx, kind, linkKeys(kind, rec),
		func(*gorm.DB) (models.Entity, error) { return rec, nil },
		func(tx *gorm.DB, rec models.Entity) error {
			return tx.Omit(clause.Associations).Create(rec).Error
		})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("entity created", "kind", kind.Name, "id", rec.GetID())
	return s.Get(ctx, kind, rec.GetID())
}

// Update applies the fields present in payload to an existing entity,
// soft-deleted rows included. Absent fields keep their stored values.
//
// The row is loaded with a row lock inside the write transaction, and
// deleted_at is never written back, so a concurrent lifecycle transition
// is never undone. Status is only written when the payload sets it.
func (s *Storage) Update(ctx context.Context, kind *Kind, id uint, payload []byte) (models.Entity, error) {
	// The scratch decode only names the links the payload claims.
	claims := kind.New()
	if err := decodePayload(payload, claims); err != nil {
		return nil, err
	}

	omit := []string{clause.Associations, "created_at"}
	if kind.Lifecycle {
		omit = append(omit, "deleted_at")
		if !payloadHas(payload, "status") {
			omit = append(omit, "status")
		}
	}

	err := s.write(ctx, kind, linkKeys(kind, claims),
		func(tx *gorm.DB) (models.Entity, error) {
			rec := kind.New()
			err := tx.Unscoped().
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(rec, id).Error
			if err != nil {
				if isRecordNotFound(err) {
					return nil, &NotFoundError{Kind: kind.Label, ID: id}
				}
				return nil, fmt.Errorf("failed to load %s %d: %w", kind.Label, id, err)
			}
			if s.afterLoad != nil {
				if err := s.afterLoad(tx); err != nil {
					return nil, err
				}
			}

			createdAt := createdAtOf(rec)
			var prev *models.Lifecycle
			if lc, ok := rec.(models.Lifecycled); ok {
				snapshot := *lc.LifecycleState()
				prev = &snapshot
			}
			if err := decodePayload(payload, rec); err != nil {
				return nil, err
			}
			resetProtected(rec, id, createdAt, prev)
			return rec, nil
		},
		func(tx *gorm.DB, rec models.Entity) error {
			return tx.Unscoped().Omit(omit...).Save(rec).Error
		})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("entity updated", "kind", kind.Name, "id", id)
	return s.Get(ctx, kind, id)
}

// write runs inside one transaction, under the link locks the record is
// about to claim: build the record, validate it, check references and link
// uniqueness, then persist.
func (s *Storage) write(
	ctx context.Context,
	kind *Kind,
	keys []string,
	build func(tx *gorm.DB) (models.Entity, error),
	persist func(tx *gorm.DB, rec models.Entity) error,
) error {
	release := s.links.lockAll(keys)
	defer release()

	var rec models.Entity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if rec, err = build(tx); err != nil {
			return err
		}
		if result := s.validator.ValidateStruct(rec); !result.Valid {
			return newValidationError("validation failed", result.Fields())
		}
		if err := checkReferences(tx, rec); err != nil {
			return err
		}
		if err := checkUniqueLinks(tx, kind, rec); err != nil {
			return err
		}
		return persist(tx, rec)
	})
	if err == nil {
		return nil
	}

	if rec != nil {
		err = translateWriteError(kind, rec, err)
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to save %s: %w", kind.Label, err)
}

// Children returns the non-deleted rows of every kind that references the
// given entity, keyed by child kind name.
func (s *Storage) Children(ctx context.Context, kind *Kind, id uint) (map[string][]models.Entity, error) {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return nil, err
	}

	out := make(map[string][]models.Entity, len(kind.Children))
	for _, ref := range kind.Children {
		child := MustKind(ref.Kind)
		tx := s.db.WithContext(ctx).
			Where(child.column(ref.Column)+" = ?", id).
			Order(child.column("id"))
		rows, err := child.find(tx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s of %s %d: %w", child.Name, kind.Label, id, err)
		}
		out[child.Name] = rows
	}
	return out, nil
}

// payloadHas reports whether the JSON object in payload sets field.
func payloadHas(payload []byte, field string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return false
	}
	_, ok := fields[field]
	return ok
}

func decodePayload(payload []byte, rec models.Entity) error {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return newValidationError("request body is required", nil)
	}
	if err := json.Unmarshal(payload, rec); err != nil {
		return newValidationError("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}

// resetProtected puts back the fields a payload may never write.
func resetProtected(rec models.Entity, id uint, createdAt time.Time, prev *models.Lifecycle) {
	switch r := rec.(type) {
	case *models.Location:
		r.ID, r.CreatedAt = id, createdAt
	case *models.SplitterNode:
		r.ID, r.CreatedAt, r.Location = id, createdAt, nil
	case *models.Cable:
		r.ID, r.CreatedAt, r.Splitter = id, createdAt, nil
	case *models.Tube:
		r.ID, r.CreatedAt, r.Cable = id, createdAt, nil
	case *models.Core:
		r.ID, r.CreatedAt, r.Tube = id, createdAt, nil
	case *models.DistributionPoint:
		r.ID, r.CreatedAt, r.Core, r.Location = id, createdAt, nil, nil
	case *models.Subscriber:
		r.ID, r.CreatedAt, r.DistributionPoint, r.Location = id, createdAt, nil, nil
	}

	lc, ok := rec.(models.Lifecycled)
	if !ok {
		return
	}
	state := lc.LifecycleState()
	if prev == nil {
		state.DeletedAt = gorm.DeletedAt{}
		return
	}
	state.DeletedAt = prev.DeletedAt
	if state.Status == "" {
		state.Status = prev.Status
	}
}

func createdAtOf(rec models.Entity) time.Time {
	switch r := rec.(type) {
	case *models.Location:
		return r.CreatedAt
	case *models.SplitterNode:
		return r.CreatedAt
	case *models.Cable:
		return r.CreatedAt
	case *models.Tube:
		return r.CreatedAt
	case *models.Core:
		return r.CreatedAt
	case *models.DistributionPoint:
		return r.CreatedAt
	case *models.Subscriber:
		return r.CreatedAt
	}
	return time.Time{}
}
