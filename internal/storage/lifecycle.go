package storage

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"evalgo.org/fibertrack/models"
)

// Action names a lifecycle transition.
type Action string

const (
	ActionArchive   Action = "archive"
	ActionUnarchive Action = "unarchive"
	ActionDelete    Action = "delete"
	ActionRestore   Action = "restore"
)

// lifecycleRow is the (status, deleted_at) pair as stored.
type lifecycleRow struct {
	Status    models.Status
	DeletedAt sql.NullTime
}

func (r lifecycleRow) deleted() bool { return r.DeletedAt.Valid }

// transitionFunc decides the column updates for a row in a given state. A nil
// map with a nil error means the row is already in the target state.
type transitionFunc func(kind *Kind, id uint, row lifecycleRow) (map[string]interface{}, error)

// Archive sets status=archived. Archiving a soft-deleted row conflicts.
func (s *Storage) Archive(ctx context.Context, kind *Kind, id uint) (models.Entity, error) {
	return s.transition(ctx, kind, id, ActionArchive, func(kind *Kind, id uint, row lifecycleRow) (map[string]interface{}, error) {
		if row.deleted() {
			return nil, &ConflictError{Kind: kind.Label, ID: id, Reason: "is deleted"}
		}
		if row.Status == models.StatusArchived {
			return nil, nil
		}
		return map[string]interface{}{"status": models.StatusArchived}, nil
	})
}

// Unarchive sets status=active. Soft-deleted rows may be unarchived.
func (s *Storage) Unarchive(ctx context.Context, kind *Kind, id uint) (models.Entity, error) {
	return s.transition(ctx, kind, id, ActionUnarchive, func(_ *Kind, _ uint, row lifecycleRow) (map[string]interface{}, error) {
		if row.Status == models.StatusActive {
			return nil, nil
		}
		return map[string]interface{}{"status": models.StatusActive}, nil
	})
}

// Delete soft-deletes the row. Status is left as is and a second delete keeps
// the original timestamp.
func (s *Storage) Delete(ctx context.Context, kind *Kind, id uint) (models.Entity, error) {
	return s.transition(ctx, kind, id, ActionDelete, func(_ *Kind, _ uint, row lifecycleRow) (map[string]interface{}, error) {
		if row.deleted() {
			return nil, nil
		}
		return map[string]interface{}{"deleted_at": s.now()}, nil
	})
}

// Restore clears deleted_at. Restoring a row that is not deleted conflicts.
func (s *Storage) Restore(ctx context.Context, kind *Kind, id uint) (models.Entity, error) {
	return s.transition(ctx, kind, id, ActionRestore, func(kind *Kind, id uint, row lifecycleRow) (map[string]interface{}, error) {
		if !row.deleted() {
			return nil, &ConflictError{Kind: kind.Label, ID: id, Reason: "is not deleted"}
		}
		return map[string]interface{}{"deleted_at": nil}, nil
	})
}

// Apply dispatches a named transition.
func (s *Storage) Apply(ctx context.Context, kind *Kind, id uint, action Action) (models.Entity, error) {
	switch action {
	case ActionArchive:
		return s.Archive(ctx, kind, id)
	case ActionUnarchive:
		return s.Unarchive(ctx, kind, id)
	case ActionDelete:
		return s.Delete(ctx, kind, id)
	case ActionRestore:
		return s.Restore(ctx, kind, id)
	default:
		return nil, newValidationError("unknown action", map[string]string{"action": string(action)})
	}
}

func (s *Storage) transition(ctx context.Context, kind *Kind, id uint, action Action, fn transitionFunc) (models.Entity, error) {
	if !kind.Lifecycle {
		return nil, fmt.Errorf("%s: %w", kind.Name, ErrNoLifecycle)
	}

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row lifecycleRow
		err := tx.Table(kind.Table).
			Select("status", "deleted_at").
			Where("id = ?", id).
			Take(&row).Error
		if err != nil {
			if isRecordNotFound(err) {
				return &NotFoundError{Kind: kind.Label, ID: id}
			}
			return fmt.Errorf("failed to load %s %d: %w", kind.Label, id, err)
		}

		updates, err := fn(kind, id, row)
		if err != nil || updates == nil {
			return err
		}
		updates["updated_at"] = s.now()

		if err := tx.Table(kind.Table).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to %s %s %d: %w", action, kind.Label, id, err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("lifecycle transition", "kind", kind.Name, "id", id, "action", action, "changed", changed)
	return s.Get(ctx, kind, id)
}
