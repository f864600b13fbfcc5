package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"evalgo.org/fibertrack/models"
)

// BulkRequest applies one lifecycle action to a set of ids.
type BulkRequest struct {
	Action Action `json:"action" validate:"required,oneof=archive delete restore"`
	IDs    []uint `json:"ids" validate:"required,min=1,unique,dive,gt=0"`
}

// BulkResult reports which ids existed and were processed and which were
// skipped because they do not exist.
type BulkResult struct {
	Action    Action `json:"action"`
	Processed []uint `json:"processed"`
	Skipped   []uint `json:"skipped"`
}

// Bulk applies req.Action to every existing id in a single transaction.
// Missing ids are skipped and never abort the batch.
//
//   - archive: status=archived on every existing id, soft-deleted included
//   - delete: deleted_at=now on existing ids not yet deleted
//   - restore: deleted_at cleared on deleted ids, then status=active on all
func (s *Storage) Bulk(ctx context.Context, kind *Kind, req BulkRequest) (*BulkResult, error) {
	if !kind.Lifecycle {
		return nil, fmt.Errorf("%s: %w", kind.Name, ErrNoLifecycle)
	}
	if result := s.validator.ValidateStruct(req); !result.Valid {
		return nil, newValidationError("invalid bulk request", result.Fields())
	}

	res := &BulkResult{Action: req.Action, Processed: []uint{}, Skipped: []uint{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint
		if err := tx.Table(kind.Table).Where("id IN ?", req.IDs).Pluck("id", &existing).Error; err != nil {
			return fmt.Errorf("failed to resolve %s ids: %w", kind.Name, err)
		}

		found := make(map[uint]bool, len(existing))
		for _, id := range existing {
			found[id] = true
		}
		for _, id := range req.IDs {
			if found[id] {
				res.Processed = append(res.Processed, id)
			} else {
				res.Skipped = append(res.Skipped, id)
			}
		}
		if len(res.Processed) == 0 {
			return nil
		}

		now := s.now()
		scope := func() *gorm.DB {
			return tx.Table(kind.Table).Where("id IN ?", res.Processed)
		}

		switch req.Action {
		case ActionArchive:
			return scope().Updates(map[string]interface{}{
				"status":     models.StatusArchived,
				"updated_at": now,
			}).Error
		case ActionDelete:
			return scope().Where("deleted_at IS NULL").Updates(map[string]interface{}{
				"deleted_at": now,
				"updated_at": now,
			}).Error
		case ActionRestore:
			err := scope().Where("deleted_at IS NOT NULL").Updates(map[string]interface{}{
				"deleted_at": nil,
				"updated_at": now,
			}).Error
			if err != nil {
				return err
			}
			return scope().Updates(map[string]interface{}{
				"status":     models.StatusActive,
				"updated_at": now,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk %s on %s failed: %w", req.Action, kind.Name, err)
	}

	s.logger.Info("bulk action applied",
		"kind", kind.Name,
		"action", req.Action,
		"processed", len(res.Processed),
		"skipped", len(res.Skipped),
	)
	return res, nil
}
