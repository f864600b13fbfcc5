package storage

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"

	"evalgo.org/fibertrack/models"
)

// keyedMutex serializes writers that target the same link key. Entries are
// reference counted and removed once the last holder releases.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// lockAll acquires every key in sorted order and returns a release func.
func (k *keyedMutex) lockAll(keys []string) func() {
	sort.Strings(keys)
	releases := make([]func(), 0, len(keys))
	for i, key := range keys {
		if i > 0 && keys[i-1] == key {
			continue
		}
		releases = append(releases, k.lock(key))
	}
	return func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
}

// linkKeys names the unique link targets a record is about to claim.
func linkKeys(kind *Kind, rec models.Entity) []string {
	var keys []string
	for _, ref := range rec.References() {
		if ref.Unique && ref.ID != 0 {
			keys = append(keys, fmt.Sprintf("%s.%s:%d", kind.Table, ref.Field, ref.ID))
		}
	}
	return keys
}

// checkUniqueLinks rejects a write when another row of the same kind already
// references one of rec's unique targets. Soft-deleted rows count, since the
// storage index does not distinguish them.
func checkUniqueLinks(tx *gorm.DB, kind *Kind, rec models.Entity) error {
	fields := map[string]string{}
	for _, ref := range rec.References() {
		if !ref.Unique || ref.ID == 0 {
			continue
		}
		var holders []uint
		err := tx.Table(kind.Table).
			Where(ref.Field+" = ? AND id <> ?", ref.ID, rec.GetID()).
			Limit(1).
			Pluck("id", &holders).Error
		if err != nil {
			return fmt.Errorf("failed to check %s uniqueness: %w", ref.Field, err)
		}
		if len(holders) > 0 {
			fields[ref.Field] = fmt.Sprintf("%s %d is already linked to %s %d",
				ref.Table, ref.ID, kind.Label, holders[0])
		}
	}
	if len(fields) > 0 {
		return newValidationError("link already taken", fields)
	}
	return nil
}

// checkReferences verifies that every set reference points at an existing
// row, soft-deleted or not, and that required references are set.
func checkReferences(tx *gorm.DB, rec models.Entity) error {
	fields := map[string]string{}
	for _, ref := range rec.References() {
		if ref.ID == 0 {
			if ref.Required {
				fields[ref.Field] = "This field is required"
			}
			continue
		}
		var n int64
		if err := tx.Table(ref.Table).Where("id = ?", ref.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check %s: %w", ref.Field, err)
		}
		if n == 0 {
			fields[ref.Field] = fmt.Sprintf("%s %d does not exist", ref.Table, ref.ID)
		}
	}
	if len(fields) > 0 {
		return newValidationError("invalid reference", fields)
	}
	return nil
}

// translateWriteError maps a unique index violation onto the same
// ValidationError the application check produces.
func translateWriteError(kind *Kind, rec models.Entity, err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	fields := map[string]string{}
	for _, ref := range rec.References() {
		if ref.Unique && ref.ID != 0 {
			fields[ref.Field] = fmt.Sprintf("%s %d is already linked to another %s",
				ref.Table, ref.ID, kind.Label)
		}
	}
	if len(fields) == 0 {
		return err
	}
	return newValidationError("link already taken", fields)
}
