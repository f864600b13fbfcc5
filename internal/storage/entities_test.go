package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"evalgo.org/fibertrack/models"
)

func TestCreate_DefaultsAndDerivedFields(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 2, 4)

	cable := mustGet(t, s, KindCables, tree.cable).(*models.Cable)
	assert.Equal(t, 8, cable.TotalCoreCount)
	assert.Equal(t, models.StatusActive, cable.Status)
	assert.False(t, cable.DeletedAt.Valid)
	require.NotNil(t, cable.Splitter, "parent summary should be preloaded")
	require.NotNil(t, cable.Splitter.Location)
	assert.Equal(t, "Site A", cable.Splitter.Location.Name)
}

func TestCreate_IgnoresProtectedFields(t *testing.T) {
	s := newTestStorage(t)
	loc := mustCreate(t, s, KindLocations, map[string]interface{}{"name": "Site A"})

	id := mustCreate(t, s, KindSplitters, map[string]interface{}{
		"id": 999, "location_id": loc, "name": "ODC", "splitter_ratio": "1:4",
		"deleted_at": "2024-01-01T00:00:00Z",
	})
	assert.NotEqual(t, uint(999), id)
	assert.False(t, lifecycleOf(t, s, KindSplitters, id).DeletedAt.Valid)
}

func TestCreate_ValidationErrors(t *testing.T) {
	s := newTestStorage(t)
	seedSite(t, s, "Site A", 1, 1)

	tests := []struct {
		name    string
		kind    string
		payload string
		field   string
	}{
		{"missing name", KindLocations, `{"latitude": 1}`, "name"},
		{"latitude out of range", KindLocations, `{"name": "x", "latitude": 91}`, "latitude"},
		{"bad splitter ratio", KindSplitters, `{"location_id": 1, "name": "x", "splitter_ratio": "1:3"}`, "splitter_ratio"},
		{"bad cable type", KindCables, `{"splitter_id": 1, "name": "x", "cable_type": "ribbon"}`, "cable_type"},
		{"bad color", KindTubes, `{"cable_id": 1, "color": "pink"}`, "color"},
		{"bad status", KindCores, `{"tube_id": 1, "color": "blue", "status": "gone"}`, "status"},
		{"missing parent", KindCores, `{"tube_id": 4242, "color": "blue"}`, "tube_id"},
		{"missing location", KindDistributionPoints, `{"name": "ODP", "location_id": 4242}`, "location_id"},
		{"missing core", KindDistributionPoints, `{"name": "ODP", "location_id": 1, "core_id": 4242}`, "core_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), MustKind(tt.kind), []byte(tt.payload))
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreate_EmptyAndMalformedBody(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Create(context.Background(), MustKind(KindLocations), nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Create(context.Background(), MustKind(KindLocations), []byte(`{"name":`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_SoftDeletedParentAccepted(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 1, 1)

	_, err := s.Delete(context.Background(), MustKind(KindTubes), tree.tubes[0])
	require.NoError(t, err)

	id := mustCreate(t, s, KindCores, map[string]interface{}{"tube_id": tree.tubes[0], "color": "aqua"})
	assert.NotZero(t, id)
}

func TestGet(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 1, 1)

	t.Run("includes soft-deleted", func(t *testing.T) {
		_, err := s.Delete(context.Background(), MustKind(KindCores), tree.cores[0])
		require.NoError(t, err)

		core := mustGet(t, s, KindCores, tree.cores[0]).(*models.Core)
		assert.True(t, core.DeletedAt.Valid)
		assert.Equal(t, models.VisibilityDeleted, core.Visibility())
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := s.Get(context.Background(), MustKind(KindCores), 4242)
		assert.ErrorIs(t, err, ErrNotFound)

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, uint(4242), nf.ID)
	})
}

func TestUpdate_Partial(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 2, 4)
	before := mustGet(t, s, KindCables, tree.cable).(*models.Cable)

	rec, err := s.Update(context.Background(), MustKind(KindCables), tree.cable,
		[]byte(`{"name": "FO-renamed", "tube_count": 3, "id": 77, "created_at": "2001-01-01T00:00:00Z"}`))
	require.NoError(t, err)

	cable := rec.(*models.Cable)
	assert.Equal(t, tree.cable, cable.ID)
	assert.Equal(t, "FO-renamed", cable.Name)
	assert.Equal(t, before.CableType, cable.CableType)
	assert.Equal(t, before.Length, cable.Length)
	assert.Equal(t, 12, cable.TotalCoreCount)
	assert.True(t, before.CreatedAt.Equal(cable.CreatedAt))
	assert.Equal(t, models.StatusActive, cable.Status)
}

func TestUpdate_SoftDeletedRowStaysDeleted(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 1, 1)
	ctx := context.Background()

	_, err := s.Delete(ctx, MustKind(KindTubes), tree.tubes[0])
	require.NoError(t, err)

	rec, err := s.Update(ctx, MustKind(KindTubes), tree.tubes[0], []byte(`{"color": "red", "deleted_at": null}`))
	require.NoError(t, err)

	tube := rec.(*models.Tube)
	assert.Equal(t, "red", tube.Color)
	assert.True(t, tube.DeletedAt.Valid, "deleted_at is not writable through update")
}

// interleave makes the next Update run action on the same row after the row
// is loaded and before it is saved.
func interleave(s *Storage, kind *Kind, id uint, action Action) {
	s.afterLoad = func(tx *gorm.DB) error {
		_, err := NewWithDB(tx, s.config, s.logger).Apply(context.Background(), kind, id, action)
		return err
	}
}

func TestUpdate_KeepsInterleavedDelete(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 1, 1)
	cables := MustKind(KindCables)
	interleave(s, cables, tree.cable, ActionDelete)

	rec, err := s.Update(context.Background(), cables, tree.cable, []byte(`{"name": "FO-renamed"}`))
	require.NoError(t, err)

	cable := rec.(*models.Cable)
	assert.Equal(t, "FO-renamed", cable.Name)
	assert.True(t, cable.DeletedAt.Valid, "delete committed during the update survives")
	assert.Equal(t, models.VisibilityDeleted, lifecycleOf(t, s, KindCables, tree.cable).Visibility())
}

func TestUpdate_KeepsInterleavedArchive(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 1, 1)
	tubes := MustKind(KindTubes)
	interleave(s, tubes, tree.tubes[0], ActionArchive)

	rec, err := s.Update(context.Background(), tubes, tree.tubes[0], []byte(`{"color": "red"}`))
	require.NoError(t, err)

	tube := rec.(*models.Tube)
	assert.Equal(t, "red", tube.Color)
	assert.Equal(t, models.StatusArchived, tube.Status)
	assert.False(t, tube.DeletedAt.Valid)
}

func TestUpdate_KeepsInterleavedRestore(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 1, 1)
	ctx := context.Background()
	cores := MustKind(KindCores)

	_, err := s.Delete(ctx, cores, tree.cores[0])
	require.NoError(t, err)
	interleave(s, cores, tree.cores[0], ActionRestore)

	_, err = s.Update(ctx, cores, tree.cores[0], []byte(`{"color": "red"}`))
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityActive, lifecycleOf(t, s, KindCores, tree.cores[0]).Visibility())
}

func TestUpdate_StatusWrittenOnlyWhenSent(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 1, 1)
	ctx := context.Background()
	cables := MustKind(KindCables)

	rec, err := s.Update(ctx, cables, tree.cable, []byte(`{"status": "archived"}`))
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, rec.(*models.Cable).Status)

	// an interleaved unarchive wins over a payload without status
	interleave(s, cables, tree.cable, ActionUnarchive)
	rec, err = s.Update(ctx, cables, tree.cable, []byte(`{"name": "FO-2"}`))
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, rec.(*models.Cable).Status)
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Update(context.Background(), MustKind(KindLocations), 1, []byte(`{"name": "x"}`))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChildren(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 2, 3)
	ctx := context.Background()

	children, err := s.Children(ctx, MustKind(KindTubes), tree.tubes[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, tree.cores[:3], ids(children[KindCores]))

	_, err = s.Delete(ctx, MustKind(KindCores), tree.cores[0])
	require.NoError(t, err)

	children, err = s.Children(ctx, MustKind(KindTubes), tree.tubes[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, tree.cores[1:3], ids(children[KindCores]))

	children, err = s.Children(ctx, MustKind(KindLocations), tree.location)
	require.NoError(t, err)
	assert.Len(t, children[KindSplitters], 1)
	assert.Empty(t, children[KindDistributionPoints])
	assert.Empty(t, children[KindSubscribers])

	_, err = s.Children(ctx, MustKind(KindCables), 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDatabaseInfo(t *testing.T) {
	s := newTestStorage(t)
	seedSite(t, s, "Site A", 2, 2)

	info, err := s.GetDatabaseInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", info.Driver)
	assert.Equal(t, int64(1), info.Rows[KindLocations])
	assert.Equal(t, int64(4), info.Rows[KindCores])
	assert.Equal(t, int64(0), info.Rows[KindSubscribers])
}
