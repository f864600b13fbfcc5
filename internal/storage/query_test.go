package storage

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/fibertrack/models"
)

func TestParseStatuses(t *testing.T) {
	tests := []struct {
		raw  string
		want []models.Visibility
	}{
		{"", []models.Visibility{models.VisibilityActive}},
		{"bogus", []models.Visibility{models.VisibilityActive}},
		{"archived", []models.Visibility{models.VisibilityArchived}},
		{"active, ARCHIVED,bogus", []models.Visibility{models.VisibilityActive, models.VisibilityArchived}},
		{" deleted ,active", []models.Visibility{models.VisibilityActive, models.VisibilityDeleted}},
		{"active,archived,deleted", models.Visibilities},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatuses(tt.raw).Slice())
		})
	}
}

func TestSortClause(t *testing.T) {
	cables := MustKind(KindCables)

	tests := []struct {
		raw  string
		want string
	}{
		{"", "cables.id DESC"},
		{"name|asc", "cables.name ASC, cables.id DESC"},
		{"name|dsc", "cables.name DESC, cables.id DESC"},
		{"name|DSC", "cables.name ASC, cables.id DESC"},
		{"name|desc", "cables.name ASC, cables.id DESC"},
		{"name", "cables.name ASC, cables.id DESC"},
		{"id|asc", "cables.id ASC"},
		{"splitter|dsc", "spl.name DESC, cables.id DESC"},
		{"password|asc", "cables.id DESC"},
		{"name; DROP TABLE cables|asc", "cables.id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, sortClause(cables, tt.raw))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "50!% off", escapeLike("50% off"))
	assert.Equal(t, "a!_b", escapeLike("a_b"))
	assert.Equal(t, "wow!!", escapeLike("wow!"))
}

func TestList_FilterThroughParentChain(t *testing.T) {
	s := newTestStorage(t)
	siteA := seedSite(t, s, "Site A", 2, 4)
	seedSite(t, s, "Site B", 1, 3)

	page, err := s.List(context.Background(), MustKind(KindCores), ListParams{Filter: "Site A"})
	require.NoError(t, err)

	assert.Equal(t, int64(8), page.Meta.Total)
	assert.ElementsMatch(t, siteA.cores, ids(page.Items))

	// projection embeds the tube color and that tube's cable name
	core := page.Items[0].(*models.Core)
	require.NotNil(t, core.Tube)
	require.NotNil(t, core.Tube.Cable)
	assert.Equal(t, "Site A FO", core.Tube.Cable.Name)

	page, err = s.List(context.Background(), MustKind(KindCores), ListParams{Filter: "site a"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), page.Meta.Total, "search is case-insensitive")
}

func TestList_FilterWildcardsAreLiteral(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, KindLocations, map[string]interface{}{"name": "100% fiber"})
	mustCreate(t, s, KindLocations, map[string]interface{}{"name": "1000 fiber"})

	page, err := s.List(context.Background(), MustKind(KindLocations), ListParams{Filter: "100%"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "100% fiber", page.Items[0].(*models.Location).Name)
}

func TestList_ArchivedCableVisibility(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 2, 1)
	ctx := context.Background()
	cables := MustKind(KindCables)

	_, err := s.Archive(ctx, cables, tree.cable)
	require.NoError(t, err)

	tests := []struct {
		status   string
		included bool
	}{
		{"active", false},
		{"", false},
		{"archived", true},
		{"active,archived", true},
		{"deleted", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			page, err := s.List(ctx, cables, ListParams{Status: tt.status})
			require.NoError(t, err)
			if tt.included {
				assert.Contains(t, ids(page.Items), tree.cable)
			} else {
				assert.NotContains(t, ids(page.Items), tree.cable)
			}
		})
	}

	page, err := s.List(ctx, MustKind(KindTubes), ListParams{Status: "active"})
	require.NoError(t, err)
	assert.ElementsMatch(t, tree.tubes, ids(page.Items), "child tubes stay active")
}

func TestList_VisibilityPartition(t *testing.T) {
	s := newTestStorage(t)
	tree := seedSite(t, s, "Site A", 1, 4)
	ctx := context.Background()
	cores := MustKind(KindCores)

	active, archived, deleted, archivedDeleted := tree.cores[0], tree.cores[1], tree.cores[2], tree.cores[3]
	_, err := s.Archive(ctx, cores, archived)
	require.NoError(t, err)
	_, err = s.Delete(ctx, cores, deleted)
	require.NoError(t, err)
	_, err = s.Archive(ctx, cores, archivedDeleted)
	require.NoError(t, err)
	_, err = s.Delete(ctx, cores, archivedDeleted)
	require.NoError(t, err)

	tests := []struct {
		status string
		want   []uint
	}{
		{"active", []uint{active}},
		{"archived", []uint{archived}},
		{"deleted", []uint{deleted, archivedDeleted}},
		{"active,deleted", []uint{active, deleted, archivedDeleted}},
		{"active,archived,deleted", tree.cores},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			page, err := s.List(ctx, cores, ListParams{Status: tt.status})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids(page.Items))
		})
	}
}

func TestList_LocationsIgnoreStatus(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, KindLocations, map[string]interface{}{"name": "Site A"})

	page, err := s.List(context.Background(), MustKind(KindLocations), ListParams{Status: "deleted"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestList_PaginationConcatenates(t *testing.T) {
	s := newTestStorage(t)
	loc := mustCreate(t, s, KindLocations, map[string]interface{}{"name": "Site A"})
	for i := 0; i < 23; i++ {
		// repeated names exercise the id tie-breaker
		mustCreate(t, s, KindSplitters, map[string]interface{}{
			"location_id": loc, "name": fmt.Sprintf("ODC-%d", i%4), "splitter_ratio": "1:8",
		})
	}
	ctx := context.Background()
	splitters := MustKind(KindSplitters)

	full, err := s.List(ctx, splitters, ListParams{Sort: "name|asc", PerPage: 100})
	require.NoError(t, err)
	require.Len(t, full.Items, 23)

	var concatenated []uint
	for p := 1; p <= 3; p++ {
		page, err := s.List(ctx, splitters, ListParams{Sort: "name|asc", Page: p, PerPage: 10})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Items), 10)
		assert.Equal(t, 3, page.Meta.LastPage)
		concatenated = append(concatenated, ids(page.Items)...)
	}
	assert.Equal(t, ids(full.Items), concatenated)
}

func TestList_Meta(t *testing.T) {
	s := newTestStorage(t)
	for i := 0; i < 20; i++ {
		mustCreate(t, s, KindLocations, map[string]interface{}{"name": fmt.Sprintf("Site %d", i)})
	}
	ctx := context.Background()
	locations := MustKind(KindLocations)

	page, err := s.List(ctx, locations, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.CurrentPage)
	assert.Equal(t, 15, page.Meta.PerPage)
	assert.Equal(t, int64(20), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.LastPage)
	require.NotNil(t, page.Meta.From)
	assert.Equal(t, 1, *page.Meta.From)
	assert.Equal(t, 15, *page.Meta.To)

	page, err = s.List(ctx, locations, ListParams{Page: 2, PerPage: -3})
	require.NoError(t, err)
	assert.Equal(t, 15, page.Meta.PerPage)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 16, *page.Meta.From)
	assert.Equal(t, 20, *page.Meta.To)

	page, err = s.List(ctx, locations, ListParams{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.Meta.From)
	assert.Nil(t, page.Meta.To)

	page, err = s.List(ctx, locations, ListParams{PerPage: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Meta.PerPage)

	page, err = s.List(ctx, locations, ListParams{Filter: "nothing matches"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.LastPage)
	assert.Equal(t, int64(0), page.Meta.Total)
}

func TestList_HugePageStaysInRange(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, KindLocations, map[string]interface{}{"name": "Site A"})

	page, err := s.List(context.Background(), MustKind(KindLocations), ListParams{Page: math.MaxInt, PerPage: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.LessOrEqual(t, int64(page.Meta.CurrentPage-1)*int64(page.Meta.PerPage), int64(math.MaxInt32))

	for _, perPage := range []int{1, 7, 15, 100} {
		p, pp := s.normalizePage(math.MaxInt, perPage)
		assert.Equal(t, perPage, pp)
		assert.LessOrEqual(t, (p-1)*pp, math.MaxInt32, "per_page=%d", perPage)
		assert.Greater(t, p, 1)
	}
}

func TestList_SortWhitelist(t *testing.T) {
	s := newTestStorage(t)
	for _, name := range []string{"b", "c", "a"} {
		mustCreate(t, s, KindLocations, map[string]interface{}{"name": name})
	}
	ctx := context.Background()
	locations := MustKind(KindLocations)

	page, err := s.List(ctx, locations, ListParams{Sort: "secret_column|asc"})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 2, 1}, ids(page.Items))

	page, err = s.List(ctx, locations, ListParams{Sort: "name|asc"})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1, 2}, ids(page.Items))

	page, err = s.List(ctx, locations, ListParams{Sort: "name|dsc"})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 1, 3}, ids(page.Items))
}

func TestList_Deterministic(t *testing.T) {
	s := newTestStorage(t)
	seedSite(t, s, "Site A", 3, 3)
	params := ListParams{Filter: "site", Sort: "color|asc", PerPage: 5, Page: 2}

	first, err := s.List(context.Background(), MustKind(KindCores), params)
	require.NoError(t, err)
	second, err := s.List(context.Background(), MustKind(KindCores), params)
	require.NoError(t, err)
	assert.Equal(t, ids(first.Items), ids(second.Items))
	assert.Equal(t, first.Meta, second.Meta)
}
