package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"evalgo.org/fibertrack/internal/config"
	"evalgo.org/fibertrack/internal/logging"
	"evalgo.org/fibertrack/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{Query: config.QueryConfig{DefaultPerPage: 15, MaxPerPage: 100}}
	s := NewWithDB(db, cfg, logging.Noop())
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func mustCreate(t *testing.T, s *Storage, kind string, fields map[string]interface{}) uint {
	t.Helper()
	payload, err := json.Marshal(fields)
	require.NoError(t, err)
	rec, err := s.Create(context.Background(), MustKind(kind), payload)
	require.NoError(t, err)
	return rec.GetID()
}

func mustGet(t *testing.T, s *Storage, kind string, id uint) models.Entity {
	t.Helper()
	rec, err := s.Get(context.Background(), MustKind(kind), id)
	require.NoError(t, err)
	return rec
}

func lifecycleOf(t *testing.T, s *Storage, kind string, id uint) models.Lifecycle {
	t.Helper()
	return *mustGet(t, s, kind, id).(models.Lifecycled).LifecycleState()
}

// siteTree is the topology created by seedSite.
type siteTree struct {
	location uint
	splitter uint
	cable    uint
	tubes    []uint
	cores    []uint
}

// seedSite creates a location with one splitter and one cable of tubes x
// coresPerTube cores.
func seedSite(t *testing.T, s *Storage, name string, tubes, coresPerTube int) siteTree {
	t.Helper()
	var tree siteTree
	tree.location = mustCreate(t, s, KindLocations, map[string]interface{}{
		"name": name, "latitude": 1.0, "longitude": 2.0,
	})
	tree.splitter = mustCreate(t, s, KindSplitters, map[string]interface{}{
		"location_id": tree.location, "name": name + " ODC", "splitter_ratio": "1:8",
	})
	tree.cable = mustCreate(t, s, KindCables, map[string]interface{}{
		"splitter_id": tree.splitter, "name": name + " FO", "cable_type": "multicore",
		"length": 100.0, "tube_count": tubes, "cores_per_tube": coresPerTube,
	})
	for i := 0; i < tubes; i++ {
		tube := mustCreate(t, s, KindTubes, map[string]interface{}{
			"cable_id": tree.cable, "color": models.FiberColors[i%len(models.FiberColors)],
		})
		tree.tubes = append(tree.tubes, tube)
		for j := 0; j < coresPerTube; j++ {
			tree.cores = append(tree.cores, mustCreate(t, s, KindCores, map[string]interface{}{
				"tube_id": tube, "color": models.FiberColors[j%len(models.FiberColors)],
			}))
		}
	}
	return tree
}

func ids(items []models.Entity) []uint {
	out := make([]uint, len(items))
	for i, item := range items {
		out[i] = item.GetID()
	}
	return out
}

func fixedClock(s *Storage, at time.Time) {
	s.now = func() time.Time { return at }
}
