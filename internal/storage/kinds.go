package storage

import (
	"gorm.io/gorm"

	"evalgo.org/fibertrack/models"
)

// Collection names used in URLs and the kind registry.
const (
	KindLocations          = "locations"
	KindSplitters          = "splitters"
	KindCables             = "cables"
	KindTubes              = "tubes"
	KindCores              = "cores"
	KindDistributionPoints = "distribution-points"
	KindSubscribers        = "subscribers"
)

// Kind describes one entity kind to the generic engine: where it lives, how
// it is searched and sorted, which parent summaries a listing carries and
// which kinds hang below it.
type Kind struct {
	// Name is the collection name (e.g. "distribution-points")
	Name string

	// Label is the singular human-readable name used in messages
	Label string

	// Table is the SQL table
	Table string

	// Lifecycle is false for kinds without a (status, deleted_at) pair
	Lifecycle bool

	// Joins reach the parent chain up to Location for search and sort
	Joins []string

	// SearchColumns are matched case-insensitively by the free-text filter
	SearchColumns []string

	// SortColumns maps public sort keys to qualified columns
	SortColumns map[string]string

	// Preloads are the parent summaries attached to reads
	Preloads []string

	// Children lists kinds referencing this one
	Children []ChildRef

	newRecord func() models.Entity
	find      func(tx *gorm.DB) ([]models.Entity, error)
}

// ChildRef is a foreign key from a child kind back to its parent.
type ChildRef struct {
	Kind   string
	Column string
}

// New returns an empty record of the kind.
func (k *Kind) New() models.Entity {
	return k.newRecord()
}

func (k *Kind) column(name string) string {
	return k.Table + "." + name
}

// finder builds a typed loader that hands rows back as entities.
func finder[T any, P interface {
	*T
	models.Entity
}]() func(tx *gorm.DB) ([]models.Entity, error) {
	return func(tx *gorm.DB) ([]models.Entity, error) {
		var rows []T
		if err := tx.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]models.Entity, len(rows))
		for i := range rows {
			out[i] = P(&rows[i])
		}
		return out, nil
	}
}

func factory[T any, P interface {
	*T
	models.Entity
}]() func() models.Entity {
	return func() models.Entity { return P(new(T)) }
}

const (
	joinSplitterLocation = "LEFT JOIN locations AS loc ON loc.id = spl.location_id"
	joinCableSplitter    = "LEFT JOIN splitters AS spl ON spl.id = cab.splitter_id"
	joinTubeCable        = "LEFT JOIN cables AS cab ON cab.id = tub.cable_id"
	joinCoreTube         = "LEFT JOIN tubes AS tub ON tub.id = cor.tube_id"
)

var kinds = []*Kind{
	{
		Name:          KindLocations,
		Label:         "location",
		Table:         "locations",
		SearchColumns: []string{"locations.name", "locations.description"},
		SortColumns: map[string]string{
			"id":         "locations.id",
			"name":       "locations.name",
			"latitude":   "locations.latitude",
			"longitude":  "locations.longitude",
			"created_at": "locations.created_at",
			"updated_at": "locations.updated_at",
		},
		Children: []ChildRef{
			{Kind: KindSplitters, Column: "location_id"},
			{Kind: KindDistributionPoints, Column: "location_id"},
			{Kind: KindSubscribers, Column: "location_id"},
		},
		newRecord: factory[models.Location](),
		find:      finder[models.Location](),
	},
	{
		Name:      KindSplitters,
		Label:     "splitter",
		Table:     "splitters",
		Lifecycle: true,
		Joins:     []string{"LEFT JOIN locations AS loc ON loc.id = splitters.location_id"},
		SearchColumns: []string{
			"splitters.name", "splitters.splitter_ratio", "splitters.description", "loc.name",
		},
		SortColumns: map[string]string{
			"id":             "splitters.id",
			"name":           "splitters.name",
			"splitter_ratio": "splitters.splitter_ratio",
			"status":         "splitters.status",
			"location":       "loc.name",
			"created_at":     "splitters.created_at",
			"updated_at":     "splitters.updated_at",
		},
		Preloads:  []string{"Location"},
		Children:  []ChildRef{{Kind: KindCables, Column: "splitter_id"}},
		newRecord: factory[models.SplitterNode](),
		find:      finder[models.SplitterNode](),
	},
	{
		Name:      KindCables,
		Label:     "cable",
		Table:     "cables",
		Lifecycle: true,
		Joins: []string{
			"LEFT JOIN splitters AS spl ON spl.id = cables.splitter_id",
			joinSplitterLocation,
		},
		SearchColumns: []string{"cables.name", "cables.cable_type", "spl.name", "loc.name"},
		SortColumns: map[string]string{
			"id":               "cables.id",
			"name":             "cables.name",
			"cable_type":       "cables.cable_type",
			"length":           "cables.length",
			"tube_count":       "cables.tube_count",
			"cores_per_tube":   "cables.cores_per_tube",
			"total_core_count": "cables.total_core_count",
			"status":           "cables.status",
			"splitter":         "spl.name",
			"location":         "loc.name",
			"created_at":       "cables.created_at",
			"updated_at":       "cables.updated_at",
		},
		Preloads:  []string{"Splitter", "Splitter.Location"},
		Children:  []ChildRef{{Kind: KindTubes, Column: "cable_id"}},
		newRecord: factory[models.Cable](),
		find:      finder[models.Cable](),
	},
	{
		Name:      KindTubes,
		Label:     "tube",
		Table:     "tubes",
		Lifecycle: true,
		Joins: []string{
			"LEFT JOIN cables AS cab ON cab.id = tubes.cable_id",
			joinCableSplitter,
			joinSplitterLocation,
		},
		SearchColumns: []string{"tubes.color", "cab.name", "spl.name", "loc.name"},
		SortColumns: map[string]string{
			"id":         "tubes.id",
			"color":      "tubes.color",
			"status":     "tubes.status",
			"cable":      "cab.name",
			"location":   "loc.name",
			"created_at": "tubes.created_at",
			"updated_at": "tubes.updated_at",
		},
		Preloads:  []string{"Cable", "Cable.Splitter"},
		Children:  []ChildRef{{Kind: KindCores, Column: "tube_id"}},
		newRecord: factory[models.Tube](),
		find:      finder[models.Tube](),
	},
	{
		Name:      KindCores,
		Label:     "core",
		Table:     "cores",
		Lifecycle: true,
		Joins: []string{
			"LEFT JOIN tubes AS tub ON tub.id = cores.tube_id",
			joinTubeCable,
			joinCableSplitter,
			joinSplitterLocation,
		},
		SearchColumns: []string{"cores.color", "tub.color", "cab.name", "spl.name", "loc.name"},
		SortColumns: map[string]string{
			"id":         "cores.id",
			"color":      "cores.color",
			"status":     "cores.status",
			"tube":       "tub.color",
			"cable":      "cab.name",
			"location":   "loc.name",
			"created_at": "cores.created_at",
			"updated_at": "cores.updated_at",
		},
		Preloads:  []string{"Tube", "Tube.Cable"},
		Children:  []ChildRef{{Kind: KindDistributionPoints, Column: "core_id"}},
		newRecord: factory[models.Core](),
		find:      finder[models.Core](),
	},
	{
		Name:      KindDistributionPoints,
		Label:     "distribution point",
		Table:     "distribution_points",
		Lifecycle: true,
		Joins: []string{
			"LEFT JOIN cores AS cor ON cor.id = distribution_points.core_id",
			joinCoreTube,
			joinTubeCable,
			"LEFT JOIN locations AS loc ON loc.id = distribution_points.location_id",
		},
		SearchColumns: []string{
			"distribution_points.name", "cor.color", "tub.color", "cab.name", "loc.name",
		},
		SortColumns: map[string]string{
			"id":         "distribution_points.id",
			"name":       "distribution_points.name",
			"status":     "distribution_points.status",
			"core_id":    "distribution_points.core_id",
			"cable":      "cab.name",
			"location":   "loc.name",
			"created_at": "distribution_points.created_at",
			"updated_at": "distribution_points.updated_at",
		},
		Preloads:  []string{"Core", "Core.Tube", "Core.Tube.Cable", "Location"},
		Children:  []ChildRef{{Kind: KindSubscribers, Column: "distribution_point_id"}},
		newRecord: factory[models.DistributionPoint](),
		find:      finder[models.DistributionPoint](),
	},
	{
		Name:      KindSubscribers,
		Label:     "subscriber",
		Table:     "subscribers",
		Lifecycle: true,
		Joins: []string{
			"LEFT JOIN distribution_points AS dp ON dp.id = subscribers.distribution_point_id",
			"LEFT JOIN locations AS loc ON loc.id = subscribers.location_id",
		},
		SearchColumns: []string{"subscribers.name", "subscribers.address", "dp.name", "loc.name"},
		SortColumns: map[string]string{
			"id":                 "subscribers.id",
			"name":               "subscribers.name",
			"address":            "subscribers.address",
			"status":             "subscribers.status",
			"distribution_point": "dp.name",
			"location":           "loc.name",
			"created_at":         "subscribers.created_at",
			"updated_at":         "subscribers.updated_at",
		},
		Preloads:  []string{"DistributionPoint", "Location"},
		newRecord: factory[models.Subscriber](),
		find:      finder[models.Subscriber](),
	},
}

var kindsByName = func() map[string]*Kind {
	m := make(map[string]*Kind, len(kinds))
	for _, k := range kinds {
		m[k.Name] = k
	}
	return m
}()

// Kinds returns every registered kind, root first.
func Kinds() []*Kind {
	return kinds
}

// LookupKind returns the kind registered under a collection name.
func LookupKind(name string) (*Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// MustKind is LookupKind for compile-time constant names.
func MustKind(name string) *Kind {
	k, ok := kindsByName[name]
	if !ok {
		panic("storage: unknown kind " + name)
	}
	return k
}
