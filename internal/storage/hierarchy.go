package storage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"evalgo.org/fibertrack/models"
)

// ReportFilter narrows a hierarchy report.
type ReportFilter struct {
	// LocationID limits the report to one site; zero means all sites
	LocationID uint

	// ExcludeArchived drops archived rows along with their subtrees
	ExcludeArchived bool
}

// Rollup aggregates counts and utilization over a subtree.
type Rollup struct {
	Locations          int `json:"locations"`
	Splitters          int `json:"splitters"`
	Cables             int `json:"cables"`
	Tubes              int `json:"tubes"`
	Cores              int `json:"cores"`
	DistributionPoints int `json:"distribution_points"`
	Subscribers        int `json:"subscribers"`

	// CableLength is the summed run length in meters
	CableLength float64 `json:"cable_length"`

	// CoreCapacity is the summed total_core_count of the cables
	CoreCapacity int `json:"core_capacity"`

	AssignedCores                    int `json:"assigned_cores"`
	UsedTubes                        int `json:"used_tubes"`
	DistributionPointsWithSubscriber int `json:"distribution_points_with_subscriber"`

	CoreUtilization              float64 `json:"core_utilization"`
	TubeUtilization              float64 `json:"tube_utilization"`
	DistributionPointUtilization float64 `json:"distribution_point_utilization"`

	// Orphans counts rows whose parent is missing or filtered out
	Orphans int `json:"orphans"`
}

func (r *Rollup) add(o Rollup) {
	r.Locations += o.Locations
	r.Splitters += o.Splitters
	r.Cables += o.Cables
	r.Tubes += o.Tubes
	r.Cores += o.Cores
	r.DistributionPoints += o.DistributionPoints
	r.Subscribers += o.Subscribers
	r.CableLength += o.CableLength
	r.CoreCapacity += o.CoreCapacity
	r.AssignedCores += o.AssignedCores
	r.UsedTubes += o.UsedTubes
	r.DistributionPointsWithSubscriber += o.DistributionPointsWithSubscriber
	r.Orphans += o.Orphans
}

func (r *Rollup) finalize() {
	r.CoreUtilization = ratio(r.AssignedCores, r.Cores)
	r.TubeUtilization = ratio(r.UsedTubes, r.Tubes)
	r.DistributionPointUtilization = ratio(r.DistributionPointsWithSubscriber, r.DistributionPoints)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Hierarchy is the full containment tree plus the overall rollup.
type Hierarchy struct {
	Locations []*LocationNode `json:"locations"`
	Summary   Rollup          `json:"summary"`
}

// LocationNode is one site with its subtree. Distribution points without a
// core and subscribers without a distribution point hang directly off the
// site.
type LocationNode struct {
	Location  *models.Location  `json:"location"`
	Splitters []*SplitterBranch `json:"splitters"`

	UnlinkedDistributionPoints []*DistributionPointBranch `json:"unlinked_distribution_points,omitempty"`
	UnlinkedSubscribers        []*models.Subscriber       `json:"unlinked_subscribers,omitempty"`

	Summary Rollup `json:"summary"`
}

type SplitterBranch struct {
	Splitter *models.SplitterNode `json:"splitter"`
	Cables   []*CableBranch       `json:"cables"`
}

type CableBranch struct {
	Cable *models.Cable `json:"cable"`
	Tubes []*TubeBranch `json:"tubes"`
}

type TubeBranch struct {
	Tube  *models.Tube  `json:"tube"`
	Cores []*CoreBranch `json:"cores"`
}

type CoreBranch struct {
	Core              *models.Core             `json:"core"`
	DistributionPoint *DistributionPointBranch `json:"distribution_point,omitempty"`
}

type DistributionPointBranch struct {
	DistributionPoint *models.DistributionPoint `json:"distribution_point"`
	Subscriber        *models.Subscriber        `json:"subscriber,omitempty"`
}

// levels holds one load of every table.
type levels struct {
	locations   []models.Location
	splitters   []models.SplitterNode
	cables      []models.Cable
	tubes       []models.Tube
	cores       []models.Core
	dps         []models.DistributionPoint
	subscribers []models.Subscriber
}

func (s *Storage) loadLevels(ctx context.Context, filter ReportFilter) (*levels, error) {
	lv := &levels{}
	g, gctx := errgroup.WithContext(ctx)

	scoped := func(table string) *gorm.DB {
		tx := s.db.WithContext(gctx).Order(table + ".id")
		if filter.ExcludeArchived && table != "locations" {
			tx = tx.Where(table+".status = ?", models.StatusActive)
		}
		return tx
	}

	g.Go(func() error {
		tx := scoped("locations")
		if filter.LocationID != 0 {
			tx = tx.Where("locations.id = ?", filter.LocationID)
		}
		return tx.Find(&lv.locations).Error
	})
	g.Go(func() error { return scoped("splitters").Find(&lv.splitters).Error })
	g.Go(func() error { return scoped("cables").Find(&lv.cables).Error })
	g.Go(func() error { return scoped("tubes").Find(&lv.tubes).Error })
	g.Go(func() error { return scoped("cores").Find(&lv.cores).Error })
	g.Go(func() error { return scoped("distribution_points").Find(&lv.dps).Error })
	g.Go(func() error { return scoped("subscribers").Find(&lv.subscribers).Error })

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load hierarchy: %w", err)
	}
	return lv, nil
}

// Hierarchy assembles the containment tree. Each table is loaded once
// (soft-deleted rows excluded) and children are attached through maps keyed
// by parent id, so the walk is linear in the number of rows.
func (s *Storage) Hierarchy(ctx context.Context, filter ReportFilter) (*Hierarchy, error) {
	if filter.LocationID != 0 {
		if _, err := s.Get(ctx, MustKind(KindLocations), filter.LocationID); err != nil {
			return nil, err
		}
	}

	lv, err := s.loadLevels(ctx, filter)
	if err != nil {
		return nil, err
	}

	t := newTreeBuilder(lv)
	h := &Hierarchy{Locations: make([]*LocationNode, 0, len(lv.locations))}
	for i := range lv.locations {
		node := t.location(&lv.locations[i])
		h.Locations = append(h.Locations, node)
		h.Summary.add(node.Summary)
	}

	// Rows outside a single-site report are not orphans.
	if filter.LocationID == 0 {
		h.Summary.Orphans = t.unreached()
	}
	h.Summary.finalize()
	return h, nil
}

// Stats returns only the overall rollup of a hierarchy report.
func (s *Storage) Stats(ctx context.Context, filter ReportFilter) (*Rollup, error) {
	h, err := s.Hierarchy(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &h.Summary, nil
}

type treeBuilder struct {
	lv *levels

	splittersByLocation map[uint][]*models.SplitterNode
	cablesBySplitter    map[uint][]*models.Cable
	tubesByCable        map[uint][]*models.Tube
	coresByTube         map[uint][]*models.Core
	dpsByCore           map[uint][]*models.DistributionPoint
	dpsByLocation       map[uint][]*models.DistributionPoint
	subsByDP            map[uint][]*models.Subscriber
	subsByLocation      map[uint][]*models.Subscriber

	reached int
}

func newTreeBuilder(lv *levels) *treeBuilder {
	t := &treeBuilder{
		lv:                  lv,
		splittersByLocation: map[uint][]*models.SplitterNode{},
		cablesBySplitter:    map[uint][]*models.Cable{},
		tubesByCable:        map[uint][]*models.Tube{},
		coresByTube:         map[uint][]*models.Core{},
		dpsByCore:           map[uint][]*models.DistributionPoint{},
		dpsByLocation:       map[uint][]*models.DistributionPoint{},
		subsByDP:            map[uint][]*models.Subscriber{},
		subsByLocation:      map[uint][]*models.Subscriber{},
	}
	for i := range lv.splitters {
		sp := &lv.splitters[i]
		t.splittersByLocation[sp.LocationID] = append(t.splittersByLocation[sp.LocationID], sp)
	}
	for i := range lv.cables {
		c := &lv.cables[i]
		t.cablesBySplitter[c.SplitterID] = append(t.cablesBySplitter[c.SplitterID], c)
	}
	for i := range lv.tubes {
		tb := &lv.tubes[i]
		t.tubesByCable[tb.CableID] = append(t.tubesByCable[tb.CableID], tb)
	}
	for i := range lv.cores {
		c := &lv.cores[i]
		t.coresByTube[c.TubeID] = append(t.coresByTube[c.TubeID], c)
	}
	for i := range lv.dps {
		dp := &lv.dps[i]
		if dp.CoreID == nil {
			t.dpsByLocation[dp.LocationID] = append(t.dpsByLocation[dp.LocationID], dp)
		} else {
			t.dpsByCore[*dp.CoreID] = append(t.dpsByCore[*dp.CoreID], dp)
		}
	}
	for i := range lv.subscribers {
		sub := &lv.subscribers[i]
		if sub.DistributionPointID == nil {
			t.subsByLocation[sub.LocationID] = append(t.subsByLocation[sub.LocationID], sub)
		} else {
			t.subsByDP[*sub.DistributionPointID] = append(t.subsByDP[*sub.DistributionPointID], sub)
		}
	}
	return t
}

// unreached counts loaded rows below Location that the walk never visited.
func (t *treeBuilder) unreached() int {
	total := len(t.lv.splitters) + len(t.lv.cables) + len(t.lv.tubes) +
		len(t.lv.cores) + len(t.lv.dps) + len(t.lv.subscribers)
	return total - t.reached
}

func (t *treeBuilder) location(loc *models.Location) *LocationNode {
	node := &LocationNode{Location: loc, Splitters: []*SplitterBranch{}}
	r := &node.Summary
	r.Locations = 1

	for _, sp := range t.splittersByLocation[loc.ID] {
		node.Splitters = append(node.Splitters, t.splitter(sp, r))
	}
	for _, dp := range t.dpsByLocation[loc.ID] {
		node.UnlinkedDistributionPoints = append(node.UnlinkedDistributionPoints, t.distributionPoint(dp, r))
	}
	for _, sub := range t.subsByLocation[loc.ID] {
		t.reached++
		r.Subscribers++
		node.UnlinkedSubscribers = append(node.UnlinkedSubscribers, sub)
	}

	r.finalize()
	return node
}

func (t *treeBuilder) splitter(sp *models.SplitterNode, r *Rollup) *SplitterBranch {
	t.reached++
	r.Splitters++
	b := &SplitterBranch{Splitter: sp, Cables: []*CableBranch{}}
	for _, c := range t.cablesBySplitter[sp.ID] {
		b.Cables = append(b.Cables, t.cable(c, r))
	}
	return b
}

func (t *treeBuilder) cable(c *models.Cable, r *Rollup) *CableBranch {
	t.reached++
	r.Cables++
	r.CableLength += c.Length
	r.CoreCapacity += c.TotalCoreCount
	b := &CableBranch{Cable: c, Tubes: []*TubeBranch{}}
	for _, tb := range t.tubesByCable[c.ID] {
		b.Tubes = append(b.Tubes, t.tube(tb, r))
	}
	return b
}

func (t *treeBuilder) tube(tb *models.Tube, r *Rollup) *TubeBranch {
	t.reached++
	r.Tubes++
	b := &TubeBranch{Tube: tb, Cores: []*CoreBranch{}}
	for _, c := range t.coresByTube[tb.ID] {
		b.Cores = append(b.Cores, t.core(c, r))
	}
	if len(b.Cores) > 0 {
		r.UsedTubes++
	}
	return b
}

func (t *treeBuilder) core(c *models.Core, r *Rollup) *CoreBranch {
	t.reached++
	r.Cores++
	b := &CoreBranch{Core: c}
	// Only the first distribution point claims the core; any extra stays
	// unreached and is reported as an orphan.
	if dps := t.dpsByCore[c.ID]; len(dps) > 0 {
		b.DistributionPoint = t.distributionPoint(dps[0], r)
		r.AssignedCores++
	}
	return b
}

func (t *treeBuilder) distributionPoint(dp *models.DistributionPoint, r *Rollup) *DistributionPointBranch {
	t.reached++
	r.DistributionPoints++
	b := &DistributionPointBranch{DistributionPoint: dp}
	if subs := t.subsByDP[dp.ID]; len(subs) > 0 {
		t.reached++
		r.Subscribers++
		r.DistributionPointsWithSubscriber++
		b.Subscriber = subs[0]
	}
	return b
}
