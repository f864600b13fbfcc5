package storage

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"evalgo.org/fibertrack/models"
)

// StatusSet is the set of visibility classes a listing includes.
type StatusSet map[models.Visibility]bool

// Has reports whether v is in the set.
func (s StatusSet) Has(v models.Visibility) bool { return s[v] }

// Slice returns the members in canonical order.
func (s StatusSet) Slice() []models.Visibility {
	out := make([]models.Visibility, 0, len(s))
	for _, v := range models.Visibilities {
		if s[v] {
			out = append(out, v)
		}
	}
	return out
}

// ParseStatuses parses a comma-separated visibility list. Entries are trimmed
// and lowercased, unknown ones dropped; an empty result means {active}.
func ParseStatuses(raw string) StatusSet {
	set := StatusSet{}
	for _, part := range strings.Split(raw, ",") {
		v := models.Visibility(strings.ToLower(strings.TrimSpace(part)))
		for _, known := range models.Visibilities {
			if v == known {
				set[v] = true
			}
		}
	}
	if len(set) == 0 {
		set[models.VisibilityActive] = true
	}
	return set
}

// ListParams are the listing query parameters as received.
type ListParams struct {
	Status  string
	Filter  string
	Sort    string
	Page    int
	PerPage int
}

// PageMeta is the pagination block of a listing.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

// Page is one page of a listing.
type Page struct {
	Items []models.Entity `json:"data"`
	Meta  PageMeta        `json:"meta"`
}

// List composes visibility, free-text, sort and pagination over a kind.
func (s *Storage) List(ctx context.Context, kind *Kind, params ListParams) (*Page, error) {
	statuses := ParseStatuses(params.Status)
	orderBy := sortClause(kind, params.Sort)
	page, perPage := s.normalizePage(params.Page, params.PerPage)

	base := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(kind.New()).Unscoped()
		for _, join := range kind.Joins {
			tx = tx.Joins(join)
		}
		if kind.Lifecycle {
			clauseSQL, args := visibilityClause(kind.Table, statuses)
			tx = tx.Where(clauseSQL, args...)
		}
		if term := strings.TrimSpace(params.Filter); term != "" {
			clauseSQL, args := searchClause(kind.SearchColumns, term)
			tx = tx.Where(clauseSQL, args...)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", kind.Name, err)
	}

	offset := (page - 1) * perPage
	tx := base().
		Select(kind.Table + ".*").
		Order(orderBy).
		Limit(perPage).
		Offset(offset)
	tx = s.withPreloads(tx, kind)

	items, err := kind.find(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Name, err)
	}

	return &Page{Items: items, Meta: buildMeta(page, perPage, total, len(items))}, nil
}

func (s *Storage) normalizePage(page, perPage int) (int, int) {
	def, max := 15, 100
	if s.config != nil {
		if s.config.Query.DefaultPerPage > 0 {
			def = s.config.Query.DefaultPerPage
		}
		if s.config.Query.MaxPerPage > 0 {
			max = s.config.Query.MaxPerPage
		}
	}
	if perPage <= 0 {
		perPage = def
	}
	if perPage > max {
		perPage = max
	}
	if page <= 0 {
		page = 1
	}
	// Keep the row offset inside a 32-bit signed range.
	if maxPage := math.MaxInt32/perPage + 1; page > maxPage {
		page = maxPage
	}
	return page, perPage
}

func buildMeta(page, perPage int, total int64, count int) PageMeta {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	meta := PageMeta{CurrentPage: page, PerPage: perPage, Total: total, LastPage: lastPage}
	if count > 0 {
		from := (page-1)*perPage + 1
		to := from + count - 1
		meta.From, meta.To = &from, &to
	}
	return meta
}

// visibilityClause renders the status set as a disjunction over the deleted
// branch and the live status branch.
func visibilityClause(table string, set StatusSet) (string, []interface{}) {
	var parts []string
	var args []interface{}

	if set.Has(models.VisibilityDeleted) {
		parts = append(parts, table+".deleted_at IS NOT NULL")
	}

	var live []models.Status
	if set.Has(models.VisibilityActive) {
		live = append(live, models.StatusActive)
	}
	if set.Has(models.VisibilityArchived) {
		live = append(live, models.StatusArchived)
	}
	if len(live) > 0 {
		parts = append(parts, "("+table+".deleted_at IS NULL AND "+table+".status IN ?)")
		args = append(args, live)
	}

	if len(parts) == 0 {
		return "1 = 0", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// searchClause matches term as a case-insensitive substring of any column.
func searchClause(columns []string, term string) (string, []interface{}) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE ? ESCAPE '!'"
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func escapeLike(term string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(term)
}

// sortClause resolves "column|direction" against the kind's whitelist.
// Anything unrecognized falls back to id DESC; id DESC always breaks ties.
func sortClause(kind *Kind, raw string) string {
	idDesc := kind.column("id") + " DESC"

	column, direction, _ := strings.Cut(raw, "|")
	qualified, known := kind.SortColumns[strings.TrimSpace(column)]
	if !known {
		return idDesc
	}

	dir := "ASC"
	if direction == "dsc" {
		dir = "DESC"
	}
	if qualified == kind.column("id") {
		return qualified + " " + dir
	}
	return qualified + " " + dir + ", " + idDesc
}
