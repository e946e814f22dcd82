package report

import (
	"strings"

	"github.com/lox/towerdash/internal/models"
)

// DefaultPreviewLimit is how many rows are shown when no search is active.
const DefaultPreviewLimit = 5

// Query holds the caller's current filter parameters.
type Query struct {
	Range        DateRange
	Search       string
	PreviewLimit int // <= 0 means DefaultPreviewLimit
}

// FilteredView is the result of applying a Query to the full dataset.
type FilteredView struct {
	// Rows is what renderers consume: Matched, cut to the preview limit
	// when Truncated.
	Rows []models.TowerRecord
	// Matched is every row that passed the date and search filters.
	Matched []models.TowerRecord

	Truncated    bool
	RangeApplied bool
	PartialRange bool
	Search       string
	Range        DateRange
}

// Len returns the number of rows exposed to the renderers.
func (v *FilteredView) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Rows)
}

// Empty reports whether nothing matched.
func (v *FilteredView) Empty() bool {
	return v.Len() == 0
}

// Filter applies the date range, then the search term, then the preview
// policy. The view is always built fresh from records; records itself is
// never modified.
func Filter(records []models.TowerRecord, q Query) (*FilteredView, error) {
	byDate, applied, err := FilterByDate(records, q.Range)
	if err != nil {
		return nil, err
	}

	term := strings.TrimSpace(q.Search)
	matched := Search(byDate, term)

	view := &FilteredView{
		Rows:         matched,
		Matched:      matched,
		RangeApplied: applied,
		PartialRange: q.Range.Partial(),
		Search:       term,
		Range:        q.Range,
	}

	limit := q.PreviewLimit
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if term == "" && len(matched) > limit {
		view.Rows = matched[:limit:limit]
		view.Truncated = true
	}
	return view, nil
}

// FilterByDate keeps records whose timestamp falls on a date inside rng.
// A partial or empty range is not applied: records come back unchanged
// with applied=false.
func FilterByDate(records []models.TowerRecord, rng DateRange) (out []models.TowerRecord, applied bool, err error) {
	if err := rng.Validate(); err != nil {
		return nil, false, err
	}
	if !rng.Complete() {
		return records, false, nil
	}

	out = make([]models.TowerRecord, 0, len(records))
	for _, rec := range records {
		if rec.Timestamp.IsZero() {
			continue
		}
		if rng.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	return out, true, nil
}

// Search keeps records whose tower ID or operator contains term,
// case-insensitively. An empty term returns records unchanged.
func Search(records []models.TowerRecord, term string) []models.TowerRecord {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return records
	}

	out := make([]models.TowerRecord, 0, len(records))
	for _, rec := range records {
		if containsFold(rec.TowerID, needle) || containsFold(rec.Operator, needle) {
			out = append(out, rec)
		}
	}
	return out
}

// containsFold expects needle already lower-cased. Empty fields never match.
func containsFold(field, needle string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), needle)
}
