package insights

import "healthhub/internal/biomarker/models"

// Item is a record decorated with its display text.
type Item struct {
	Record            models.Record
	Palette           Palette
	StatusDescription string
	TrendDescription  string
}

// View is the dashboard derived from one record list.
type View struct {
	Stats Stats
	Items []Item
}

// Compose aggregates stats over the full list, then filters and sorts it and
// decorates each remaining record.
func Compose(records []models.Record, filter string, key SortKey) View {
	selected := Sort(Filter(records, filter), key)
	items := make([]Item, 0, len(selected))
	for _, r := range selected {
		items = append(items, Item{
			Record:            r,
			Palette:           Classify(r.Status),
			StatusDescription: DescribeStatus(r.Status, r.Name),
			TrendDescription:  DescribeTrend(r.Trend, r.Status),
		})
	}
	return View{Stats: Aggregate(records), Items: items}
}
