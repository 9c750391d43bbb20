package insights

import "healthhub/internal/biomarker/models"

const trendStableText = "No significant change since the last measurement"

// trendTable holds every (direction, status) sentence. Rows are directions,
// columns statuses; both axes are closed so lookups cannot fall through.
var trendTable = map[models.Trend]map[models.Status]string{
	models.TrendUp: {
		models.StatusNormal:   "Rising, but still within the normal range",
		models.StatusLow:      "Improving: moving up toward the normal range",
		models.StatusElevated: "Worsening: moving further above the normal range",
		models.StatusCritical: "Worsening: critical level is still rising",
	},
	models.TrendDown: {
		models.StatusNormal:   "Falling, but still within the normal range",
		models.StatusLow:      "Worsening: moving further below the normal range",
		models.StatusElevated: "Improving: moving down toward the normal range",
		models.StatusCritical: "Improving: coming down from a critical level",
	},
}

// DescribeTrend returns the trend sentence. A missing or stable direction always
// yields the neutral sentence; status is consulted only for up and down, with
// unknown statuses read as normal.
func DescribeTrend(trend models.Trend, status models.Status) string {
	row, ok := trendTable[trend]
	if !ok {
		return trendStableText
	}
	if text, ok := row[status]; ok {
		return text
	}
	return row[models.StatusNormal]
}
