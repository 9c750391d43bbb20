package insights

import (
	"time"

	"healthhub/internal/biomarker/models"
)

// NoData is the LatestUpdate value when no record has a usable timestamp.
const NoData = "No data"

// latestLayout renders LatestUpdate as a short month/day/year date.
const latestLayout = "1/2/2006"

// Stats summarizes the full record list regardless of the active filter.
type Stats struct {
	Total        int    `json:"total"`
	Normal       int    `json:"normal"`
	Elevated     int    `json:"elevated"`
	Low          int    `json:"low"`
	Critical     int    `json:"critical"`
	LatestUpdate string `json:"latest_update"`
}

// Aggregate counts records per status in one pass and finds the latest
// timestamp. Records with an unknown status count only toward Total;
// unparseable timestamps are ignored for LatestUpdate.
func Aggregate(records []models.Record) Stats {
	stats := Stats{Total: len(records), LatestUpdate: NoData}

	var latest time.Time
	found := false
	for _, r := range records {
		switch r.Status {
		case models.StatusNormal:
			stats.Normal++
		case models.StatusElevated:
			stats.Elevated++
		case models.StatusLow:
			stats.Low++
		case models.StatusCritical:
			stats.Critical++
		}
		if at, ok := parseTimestamp(r.Timestamp); ok && (!found || at.After(latest)) {
			latest = at
			found = true
		}
	}
	if found {
		stats.LatestUpdate = latest.UTC().Format(latestLayout)
	}
	return stats
}
