package insights

import "time"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseTimestamp reads an ISO-8601 timestamp. ok is false for anything it cannot
// parse; callers treat such records as the earliest possible.
func parseTimestamp(s string) (t time.Time, ok bool) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
