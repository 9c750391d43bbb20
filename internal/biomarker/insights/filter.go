package insights

import "healthhub/internal/biomarker/models"

// FilterAll selects every record.
const FilterAll = "all"

// Filter returns the records whose status equals token, in input order.
// FilterAll returns a copy of the whole list; tokens outside the status set
// match nothing.
func Filter(records []models.Record, token string) []models.Record {
	if token == FilterAll {
		out := make([]models.Record, len(records))
		copy(out, records)
		return out
	}
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if string(r.Status) == token {
			out = append(out, r)
		}
	}
	return out
}

// IsFilterToken reports whether token is FilterAll or a known status.
func IsFilterToken(token string) bool {
	return token == FilterAll || models.Status(token).IsValid()
}
