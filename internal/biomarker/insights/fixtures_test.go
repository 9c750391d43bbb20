package insights

import "healthhub/internal/biomarker/models"

func rec(name string, status models.Status, timestamp string) models.Record {
	return models.Record{Name: name, Status: status, Timestamp: timestamp}
}

func names(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

// sample is the A/B/C list used across the pipeline tests.
func sample() []models.Record {
	return []models.Record{
		rec("A", models.StatusCritical, "2024-01-01"),
		rec("B", models.StatusNormal, "2024-03-01"),
		rec("C", models.StatusElevated, "2024-02-01"),
	}
}
