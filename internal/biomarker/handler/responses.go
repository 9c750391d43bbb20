package handler

import (
	"time"

	"healthhub/internal/biomarker/insights"
	"healthhub/internal/biomarker/models"
	"healthhub/internal/biomarker/service"
)

// DashboardResponse is the HTTP response for dashboard reads.
type DashboardResponse struct {
	Filter     string              `json:"filter"`
	Sort       string              `json:"sort"`
	Stats      StatsResponse       `json:"stats"`
	Biomarkers []BiomarkerResponse `json:"biomarkers"`
}

type StatsResponse struct {
	Total        int    `json:"total"`
	Normal       int    `json:"normal"`
	Elevated     int    `json:"elevated"`
	Low          int    `json:"low"`
	Critical     int    `json:"critical"`
	LatestUpdate string `json:"latest_update"`
}

// BiomarkerResponse is one dashboard row with its display annotations.
type BiomarkerResponse struct {
	RecordResponse
	Colors            PaletteResponse `json:"colors"`
	StatusDescription string          `json:"status_description"`
	TrendDescription  string          `json:"trend_description"`
}

// RecordResponse is the stored form of a biomarker record.
type RecordResponse struct {
	ID        string       `json:"id"`
	PatientID string       `json:"patient_id"`
	Name      string       `json:"name"`
	Value     models.Value `json:"value"`
	Unit      string       `json:"unit"`
	Status    string       `json:"status"`
	Trend     string       `json:"trend,omitempty"`
	Timestamp string       `json:"timestamp"`
	CreatedAt time.Time    `json:"created_at"`
}

type PaletteResponse struct {
	Text       string `json:"text"`
	Background string `json:"background"`
}

type LegendResponse struct {
	Statuses []LegendEntryResponse `json:"statuses"`
}

type LegendEntryResponse struct {
	Status string          `json:"status"`
	Colors PaletteResponse `json:"colors"`
}

// FromView converts a composed view into the dashboard response.
func FromView(view *insights.View, q service.DashboardQuery) *DashboardResponse {
	items := make([]BiomarkerResponse, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, BiomarkerResponse{
			RecordResponse:    *FromRecord(&item.Record),
			Colors:            fromPalette(item.Palette),
			StatusDescription: item.StatusDescription,
			TrendDescription:  item.TrendDescription,
		})
	}
	return &DashboardResponse{
		Filter: q.Filter,
		Sort:   string(q.Sort),
		Stats: StatsResponse{
			Total:        view.Stats.Total,
			Normal:       view.Stats.Normal,
			Elevated:     view.Stats.Elevated,
			Low:          view.Stats.Low,
			Critical:     view.Stats.Critical,
			LatestUpdate: view.Stats.LatestUpdate,
		},
		Biomarkers: items,
	}
}

// FromRecord converts a stored record to its HTTP form.
func FromRecord(record *models.Record) *RecordResponse {
	return &RecordResponse{
		ID:        record.ID.String(),
		PatientID: record.PatientID.String(),
		Name:      record.Name,
		Value:     record.Value,
		Unit:      record.Unit,
		Status:    string(record.Status),
		Trend:     string(record.Trend),
		Timestamp: record.Timestamp,
		CreatedAt: record.CreatedAt,
	}
}

func FromLegend(entries []insights.LegendEntry) *LegendResponse {
	out := make([]LegendEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, LegendEntryResponse{
			Status: string(entry.Status),
			Colors: fromPalette(entry.Palette),
		})
	}
	return &LegendResponse{Statuses: out}
}

func fromPalette(p insights.Palette) PaletteResponse {
	return PaletteResponse{Text: p.Text, Background: p.Background}
}
