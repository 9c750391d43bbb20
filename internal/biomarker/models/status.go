package models

// Status is the qualitative classification of a biomarker value.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusElevated Status = "elevated"
	StatusLow      Status = "low"
	StatusCritical Status = "critical"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusNormal, StatusElevated, StatusLow, StatusCritical}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusNormal, StatusElevated, StatusLow, StatusCritical:
		return true
	}
	return false
}

// Trend is the direction of change since the previous measurement.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// IsValid accepts the empty trend, which means no direction was reported.
func (t Trend) IsValid() bool {
	switch t {
	case "", TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}
