package audit

import (
	"context"
	"time"

	id "healthhub/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers access to and changes of health data.
	// These require durable storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine system activity such as ingest batches.
	CategoryOperations EventCategory = "operations"
)

// Action names what happened to a patient's health data.
type Action string

const (
	ActionBiomarkerRecorded Action = "biomarker_recorded"
	ActionBiomarkerIngested Action = "biomarker_ingested"
	ActionDashboardViewed   Action = "biomarker_dashboard_viewed"
)

var actionCategories = map[Action]EventCategory{
	ActionBiomarkerRecorded: CategoryCompliance,
	ActionDashboardViewed:   CategoryCompliance,
	ActionBiomarkerIngested: CategoryOperations,
}

// Category returns the action's category. Unknown actions are compliance events.
func (a Action) Category() EventCategory {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryCompliance
}

// Event is emitted from domain logic to capture access to patient data. Keep it
// transport-agnostic so stores can fan out.
type Event struct {
	Timestamp time.Time
	Action    Action
	PatientID id.PatientID
	// ActorID is the authenticated caller; nil for system sources such as ingest.
	ActorID   id.UserID
	ActorRole id.Role
	// Subject identifies the touched resource, e.g. a record ID.
	Subject   string
	RequestID string
	ClientIP  string
}

// Store persists audit events. Implementations join the transaction carried in
// ctx when there is one.
type Store interface {
	Append(ctx context.Context, event Event) error
}
