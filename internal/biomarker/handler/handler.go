package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"healthhub/internal/biomarker/insights"
	"healthhub/internal/biomarker/models"
	"healthhub/internal/biomarker/service"
	id "healthhub/pkg/domain"
	dErrors "healthhub/pkg/domain-errors"
	"healthhub/pkg/platform/httputil"
	"healthhub/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/biomarker-mocks.go -package=mocks Service

// Service defines the interface for biomarker operations.
type Service interface {
	Dashboard(ctx context.Context, patientID id.PatientID, q service.DashboardQuery) (*insights.View, error)
	Record(ctx context.Context, patientID id.PatientID, in models.RecordInput) (*models.Record, error)
	Legend(ctx context.Context) []insights.LegendEntry
}

// Handler wires biomarker endpoints to the biomarker service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a biomarker handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts biomarker endpoints on the router. Callers are expected to
// install authentication middleware on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/patients/{patientID}/biomarkers", h.HandleDashboard)
	r.Post("/patients/{patientID}/biomarkers", h.HandleRecord)
	r.Get("/me/biomarkers", h.HandleMyDashboard)
	r.Get("/biomarkers/legend", h.HandleLegend)
}

// HandleDashboard handles GET /patients/{patientID}/biomarkers.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	patientID, err := id.ParsePatientID(chi.URLParam(r, "patientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeDashboard(w, r, patientID)
}

// HandleMyDashboard handles GET /me/biomarkers for the authenticated patient.
func (h *Handler) HandleMyDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if requestcontext.Role(ctx) != id.RolePatient {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only patients have a personal dashboard"))
		return
	}
	h.writeDashboard(w, r, id.PatientFor(userID))
}

func (h *Handler) writeDashboard(w http.ResponseWriter, r *http.Request, patientID id.PatientID) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	q := parseDashboardQuery(r)
	view, err := h.service.Dashboard(ctx, patientID, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard failed",
			"request_id", requestID,
			"patient_id", patientID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromView(view, q))
}

// HandleRecord handles POST /patients/{patientID}/biomarkers.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	patientID, err := id.ParsePatientID(chi.URLParam(r, "patientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Record(ctx, patientID, req.ToInput())
	if err != nil {
		h.logger.WarnContext(ctx, "record biomarker failed",
			"request_id", requestID,
			"patient_id", patientID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromRecord(record))
}

// HandleLegend handles GET /biomarkers/legend.
func (h *Handler) HandleLegend(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromLegend(h.service.Legend(r.Context())))
}

func parseDashboardQuery(r *http.Request) service.DashboardQuery {
	query := r.URL.Query()
	q := service.DashboardQuery{
		Filter: strings.ToLower(strings.TrimSpace(query.Get("filter"))),
		Sort:   insights.SortKey(strings.ToLower(strings.TrimSpace(query.Get("sort")))),
	}
	if q.Filter == "" {
		q.Filter = insights.FilterAll
	}
	if q.Sort == "" {
		q.Sort = insights.SortRecent
	}
	return q
}
