package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"healthhub/internal/biomarker/handler/mocks"
	"healthhub/internal/biomarker/insights"
	"healthhub/internal/biomarker/models"
	"healthhub/internal/biomarker/service"
	id "healthhub/pkg/domain"
	dErrors "healthhub/pkg/domain-errors"
	"healthhub/pkg/testutil"
)

type BiomarkerHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router

	patientUser id.UserID
	patientID   id.PatientID
	doctorUser  id.UserID
}

func TestBiomarkerHandlerSuite(t *testing.T) {
	suite.Run(t, new(BiomarkerHandlerSuite))
}

func (s *BiomarkerHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)

	s.patientUser = id.UserID(uuid.New())
	s.patientID = id.PatientFor(s.patientUser)
	s.doctorUser = id.UserID(uuid.New())
}

func sampleView() *insights.View {
	record := models.Record{
		ID:        id.RecordID(uuid.New()),
		Name:      "Glucose",
		Value:     models.NumberValue(101),
		Unit:      "mg/dL",
		Status:    models.StatusElevated,
		Trend:     models.TrendUp,
		Timestamp: "2024-03-01T08:00:00Z",
	}
	return &insights.View{
		Stats: insights.Stats{Total: 1, Elevated: 1, LatestUpdate: "3/1/2024"},
		Items: []insights.Item{{
			Record:            record,
			Palette:           insights.Classify(record.Status),
			StatusDescription: insights.DescribeStatus(record.Status, record.Name),
			TrendDescription:  insights.DescribeTrend(record.Trend, record.Status),
		}},
	}
}

// =============================================================================
// Dashboard
// =============================================================================

func (s *BiomarkerHandlerSuite) TestDashboard() {
	s.Run("defaults filter and sort", func() {
		s.service.EXPECT().Dashboard(gomock.Any(), s.patientID, service.DashboardQuery{
			Filter: insights.FilterAll,
			Sort:   insights.SortRecent,
		}).Return(sampleView(), nil)

		req := testutil.AsDoctor(testutil.NewRequest(s.T(), http.MethodGet, "/patients/"+s.patientID.String()+"/biomarkers"), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[DashboardResponse](s.T(), rr)
		s.Equal("all", resp.Filter)
		s.Equal("recent", resp.Sort)
		s.Equal(1, resp.Stats.Elevated)
		s.Equal("3/1/2024", resp.Stats.LatestUpdate)
		s.Require().Len(resp.Biomarkers, 1)
		s.Equal("Glucose", resp.Biomarkers[0].Name)
		s.Equal("text-amber-700", resp.Biomarkers[0].Colors.Text)
		s.NotEmpty(resp.Biomarkers[0].TrendDescription)
	})

	s.Run("passes query tokens through normalized", func() {
		s.service.EXPECT().Dashboard(gomock.Any(), s.patientID, service.DashboardQuery{
			Filter: "critical",
			Sort:   insights.SortStatus,
		}).Return(&insights.View{Stats: insights.Stats{LatestUpdate: insights.NoData}}, nil)

		req := testutil.AsDoctor(testutil.NewRequest(s.T(), http.MethodGet, "/patients/"+s.patientID.String()+"/biomarkers?filter=Critical&sort=STATUS"), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[DashboardResponse](s.T(), rr)
		s.NotNil(resp.Biomarkers)
		s.Empty(resp.Biomarkers)
	})

	s.Run("invalid patient id is rejected", func() {
		req := testutil.AsDoctor(testutil.NewRequest(s.T(), http.MethodGet, "/patients/not-a-uuid/biomarkers"), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("service errors map to status codes", func() {
		s.service.EXPECT().Dashboard(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "patients may only access their own records"))

		other := id.UserID(uuid.New())
		req := testutil.AsPatient(testutil.NewRequest(s.T(), http.MethodGet, "/patients/"+s.patientID.String()+"/biomarkers"), other)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("internal errors hide their description", func() {
		s.service.EXPECT().Dashboard(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(context.DeadlineExceeded, dErrors.CodeInternal, "failed to load records"))

		req := testutil.AsDoctor(testutil.NewRequest(s.T(), http.MethodGet, "/patients/"+s.patientID.String()+"/biomarkers"), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		errResp := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal(string(dErrors.CodeInternal), errResp["error"])
		s.Empty(errResp["error_description"])
	})
}

func (s *BiomarkerHandlerSuite) TestMyDashboard() {
	s.Run("patient reads own dashboard", func() {
		s.service.EXPECT().Dashboard(gomock.Any(), s.patientID, gomock.Any()).Return(sampleView(), nil)

		req := testutil.AsPatient(testutil.NewRequest(s.T(), http.MethodGet, "/me/biomarkers"), s.patientUser)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("doctor has no personal dashboard", func() {
		req := testutil.AsDoctor(testutil.NewRequest(s.T(), http.MethodGet, "/me/biomarkers"), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("anonymous is unauthorized", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/me/biomarkers"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

// =============================================================================
// Record
// =============================================================================

func (s *BiomarkerHandlerSuite) TestRecord() {
	path := "/patients/" + s.patientID.String() + "/biomarkers"

	s.Run("valid record returns 201", func() {
		createdAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		s.service.EXPECT().Record(gomock.Any(), s.patientID, models.RecordInput{
			Name:      "Vitamin D",
			Value:     models.TextValue("insufficient"),
			Unit:      "",
			Status:    models.StatusLow,
			Trend:     models.TrendDown,
			Timestamp: "2024-03-01",
		}).Return(&models.Record{
			ID:        id.RecordID(uuid.New()),
			PatientID: s.patientID,
			Name:      "Vitamin D",
			Value:     models.TextValue("insufficient"),
			Status:    models.StatusLow,
			Trend:     models.TrendDown,
			Timestamp: "2024-03-01",
			CreatedAt: createdAt,
		}, nil)

		body := map[string]any{
			"name":      "Vitamin D",
			"value":     "insufficient",
			"status":    "low",
			"trend":     "down",
			"timestamp": "2024-03-01",
		}
		req := testutil.AsPatient(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.patientUser)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[RecordResponse](s.T(), rr)
		s.Equal("Vitamin D", resp.Name)
		s.Equal("insufficient", resp.Value.Text)
		s.Equal(s.patientID.String(), resp.PatientID)
		s.True(createdAt.Equal(resp.CreatedAt))
	})

	s.Run("missing fields fail validation", func() {
		body := map[string]any{"name": "LDL", "value": 120}
		req := testutil.AsDoctor(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("unit length counts characters", func() {
		s.service.EXPECT().Record(gomock.Any(), s.patientID, gomock.Any()).
			Return(&models.Record{ID: id.RecordID(uuid.New()), PatientID: s.patientID, Name: "Glucose"}, nil)

		body := map[string]any{"name": "Glucose", "value": 5, "unit": strings.Repeat("µ", 32), "status": "normal", "timestamp": "2024-03-01"}
		req := testutil.AsDoctor(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)

		body["unit"] = strings.Repeat("µ", 33)
		req = testutil.AsDoctor(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.doctorUser)
		rr = testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("malformed json is a bad request", func() {
		req := testutil.AsDoctor(testutil.NewRequestWithBody(s.T(), http.MethodPost, path, "{"), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("service validation error is surfaced", func() {
		s.service.EXPECT().Record(gomock.Any(), s.patientID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "status must be one of normal, elevated, low, critical"))

		body := map[string]any{"name": "LDL", "value": 120, "status": "weird", "timestamp": "2024-03-01"}
		req := testutil.AsDoctor(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.doctorUser)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func (s *BiomarkerHandlerSuite) TestLegend() {
	s.service.EXPECT().Legend(gomock.Any()).Return(insights.Legend())

	req := testutil.AsPatient(testutil.NewRequest(s.T(), http.MethodGet, "/biomarkers/legend"), s.patientUser)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[LegendResponse](s.T(), rr)
	s.Require().Len(resp.Statuses, 4)
	s.Equal("normal", resp.Statuses[0].Status)
	s.Equal("bg-green-100", resp.Statuses[0].Colors.Background)
}
