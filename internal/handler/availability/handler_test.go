package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/availability-api/internal/model"
	availabilityService "github.com/clinicflow/availability-api/internal/service/availability"
	"github.com/clinicflow/availability-api/internal/service/integrity"
	"github.com/clinicflow/availability-api/internal/service/slotgen"
	"github.com/clinicflow/availability-api/pkg/dateutil"
)

type stubScheduleRepo struct {
	schedules []*model.DoctorSchedule
}

func (r *stubScheduleRepo) FetchDoctorSchedules(_ context.Context, _ uuid.UUID, weekday int, _, _ *uuid.UUID) ([]*model.DoctorSchedule, error) {
	out := make([]*model.DoctorSchedule, 0, len(r.schedules))
	for _, s := range r.schedules {
		if s.Weekday == weekday {
			out = append(out, s)
		}
	}
	return out, nil
}

type stubAppointmentRepo struct{}

func (r *stubAppointmentRepo) FetchAppointments(_ context.Context, _ uuid.UUID, _ string, _ *uuid.UUID) ([]*model.ExistingAppointment, error) {
	return nil, nil
}

type stubBlockRepo struct{}

func (r *stubBlockRepo) FetchAvailabilityBlocks(_ context.Context, _ uuid.UUID, _ string, _ *uuid.UUID) ([]*model.AvailabilityBlock, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doctorID := uuid.New()
	schedules := make([]*model.DoctorSchedule, 0, 7)
	for wd := 0; wd < 7; wd++ {
		schedules = append(schedules, &model.DoctorSchedule{
			DoctorID:   doctorID,
			DoctorName: "Dr. Chen",
			Weekday:    wd,
			StartTime:  "09:00",
			EndTime:    "12:00",
			Active:     true,
		})
	}

	generator := slotgen.NewService(&stubScheduleRepo{schedules: schedules}, &stubAppointmentRepo{}, &stubBlockRepo{})
	validator := integrity.NewValidator(zerolog.Nop())
	store := availabilityService.NewMemoryStore(time.Minute, time.Minute)
	svc := availabilityService.NewService(generator, validator, store, nil, nil, zerolog.Nop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewHandler(svc, generator).RegisterRoutes(api)
	return engine
}

func futureDate(t *testing.T, daysAhead int) string {
	t.Helper()
	date, err := dateutil.AddDays(dateutil.Today(), daysAhead)
	require.NoError(t, err)
	return date
}

func doRequest(t *testing.T, engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGetAvailability(t *testing.T) {
	engine := newTestRouter(t)
	orgID := uuid.New()
	start := futureDate(t, 7)
	end := futureDate(t, 9)

	target := fmt.Sprintf("/api/v1/availability?organization_id=%s&start_date=%s&end_date=%s", orgID, start, end)
	w := doRequest(t, engine, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status string                      `json:"status"`
		Data   []model.DayAvailabilityData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, start, resp.Data[0].Date)
	assert.Equal(t, 6, resp.Data[0].TotalSlots)
	assert.Equal(t, 6, resp.Data[0].AvailableSlots)
}

func TestGetAvailabilityMissingParams(t *testing.T) {
	engine := newTestRouter(t)
	w := doRequest(t, engine, http.MethodGet, "/api/v1/availability?start_date=2025-06-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailabilityRejectsUnknownRole(t *testing.T) {
	engine := newTestRouter(t)
	orgID := uuid.New()
	target := fmt.Sprintf("/api/v1/availability?organization_id=%s&start_date=%s&end_date=%s&role=banana",
		orgID, futureDate(t, 7), futureDate(t, 8))
	w := doRequest(t, engine, http.MethodGet, target, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailabilityInvalidRange(t *testing.T) {
	engine := newTestRouter(t)
	orgID := uuid.New()
	target := fmt.Sprintf("/api/v1/availability?organization_id=%s&start_date=%s&end_date=%s",
		orgID, futureDate(t, 9), futureDate(t, 7))
	w := doRequest(t, engine, http.MethodGet, target, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSlots(t *testing.T) {
	engine := newTestRouter(t)
	orgID := uuid.New()
	target := fmt.Sprintf("/api/v1/availability/slots?organization_id=%s&date=%s", orgID, futureDate(t, 7))
	w := doRequest(t, engine, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status string           `json:"status"`
		Data   []model.TimeSlot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 6)
	assert.Equal(t, "09:00", resp.Data[0].StartTime)
	assert.True(t, resp.Data[0].Available)
}

func TestGetSlotsInvalidDate(t *testing.T) {
	engine := newTestRouter(t)
	orgID := uuid.New()
	target := fmt.Sprintf("/api/v1/availability/slots?organization_id=%s&date=not-a-date", orgID)
	w := doRequest(t, engine, http.MethodGet, target, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateDataset(t *testing.T) {
	engine := newTestRouter(t)
	body := `{
		"component": "external-feed",
		"source": "import",
		"data": [{"date": "2025-06-02", "slots": [], "total_slots": 4, "available_slots": 9}]
	}`
	w := doRequest(t, engine, http.MethodPost, "/api/v1/availability/validate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status string                 `json:"status"`
		Data   model.ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.IsValid)
	require.NotEmpty(t, resp.Data.Errors)
	assert.Equal(t, model.SeverityCritical, resp.Data.Errors[0].Severity)
}

func TestClearCacheAndStats(t *testing.T) {
	engine := newTestRouter(t)
	orgID := uuid.New()
	target := fmt.Sprintf("/api/v1/availability?organization_id=%s&start_date=%s&end_date=%s",
		orgID, futureDate(t, 7), futureDate(t, 7))
	require.Equal(t, http.StatusOK, doRequest(t, engine, http.MethodGet, target, "").Code)

	var stats struct {
		Data struct {
			Size int `json:"size"`
		} `json:"data"`
	}
	w := doRequest(t, engine, http.MethodGet, "/api/v1/availability/cache/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Data.Size)

	assert.Equal(t, http.StatusOK, doRequest(t, engine, http.MethodDelete, "/api/v1/availability/cache", "").Code)

	w = doRequest(t, engine, http.MethodGet, "/api/v1/availability/cache/stats", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Data.Size)
}
