package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/db/dbtest"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/cache"
)

// Wednesday morning; 2026-05-20 is the following Wednesday.
var testNow = time.Date(2026, 5, 13, 9, 0, 0, 0, time.UTC)

type api struct {
	t      *testing.T
	router *gin.Engine
	logger *audit.Logger
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	cfg := &config.Config{
		JWTSecret:             "test-secret",
		DefaultCommissionRate: 40,
	}

	logger := audit.New(db)

	r := gin.New()
	RegisterRoutes(r, db, cfg, Deps{
		AuditLogger: logger,
		Slots:       cache.NewSlotCache(nil, 0),
		Clock:       clock.Fixed(testNow),
	})

	return &api{t: t, router: r, logger: logger}
}

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (a *api) slots(path string) []any {
	a.t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var out []any
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func id(v any) uint {
	return uint(v.(float64))
}

// salon registers an owner, one 60 minute service open 09:00-12:00 on
// Wednesdays and a client. It returns both tokens and the service id.
func (a *api) salon() (owner, client string, serviceID uint) {
	a.t.Helper()

	code, body := a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"salon_name":     "Studio",
		"salon_slug":     "studio",
		"salon_timezone": "UTC",
		"name":           "Olivia",
		"email":          "owner@example.com",
		"password":       "secret123",
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	owner = body["token"].(string)

	code, body = a.do(http.MethodPost, "/api/me/services", owner, map[string]any{
		"name":         "Cut",
		"duration_min": 60,
		"price":        100,
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	serviceID = id(body["id"])

	code, body = a.do(http.MethodPut, fmt.Sprintf("/api/me/services/%d/availability", serviceID), owner, map[string]any{
		"windows": []map[string]any{{
			"dayOfWeek":           3,
			"startTime":           "09:00",
			"endTime":             "12:00",
			"slotDurationMinutes": 60,
			"maxBookingsPerSlot":  1,
		}},
	})
	require.Equal(a.t, http.StatusOK, code, body)

	code, body = a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"account_type": "client",
		"salon_slug":   "studio",
		"name":         "Carla",
		"email":        "client@example.com",
		"password":     "secret123",
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	client = body["token"].(string)

	return owner, client, serviceID
}

func TestBookingFlow(t *testing.T) {
	a := newAPI(t)
	owner, client, serviceID := a.salon()

	slotsPath := fmt.Sprintf("/api/services/%d/availability/2026-05-20", serviceID)
	assert.Len(t, a.slots(slotsPath), 3)

	booking := map[string]any{"service_id": serviceID, "date": "2026-05-20", "time": "10:00"}

	code, body := a.do(http.MethodPost, "/api/bookings", client, booking)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "pending", body["status"])
	bookingID := id(body["id"])

	code, body = a.do(http.MethodPost, "/api/bookings", client, booking)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "slot_unavailable", body["error_code"])

	assert.Len(t, a.slots(slotsPath), 2)

	// Owner-only surfaces stay closed to clients.
	code, _ = a.do(http.MethodGet, "/api/me/salon", client, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.do(http.MethodPatch, fmt.Sprintf("/api/me/bookings/%d/status", bookingID), owner, map[string]any{"action": "cancel"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "cancelled", body["status"])

	assert.Len(t, a.slots(slotsPath), 3)

	code, body = a.do(http.MethodGet, "/api/me/bookings?date=2026-05-20", owner, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["total"])
}

func TestAvailabilityErrors(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(http.MethodGet, "/api/services/abc/availability/2026-05-20", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_serviceId", body["error_code"])

	code, body = a.do(http.MethodGet, "/api/services/99/availability/2026-05-20", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "service_not_found", body["error_code"])
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	a := newAPI(t)
	a.salon()

	code, body := a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"salon_name": "Other",
		"salon_slug": "studio",
		"name":       "Otto",
		"email":      "otto@example.com",
		"password":   "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "slug_already_exists", body["error_code"])

	code, body = a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"account_type": "client",
		"salon_slug":   "studio",
		"name":         "Carla",
		"email":        "client@example.com",
		"password":     "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "email_already_exists", body["error_code"])

	code, body = a.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "client@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_credentials", body["error_code"])
}

func TestWorkSessionFlow(t *testing.T) {
	a := newAPI(t)
	owner, _, serviceID := a.salon()

	code, body := a.do(http.MethodPost, "/api/me/staff", owner, map[string]any{
		"name":              "Sam",
		"email":             "sam@example.com",
		"password":          "secret123",
		"shift_start":       "09:00",
		"shift_end":         "17:00",
		"lunch_break_start": "12:00",
		"lunch_break_end":   "13:00",
		"commission_rate":   50,
		"service_ids":       []uint{serviceID},
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = a.do(http.MethodPost, "/api/me/staff", owner, map[string]any{
		"name":        "Bad",
		"email":       "bad@example.com",
		"password":    "secret123",
		"shift_start": "17:00",
		"shift_end":   "09:00",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_shift", body["error_code"])

	code, body = a.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "sam@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, code, body)
	staff := body["token"].(string)

	code, body = a.do(http.MethodGet, "/api/staff/work/status", staff, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, false, body["isClockedIn"])
	assert.Equal(t, "OffShift", body["currentStatus"])

	code, body = a.do(http.MethodPost, "/api/staff/work/clock-in", staff, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["isClockedIn"])
	assert.Equal(t, "Available", body["currentStatus"])
	assert.EqualValues(t, 480, body["scheduledMinutes"])

	code, body = a.do(http.MethodPost, "/api/staff/work/clock", staff, map[string]any{"action": "clock_in"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_clocked_in", body["error_code"])

	// The PascalCase spelling dispatches the same way.
	code, body = a.do(http.MethodPost, "/api/staff/work/clock", staff, map[string]any{"action": "ClockIn"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_clocked_in", body["error_code"])

	code, body = a.do(http.MethodPost, "/api/staff/work/clock", staff, map[string]any{"action": "dance"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_action", body["error_code"])

	code, body = a.do(http.MethodPost, "/api/staff/work/break/start", staff, nil)
	require.Equal(t, http.StatusOK, code, body)

	code, body = a.do(http.MethodPost, "/api/staff/work/break/start", staff, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "break_already_started", body["error_code"])

	code, body = a.do(http.MethodPost, "/api/staff/work/clock-out", staff, map[string]any{
		"clockTime": testNow.Add(4 * time.Hour).Format(time.RFC3339),
		"notes":     "closing",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, false, body["isClockedIn"])

	code, body = a.do(http.MethodGet, "/api/staff/work/history", staff, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 1, body["total"])
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["daysWorked"])
	assert.EqualValues(t, 30, summary["totalDays"])

	// The owner has no staff profile of their own.
	code, body = a.do(http.MethodPost, "/api/staff/work/clock-in", owner, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "staff_profile_not_found", body["error_code"])

	code, body = a.do(http.MethodGet, "/api/me", staff, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, body["staff"])
}

func TestAuditLogsEndpoint(t *testing.T) {
	a := newAPI(t)
	owner, _, _ := a.salon()

	require.NoError(t, a.logger.Log(audit.Event{SalonID: 1, Action: "salon_updated", Entity: "salon"}))
	require.NoError(t, a.logger.Log(audit.Event{SalonID: 1, Action: "booking_created", Entity: "booking"}))
	require.NoError(t, a.logger.Log(audit.Event{SalonID: 2, Action: "booking_created", Entity: "booking"}))

	code, body := a.do(http.MethodGet, "/api/me/audit-logs?entity=booking", owner, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 1, body["total"])

	code, body = a.do(http.MethodGet, "/api/me/audit-logs?from=yesterday", owner, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_from", body["error_code"])
}
