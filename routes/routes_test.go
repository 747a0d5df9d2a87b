package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gympro-backend/controllers"
	"gympro-backend/repository/memory"
	"gympro-backend/services"
	"gympro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	members := services.NewMemberService(store, logger)
	memberships := services.NewMembershipService(store, logger)
	payments := services.NewPaymentService(store, logger)
	attendance := services.NewAttendanceService(store, logger)
	lifecycle := services.NewLifecycleService(store.Memberships, nil)
	dashboard := services.NewDashboardService(store, lifecycle)
	auth := services.NewAuthService(store.Users, utils.BcryptHasher{Cost: bcrypt.MinCost}, 0, logger)

	ctx := context.Background()
	require.NoError(t, memberships.SeedDefaultTypes(ctx))
	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "admin-password"))

	tokens := utils.TokenConfig{Secret: "test-secret", Expiry: time.Hour}
	router := SetupRouter(Controllers{
		Auth:       &controllers.AuthController{Auth: auth, Tokens: tokens, Logger: logger},
		Members:    &controllers.MemberController{Members: members, Memberships: memberships, Payments: payments, Attendance: attendance, Lifecycle: lifecycle, Clock: services.SystemClock, Logger: logger},
		Membership: &controllers.MembershipController{Memberships: memberships, Lifecycle: lifecycle, Clock: services.SystemClock, Logger: logger},
		Payments:   &controllers.PaymentController{Payments: payments, Logger: logger},
		Attendance: &controllers.AttendanceController{Attendance: attendance, Logger: logger},
		Dashboard:  &controllers.DashboardController{Dashboard: dashboard, Logger: logger},
		Reports:    &controllers.ReportController{Dashboard: dashboard, Logger: logger},
		Reminders:  &controllers.ReminderController{Logger: logger},
	}, []string{"http://localhost:3000"}, tokens, logger)

	srv := &testServer{router: router}
	var login struct {
		Token string `json:"token"`
	}
	srv.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "admin-password"}, http.StatusOK, &login)
	require.NotEmpty(t, login.Token)
	srv.token = login.Token
	return srv
}

// do sends body as JSON, checks the status and decodes the response into out.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, wantStatus, w.Code, w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
}

func TestAPIRequiresToken(t *testing.T) {
	srv := newTestServer(t)
	srv.token = ""
	srv.do(t, http.MethodGet, "/api/members", nil, http.StatusUnauthorized, nil)

	srv.token = "not-a-jwt"
	srv.do(t, http.MethodGet, "/api/members", nil, http.StatusUnauthorized, nil)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.token = ""
	srv.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized, nil)
}

func TestMe(t *testing.T) {
	srv := newTestServer(t)
	var body struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	srv.do(t, http.MethodGet, "/auth/me", nil, http.StatusOK, &body)
	assert.Equal(t, "admin", body.User.Username)
}

func TestMemberLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	var member struct {
		ID               uuid.UUID `json:"id"`
		MembershipNumber string    `json:"membershipNumber"`
		Status           string    `json:"status"`
	}
	srv.do(t, http.MethodPost, "/api/members", map[string]string{
		"firstName": "Asha",
		"lastName":  "Rao",
		"phone":     "+15551234567",
	}, http.StatusCreated, &member)
	assert.Equal(t, "GYM001", member.MembershipNumber)
	assert.Equal(t, "Active", member.Status)

	srv.do(t, http.MethodPost, "/api/members", map[string]string{
		"firstName": "Ben",
		"lastName":  "Okafor",
		"phone":     "call me",
	}, http.StatusBadRequest, nil)

	var conflict map[string]string
	srv.do(t, http.MethodPost, "/api/members", map[string]string{
		"membershipNumber": "GYM001",
		"firstName":        "Ben",
		"lastName":         "Okafor",
		"phone":            "+15559876543",
	}, http.StatusConflict, &conflict)
	assert.Equal(t, "unique", conflict["rule"])

	var found []map[string]interface{}
	srv.do(t, http.MethodGet, "/api/members?q=asha", nil, http.StatusOK, &found)
	assert.Len(t, found, 1)
	srv.do(t, http.MethodGet, "/api/members/by-number/GYM001", nil, http.StatusOK, nil)

	var types []struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	srv.do(t, http.MethodGet, "/api/membership-types", nil, http.StatusOK, &types)
	var monthly uuid.UUID
	for _, mt := range types {
		if mt.Name == "Monthly" {
			monthly = mt.ID
		}
	}
	require.NotEqual(t, uuid.Nil, monthly)

	srv.do(t, http.MethodPost, "/api/memberships", map[string]interface{}{
		"memberId":         member.ID,
		"membershipTypeId": monthly,
		"paymentMethod":    "Cash",
	}, http.StatusCreated, nil)

	var payments []struct {
		ReceiptNumber string `json:"receiptNumber"`
		Status        string `json:"status"`
	}
	srv.do(t, http.MethodGet, "/api/members/"+member.ID.String()+"/payments", nil, http.StatusOK, &payments)
	require.Len(t, payments, 1)
	assert.True(t, strings.HasPrefix(payments[0].ReceiptNumber, "REC"))
	assert.Equal(t, "Paid", payments[0].Status)

	var active []map[string]interface{}
	srv.do(t, http.MethodGet, "/api/memberships/active", nil, http.StatusOK, &active)
	assert.Len(t, active, 1)

	checkIn := map[string]interface{}{"memberId": member.ID}
	srv.do(t, http.MethodPost, "/api/attendance/check-in", checkIn, http.StatusCreated, nil)
	var twice map[string]string
	srv.do(t, http.MethodPost, "/api/attendance/check-in", checkIn, http.StatusBadRequest, &twice)
	assert.Equal(t, "not_checked_in", twice["rule"])
	srv.do(t, http.MethodPost, "/api/attendance/check-out", checkIn, http.StatusOK, nil)
	srv.do(t, http.MethodPost, "/api/attendance/check-out", checkIn, http.StatusNotFound, nil)

	var stats struct {
		TotalMembers  int64 `json:"totalMembers"`
		ActiveMembers int64 `json:"activeMembers"`
		TodayCheckIns int64 `json:"todayCheckIns"`
	}
	srv.do(t, http.MethodGet, "/api/dashboard", nil, http.StatusOK, &stats)
	assert.Equal(t, int64(1), stats.TotalMembers)
	assert.Equal(t, int64(1), stats.ActiveMembers)
	assert.Equal(t, int64(1), stats.TodayCheckIns)

	var trend []map[string]interface{}
	srv.do(t, http.MethodGet, "/api/dashboard/attendance-trend?days=3", nil, http.StatusOK, &trend)
	assert.Len(t, trend, 3)

	srv.do(t, http.MethodDelete, "/api/members/"+member.ID.String(), nil, http.StatusNoContent, nil)
	srv.do(t, http.MethodGet, "/api/members/"+member.ID.String(), nil, http.StatusNotFound, nil)
	srv.do(t, http.MethodDelete, "/api/members/"+member.ID.String(), nil, http.StatusNoContent, nil)
}

func TestMalformedIDs(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodGet, "/api/members/not-a-uuid", nil, http.StatusBadRequest, nil)
	srv.do(t, http.MethodPost, "/api/memberships/"+uuid.NewString()+"/cancel", nil, http.StatusNotFound, nil)
}

func TestRemindersUnconfigured(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/reminders/run", nil, http.StatusServiceUnavailable, nil)
}

type membershipView struct {
	ID              uuid.UUID `json:"id"`
	Status          string    `json:"status"`
	EffectiveStatus string    `json:"effectiveStatus"`
	DaysUntilExpiry int       `json:"daysUntilExpiry"`
	ExpiringSoon    bool      `json:"expiringSoon"`
}

func (s *testServer) typeID(t *testing.T, name string) uuid.UUID {
	t.Helper()
	var types []struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	s.do(t, http.MethodGet, "/api/membership-types", nil, http.StatusOK, &types)
	for _, mt := range types {
		if mt.Name == name {
			return mt.ID
		}
	}
	t.Fatalf("no membership type %q", name)
	return uuid.Nil
}

func (s *testServer) createMember(t *testing.T, first string) uuid.UUID {
	t.Helper()
	var member struct {
		ID uuid.UUID `json:"id"`
	}
	s.do(t, http.MethodPost, "/api/members", map[string]string{
		"firstName": first,
		"lastName":  "Rao",
		"phone":     "+15551234567",
	}, http.StatusCreated, &member)
	return member.ID
}

func TestMembershipResponsesCarryEffectiveState(t *testing.T) {
	srv := newTestServer(t)
	memberID := srv.createMember(t, "Asha")
	now := time.Now().UTC()

	var soon membershipView
	srv.do(t, http.MethodPost, "/api/memberships", map[string]interface{}{
		"memberId":         memberID,
		"membershipTypeId": srv.typeID(t, "Monthly"),
		"startDate":        now.Add(-26 * 24 * time.Hour),
		"paymentMethod":    "Cash",
	}, http.StatusCreated, &soon)
	assert.Equal(t, "Active", soon.EffectiveStatus)
	assert.Equal(t, 3, soon.DaysUntilExpiry)
	assert.True(t, soon.ExpiringSoon)

	var lapsed membershipView
	srv.do(t, http.MethodPost, "/api/memberships", map[string]interface{}{
		"memberId":         memberID,
		"membershipTypeId": srv.typeID(t, "Monthly"),
		"startDate":        now.Add(-60 * 24 * time.Hour),
		"paymentMethod":    "Cash",
	}, http.StatusCreated, &lapsed)
	assert.Equal(t, "Active", lapsed.Status)
	assert.Equal(t, "Expired", lapsed.EffectiveStatus)
	assert.False(t, lapsed.ExpiringSoon)

	var frozen membershipView
	srv.do(t, http.MethodPost, "/api/memberships", map[string]interface{}{
		"memberId":         memberID,
		"membershipTypeId": srv.typeID(t, "Quarterly"),
		"startDate":        now.Add(-24 * time.Hour),
		"paymentMethod":    "Cash",
	}, http.StatusCreated, &frozen)
	srv.do(t, http.MethodPost, "/api/memberships/"+frozen.ID.String()+"/freezes", map[string]interface{}{
		"startDate": now.Add(-time.Hour),
		"endDate":   now.Add(24 * time.Hour),
	}, http.StatusCreated, nil)

	var listed []membershipView
	srv.do(t, http.MethodGet, "/api/members/"+memberID.String()+"/memberships", nil, http.StatusOK, &listed)
	require.Len(t, listed, 3)
	byID := map[uuid.UUID]membershipView{}
	for _, v := range listed {
		byID[v.ID] = v
	}
	assert.Equal(t, "Active", byID[soon.ID].EffectiveStatus)
	assert.Equal(t, "Expired", byID[lapsed.ID].EffectiveStatus)
	assert.Equal(t, "Frozen", byID[frozen.ID].EffectiveStatus)
	assert.Equal(t, "Active", byID[frozen.ID].Status)

	var expiring []membershipView
	srv.do(t, http.MethodGet, "/api/memberships/expiring?days=7", nil, http.StatusOK, &expiring)
	require.Len(t, expiring, 1)
	assert.Equal(t, soon.ID, expiring[0].ID)
	assert.True(t, expiring[0].ExpiringSoon)
}

func TestDayWindowsAreBounded(t *testing.T) {
	srv := newTestServer(t)
	memberID := srv.createMember(t, "Asha")
	srv.do(t, http.MethodPost, "/api/memberships", map[string]interface{}{
		"memberId":         memberID,
		"membershipTypeId": srv.typeID(t, "Annual"),
		"paymentMethod":    "Cash",
	}, http.StatusCreated, nil)

	var expiring []membershipView
	srv.do(t, http.MethodGet, "/api/memberships/expiring?days=200000", nil, http.StatusOK, &expiring)
	assert.Len(t, expiring, 1)

	var rows []map[string]interface{}
	srv.do(t, http.MethodGet, "/api/dashboard/expiring?days=200000", nil, http.StatusOK, &rows)
	assert.Len(t, rows, 1)

	var trend []map[string]interface{}
	srv.do(t, http.MethodGet, "/api/dashboard/attendance-trend?days=366", nil, http.StatusOK, &trend)
	assert.Len(t, trend, services.MaxTrendDays)
	srv.do(t, http.MethodGet, "/api/dashboard/attendance-trend?days=367", nil, http.StatusBadRequest, nil)
	srv.do(t, http.MethodGet, "/api/dashboard/attendance-trend?days=1000000000", nil, http.StatusBadRequest, nil)
}

func TestGetMembershipType(t *testing.T) {
	srv := newTestServer(t)
	id := srv.typeID(t, "Quarterly")

	var mt struct {
		Name          string `json:"name"`
		MaxFreezeDays int    `json:"maxFreezeDays"`
	}
	srv.do(t, http.MethodGet, "/api/membership-types/"+id.String(), nil, http.StatusOK, &mt)
	assert.Equal(t, "Quarterly", mt.Name)
	assert.Equal(t, 7, mt.MaxFreezeDays)

	srv.do(t, http.MethodGet, "/api/membership-types/"+uuid.NewString(), nil, http.StatusNotFound, nil)
	srv.do(t, http.MethodGet, "/api/membership-types/nope", nil, http.StatusBadRequest, nil)
}
