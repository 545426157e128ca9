package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"salonbook-backend/config"
	"salonbook-backend/repository/repotest"
)

type capturingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *capturingNotifier) Send(_ context.Context, to, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to+"|"+body)
	return nil
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	token    string
	notifier *capturingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:                 "8080",
		JWTSecret:            "test-secret",
		JWTExpiry:            time.Hour,
		BcryptCost:           bcrypt.MinCost,
		ReportTimezone:       "UTC",
		SummaryCacheTTL:      time.Minute,
		NotifyVisitReceipts:  true,
		SlowRequestThreshold: time.Second,
	}

	notifier := &capturingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := NewDependencies(cfg, repotest.NewDB(t), nil, notifier, logger)
	if err != nil {
		t.Fatal(err)
	}

	return &testServer{t: t, router: SetupRouter(deps), notifier: notifier}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) mustDo(method, path string, body interface{}, status int, out interface{}) {
	s.t.Helper()
	w := s.do(method, path, body)
	if w.Code != status {
		s.t.Fatalf("%s %s: status = %d, want %d, body = %s", method, path, w.Code, status, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			s.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

func (s *testServer) login() {
	s.t.Helper()
	var auth struct {
		Token string `json:"token"`
	}
	s.mustDo(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "Owner@Example.com",
		"password": "supersecret",
		"name":     "Owner",
	}, http.StatusCreated, &auth)
	if auth.Token == "" {
		s.t.Fatal("register returned no token")
	}
	s.token = auth.Token
}

type idResponse struct {
	ID string `json:"id"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "running") {
		t.Errorf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(http.MethodGet, "/api/clients", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", w.Code)
	}

	s.login()

	var me struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	s.mustDo(http.MethodGet, "/api/auth/me", nil, http.StatusOK, &me)
	if me.User.Email != "owner@example.com" || me.User.Role != "owner" {
		t.Errorf("me = %+v", me.User)
	}

	// Registration closes once an account exists.
	s.mustDo(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "second@example.com", "password": "supersecret",
	}, http.StatusUnauthorized, nil)

	s.token = ""
	s.mustDo(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "owner@example.com", "password": "wrongpassword",
	}, http.StatusUnauthorized, nil)

	var auth struct {
		Token string `json:"token"`
	}
	s.mustDo(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "OWNER@example.com", "password": "supersecret",
	}, http.StatusOK, &auth)
	if auth.Token == "" {
		t.Error("login returned no token")
	}
}

func TestProfileAndPassword(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var updated struct {
		User struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	s.mustDo(http.MethodPut, "/api/auth/profile", map[string]string{
		"name": "  Sana  ", "email": "Sana@Example.com",
	}, http.StatusOK, &updated)
	if updated.User.Name != "Sana" || updated.User.Email != "sana@example.com" {
		t.Errorf("profile = %+v", updated.User)
	}
	s.mustDo(http.MethodPut, "/api/auth/profile", map[string]string{"name": " "}, http.StatusBadRequest, nil)

	s.mustDo(http.MethodPut, "/api/auth/password", map[string]string{
		"currentPassword": "wrongpassword", "newPassword": "evenmoresecret",
	}, http.StatusUnauthorized, nil)
	s.mustDo(http.MethodPut, "/api/auth/password", map[string]string{
		"currentPassword": "supersecret", "newPassword": "short",
	}, http.StatusBadRequest, nil)
	s.mustDo(http.MethodPut, "/api/auth/password", map[string]string{
		"currentPassword": "supersecret", "newPassword": "evenmoresecret",
	}, http.StatusOK, nil)

	s.token = ""
	s.mustDo(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "sana@example.com", "password": "supersecret",
	}, http.StatusUnauthorized, nil)
	s.mustDo(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "sana@example.com", "password": "evenmoresecret",
	}, http.StatusOK, nil)
}

func TestBillingAndSummaryFlow(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var client idResponse
	s.mustDo(http.MethodPost, "/api/clients", map[string]string{
		"name": "Ayesha", "phone": "+923001234567",
	}, http.StatusCreated, &client)

	var haircut, color idResponse
	s.mustDo(http.MethodPost, "/api/services", map[string]interface{}{"name": "Haircut", "price": 500, "category": "Hair"}, http.StatusCreated, &haircut)
	s.mustDo(http.MethodPost, "/api/services", map[string]interface{}{"name": "Color", "price": 300}, http.StatusCreated, &color)
	s.mustDo(http.MethodPost, "/api/services", map[string]interface{}{"name": "Haircut", "price": 1}, http.StatusConflict, nil)

	var visit struct {
		ID          string  `json:"id"`
		TotalAmount float64 `json:"totalAmount"`
		Services    []struct {
			ServiceID    string  `json:"serviceId"`
			BasePrice    float64 `json:"basePrice"`
			ChargedPrice float64 `json:"chargedPrice"`
		} `json:"services"`
	}
	s.mustDo(http.MethodPost, "/api/visits", map[string]interface{}{
		"clientId":  client.ID,
		"visitDate": "2025-12-01T14:00:00Z",
		"services": []map[string]interface{}{
			{"serviceId": haircut.ID, "chargedPrice": 450},
			{"serviceId": color.ID, "chargedPrice": nil},
		},
	}, http.StatusCreated, &visit)

	if visit.TotalAmount != 750 {
		t.Errorf("TotalAmount = %v, want 750", visit.TotalAmount)
	}
	if len(visit.Services) != 2 || visit.Services[0].ChargedPrice != 450 || visit.Services[1].ChargedPrice != 300 {
		t.Errorf("lines = %+v", visit.Services)
	}
	if len(s.notifier.sent) != 1 || !strings.HasPrefix(s.notifier.sent[0], "+923001234567|") {
		t.Errorf("receipts = %v", s.notifier.sent)
	}

	s.mustDo(http.MethodPost, "/api/expenses", map[string]interface{}{
		"date": "2025-12-01", "category": "Supplies", "amount": 200,
	}, http.StatusCreated, nil)
	s.mustDo(http.MethodPost, "/api/expenses", map[string]interface{}{
		"category": "Supplies", "amount": -5,
	}, http.StatusBadRequest, nil)

	var summary struct {
		TotalEarnings float64 `json:"totalEarnings"`
		TotalExpenses float64 `json:"totalExpenses"`
		NetProfit     float64 `json:"netProfit"`
		TotalVisits   int     `json:"totalVisits"`
		ByDay         []struct {
			Date     string  `json:"date"`
			Earnings float64 `json:"earnings"`
			Expenses float64 `json:"expenses"`
		} `json:"byDay"`
	}
	s.mustDo(http.MethodGet, "/api/reports/summary?from=2025-12-01&to=2025-12-01", nil, http.StatusOK, &summary)
	if summary.TotalEarnings != 1000-250 || summary.TotalExpenses != 200 || summary.NetProfit != 550 || summary.TotalVisits != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.ByDay) != 1 || summary.ByDay[0].Date != "2025-12-01" {
		t.Errorf("byDay = %+v", summary.ByDay)
	}

	s.mustDo(http.MethodGet, "/api/reports/summary?from=2025-12-01", nil, http.StatusBadRequest, nil)

	w := s.do(http.MethodGet, "/api/reports/summary/export?from=2025-12-01&to=2025-12-01", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "summary-2025-12-01-2025-12-01.xlsx") {
		t.Errorf("export = %d %v", w.Code, w.Header())
	}

	// Deleting the visit removes it from reports.
	s.mustDo(http.MethodDelete, "/api/visits/"+visit.ID, nil, http.StatusOK, nil)
	s.mustDo(http.MethodGet, "/api/reports/summary?from=2025-12-01&to=2025-12-01", nil, http.StatusOK, &summary)
	if summary.TotalEarnings != 0 || summary.TotalVisits != 0 {
		t.Errorf("summary after delete = %+v", summary)
	}
}

func TestVisitRejectsInactiveService(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var client, haircut idResponse
	s.mustDo(http.MethodPost, "/api/clients", map[string]string{"name": "Bilal", "phone": "0300-7654321"}, http.StatusCreated, &client)
	s.mustDo(http.MethodPost, "/api/services", map[string]interface{}{"name": "Haircut", "price": 500}, http.StatusCreated, &haircut)

	var toggled struct {
		Status string `json:"status"`
	}
	s.mustDo(http.MethodPut, "/api/services/toggle/"+haircut.ID, nil, http.StatusOK, &toggled)
	if toggled.Status != "inactive" {
		t.Fatalf("status after toggle = %q", toggled.Status)
	}

	var errBody struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	s.mustDo(http.MethodPost, "/api/visits", map[string]interface{}{
		"clientId": client.ID,
		"services": []map[string]string{{"serviceId": haircut.ID}},
	}, http.StatusBadRequest, &errBody)
	if errBody.Error != "Invalid or inactive service" || errBody.Kind != "invalid_input" {
		t.Errorf("error body = %+v", errBody)
	}

	var visits []json.RawMessage
	s.mustDo(http.MethodGet, "/api/visits/client/"+client.ID, nil, http.StatusOK, &visits)
	if len(visits) != 0 {
		t.Errorf("rejected visit was stored: %d visits", len(visits))
	}

	s.mustDo(http.MethodPost, "/api/visits", map[string]interface{}{
		"clientId": "00000000-0000-0000-0000-000000000000",
		"services": []map[string]string{{"serviceId": haircut.ID}},
	}, http.StatusNotFound, nil)

	// The client check runs before the date is parsed.
	s.mustDo(http.MethodPost, "/api/visits", map[string]interface{}{
		"clientId":  "00000000-0000-0000-0000-000000000000",
		"visitDate": "not-a-date",
		"services":  []map[string]string{{"serviceId": haircut.ID}},
	}, http.StatusNotFound, nil)
}

func TestClientLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var client idResponse
	s.mustDo(http.MethodPost, "/api/clients", map[string]string{"name": "Sara", "phone": "not a phone"}, http.StatusBadRequest, nil)
	s.mustDo(http.MethodPost, "/api/clients", map[string]string{"name": "Sara", "phone": "+15551234567"}, http.StatusCreated, &client)

	var found []idResponse
	s.mustDo(http.MethodGet, "/api/clients/search?q=sar", nil, http.StatusOK, &found)
	if len(found) != 1 || found[0].ID != client.ID {
		t.Errorf("search = %+v", found)
	}
	s.mustDo(http.MethodGet, "/api/clients/search?q=", nil, http.StatusOK, &found)
	if len(found) != 0 {
		t.Errorf("empty search = %+v", found)
	}

	s.mustDo(http.MethodPut, "/api/clients/"+client.ID, map[string]string{"notes": "prefers mornings"}, http.StatusOK, nil)
	s.mustDo(http.MethodDelete, "/api/clients/"+client.ID, nil, http.StatusOK, nil)

	var list []idResponse
	s.mustDo(http.MethodGet, "/api/clients", nil, http.StatusOK, &list)
	if len(list) != 0 {
		t.Errorf("inactive client listed: %+v", list)
	}

	s.mustDo(http.MethodPut, "/api/clients/"+client.ID+"/reactivate", nil, http.StatusOK, nil)
	s.mustDo(http.MethodGet, "/api/clients", nil, http.StatusOK, &list)
	if len(list) != 1 {
		t.Errorf("reactivated client missing: %+v", list)
	}

	s.mustDo(http.MethodGet, "/api/clients/not-a-uuid", nil, http.StatusNotFound, nil)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var client, haircut idResponse
	s.mustDo(http.MethodPost, "/api/clients", map[string]string{"name": "Ayesha", "phone": "+923001234567"}, http.StatusCreated, &client)
	s.mustDo(http.MethodPost, "/api/services", map[string]interface{}{"name": "Haircut", "price": 500}, http.StatusCreated, &haircut)
	s.mustDo(http.MethodPost, "/api/visits", map[string]interface{}{
		"clientId": client.ID,
		"services": []map[string]string{{"serviceId": haircut.ID}},
	}, http.StatusCreated, nil)

	var overview struct {
		ActiveClients   int64   `json:"activeClients"`
		MonthlyEarnings float64 `json:"monthlyEarnings"`
		MonthlyVisits   int64   `json:"monthlyVisits"`
		RecentVisits    []struct {
			ClientName string `json:"clientName"`
			Services   string `json:"services"`
			VisitDate  string `json:"visitDate"`
		} `json:"recentVisits"`
	}
	s.mustDo(http.MethodGet, "/api/dashboard", nil, http.StatusOK, &overview)

	if overview.ActiveClients != 1 || overview.MonthlyEarnings != 500 || overview.MonthlyVisits != 1 {
		t.Errorf("overview = %+v", overview)
	}
	if len(overview.RecentVisits) != 1 || overview.RecentVisits[0].VisitDate != "Today" || overview.RecentVisits[0].Services != "Haircut" {
		t.Errorf("recent = %+v", overview.RecentVisits)
	}

	var logs []json.RawMessage
	s.mustDo(http.MethodGet, "/api/notifications?kind=visit_receipt", nil, http.StatusOK, &logs)
	if len(logs) != 1 {
		t.Errorf("notification logs = %d, want 1", len(logs))
	}
}
