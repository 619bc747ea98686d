package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/skyvolt/fleetmon/api/growatt"
	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func newTestServer(t *testing.T) (*Server, repo.AlertRepo) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := infra.NewGormDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	alertRepo := repo.NewAlertRepo(db)
	srv := New(Config{
		Port:         0,
		CredRepo:     repo.NewCredentialRepo(db),
		StationRepo:  repo.NewStationRepo(db),
		InverterRepo: repo.NewInverterRepo(db),
		Telemetry:    repo.NewTelemetryRepo(db),
		AlertRepo:    alertRepo,
	})
	return srv, alertRepo
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	srv.router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "healthy")
}

func TestCreateCredentialValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "valid brand",
			body: `{"brand_code":"growatt","account_id":"fleet@example.com","api_key":"token"}`,
			want: http.StatusCreated,
		},
		{
			name: "unknown brand",
			body: `{"brand_code":"sunpower","account_id":"fleet@example.com"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "missing account",
			body: `{"brand_code":"growatt"}`,
			want: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(srv, http.MethodPost, "/api/v1/credentials", tc.body)
			assert.Equal(t, tc.want, resp.Code)
		})
	}
}

func TestAlertLifecycleEndpoints(t *testing.T) {
	srv, alertRepo := newTestServer(t)

	alert := &model.Alert{
		InverterID:  pointy.Int64(1),
		Type:        model.AlertTypeFault,
		Title:       "Inverter SN1 fault",
		Description: "device reported fault state",
		OccurredAt:  time.Now(),
	}
	require.NoError(t, alertRepo.Create(alert))

	resp := do(srv, http.MethodPost, fmt.Sprintf("/api/v1/alerts/%d/acknowledge", alert.ID), `{"by":"operator"}`)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(srv, http.MethodPost, fmt.Sprintf("/api/v1/alerts/%d/resolve", alert.ID), `{"notes":"replaced fuse"}`)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(srv, http.MethodPost, "/api/v1/alerts/9999/acknowledge", `{"by":"operator"}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Acknowledge without a caller identity is rejected.
	resp = do(srv, http.MethodPost, fmt.Sprintf("/api/v1/alerts/%d/acknowledge", alert.ID), `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListDataPointsRejectsBadTimestamps(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(srv, http.MethodGet, "/api/v1/inverters/1/datapoints?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(srv, http.MethodGet, "/api/v1/inverters/1/datapoints", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAlertFilterQuery(t *testing.T) {
	srv, alertRepo := newTestServer(t)

	first := &model.Alert{InverterID: pointy.Int64(1), Type: model.AlertTypeFault, Title: "fault", OccurredAt: time.Now()}
	second := &model.Alert{InverterID: pointy.Int64(2), Type: model.AlertTypeOffline, Title: "offline", OccurredAt: time.Now()}
	require.NoError(t, alertRepo.Create(first))
	require.NoError(t, alertRepo.Create(second))
	require.NoError(t, alertRepo.Resolve(second.ID, "", time.Now()))

	resp := do(srv, http.MethodGet, "/api/v1/alerts?type=fault", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "fault")
	assert.NotContains(t, resp.Body.String(), "offline")

	resp = do(srv, http.MethodGet, "/api/v1/alerts?active=true", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "offline")

	resp = do(srv, http.MethodGet, "/api/v1/alerts?inverter_id=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
