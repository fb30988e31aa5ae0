package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"snapback/pkg/domain"
	"snapback/pkg/report"
	"snapback/pkg/serrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeCoordinator struct {
	status   domain.ScanStatus
	startErr error
	started  []string
}

func (f *fakeCoordinator) Start(_ context.Context, targetDate string) (domain.ScanStatus, error) {
	f.started = append(f.started, targetDate)
	if f.startErr != nil {
		return domain.ScanStatus{}, f.startErr
	}

	label := targetDate
	if label == "" {
		label = "tomorrow"
	}

	return domain.ScanStatus{Running: true, Message: "Scanning domains for " + label + "..."}, nil
}

func (f *fakeCoordinator) Status() domain.ScanStatus {
	return f.status
}

func newTestEngine(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	return newEngine(deps)
}

// seedStore persists one single-domain report per date and returns the store.
func seedStore(t *testing.T, dates ...string) *report.Store {
	t.Helper()

	store := report.NewStore(t.TempDir())
	for i, date := range dates {
		pages := (i + 1) * 3
		rep := report.Assemble([]domain.Candidate{{
			Name:           "exempel.se",
			TLD:            domain.TLDSe,
			ReleaseAt:      date,
			Available:      domain.AvailabilityAvailable,
			Indexed:        domain.IndexPresent,
			EstimatedPages: &pages,
			IndexSource:    "archive",
			CheckedAt:      time.Date(2026, 1, 14, 18, 30, 0, 0, time.UTC),
		}}, time.Date(2026, 1, 14, 19, 0, 0, 0, time.UTC))

		_, _, err := store.Save(rep, date)
		require.NoError(t, err)
	}

	return store
}

func doRequest(engine http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	return rec
}

func TestListReports(t *testing.T) {
	store := seedStore(t, "2026-01-14", "2026-01-15")
	engine := newTestEngine(t, Deps{Coordinator: &fakeCoordinator{}, Reports: store})

	rec := doRequest(engine, http.MethodGet, "/api/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var dates []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dates))
	require.Equal(t, []string{"2026-01-15", "2026-01-14"}, dates)
}

func TestListReportsEmpty(t *testing.T) {
	engine := newTestEngine(t, Deps{Coordinator: &fakeCoordinator{}, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodGet, "/api/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetReport(t *testing.T) {
	store := seedStore(t, "2026-01-15")
	engine := newTestEngine(t, Deps{Coordinator: &fakeCoordinator{}, Reports: store})

	rec := doRequest(engine, http.MethodGet, "/api/reports/2026-01-15", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep domain.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Equal(t, 1, rep.TotalDomains)
	require.Equal(t, "exempel.se", rep.Domains[0].Domain)
	require.Equal(t, domain.IndexPresent, rep.Domains[0].Indexed)
}

func TestGetReportNotFound(t *testing.T) {
	engine := newTestEngine(t, Deps{Coordinator: &fakeCoordinator{}, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodGet, "/api/reports/2026-01-15", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "error")
}

func TestDownloadCSV(t *testing.T) {
	store := seedStore(t, "2026-01-15")
	engine := newTestEngine(t, Deps{Coordinator: &fakeCoordinator{}, Reports: store})

	rec := doRequest(engine, http.MethodGet, "/api/reports/2026-01-15/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "2026-01-15.csv")
	require.True(t, strings.HasPrefix(rec.Body.String(),
		"domain,tld,release_date,available,indexed,estimated_pages,index_source,checked_at"))
	require.Contains(t, rec.Body.String(), "exempel.se")
}

func TestDownloadCSVNotFound(t *testing.T) {
	engine := newTestEngine(t, Deps{Coordinator: &fakeCoordinator{}, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodGet, "/api/reports/2026-01-15/csv", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartScanWithDate(t *testing.T) {
	coordinator := &fakeCoordinator{}
	engine := newTestEngine(t, Deps{Coordinator: coordinator, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodPost, "/api/scan", `{"date":"2026-01-15"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []string{"2026-01-15"}, coordinator.started)

	var body struct {
		Message string            `json:"message"`
		Status  domain.ScanStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Scan started", body.Message)
	require.True(t, body.Status.Running)
	require.Equal(t, "Scanning domains for 2026-01-15...", body.Status.Message)
}

func TestStartScanEmptyBody(t *testing.T) {
	coordinator := &fakeCoordinator{}
	engine := newTestEngine(t, Deps{Coordinator: coordinator, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodPost, "/api/scan", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []string{""}, coordinator.started)
}

func TestStartScanConflict(t *testing.T) {
	coordinator := &fakeCoordinator{
		startErr: serrors.With(serrors.ErrConflict, "scan already running"),
	}
	engine := newTestEngine(t, Deps{Coordinator: coordinator, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodPost, "/api/scan", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "scan already running")
}

func TestStartScanInvalidDate(t *testing.T) {
	coordinator := &fakeCoordinator{
		startErr: serrors.With(serrors.ErrBadRequest, `invalid target date "not-a-date"`),
	}
	engine := newTestEngine(t, Deps{Coordinator: coordinator, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodPost, "/api/scan", `{"date":"not-a-date"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid target date")
}

func TestStartScanMalformedBody(t *testing.T) {
	coordinator := &fakeCoordinator{}
	engine := newTestEngine(t, Deps{Coordinator: coordinator, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodPost, "/api/scan", `{"date":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, coordinator.started)
}

func TestScanStatus(t *testing.T) {
	completed := time.Date(2026, 1, 14, 19, 30, 0, 0, time.UTC)
	coordinator := &fakeCoordinator{status: domain.ScanStatus{
		Running:         false,
		Message:         "Scan completed successfully",
		LastCompletedAt: &completed,
	}}
	engine := newTestEngine(t, Deps{Coordinator: coordinator, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodGet, "/api/scan/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status domain.ScanStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.False(t, status.Running)
	require.Equal(t, "Scan completed successfully", status.Message)
	require.NotNil(t, status.LastCompletedAt)
	require.True(t, completed.Equal(*status.LastCompletedAt))
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(t, Deps{Coordinator: &fakeCoordinator{}, Reports: seedStore(t)})

	rec := doRequest(engine, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServerMountsMetricsAndMiddleware(t *testing.T) {
	srv := NewServer(Deps{Coordinator: &fakeCoordinator{}, Reports: seedStore(t, "2026-01-15")}, Options{
		Environment:    "test",
		Addr:           ":0",
		RequestTimeout: time.Second,
		MetricsPath:    "/metrics",
	})

	rec := doRequest(srv.Handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")

	rec = doRequest(srv.Handler, http.MethodGet, "/api/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = doRequest(srv.Handler, http.MethodOptions, "/api/scan", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}
