package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/southecare68/crypto-webhook/config"
	"github.com/southecare68/crypto-webhook/internal/adapters/sqlite"
	"github.com/southecare68/crypto-webhook/internal/analytics"
	"github.com/southecare68/crypto-webhook/internal/app"
	"github.com/southecare68/crypto-webhook/internal/risk"
)

type mockLogger struct{}

func (mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) Send(ctx context.Context, title, message string) error {
	r.titles = append(r.titles, title)
	return nil
}

// setupServer wires a full stack against a temporary SQLite ledger.
func setupServer(t *testing.T) (*Server, *recordingNotifier, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "webhook-server-test-*")
	require.NoError(t, err)

	logger := mockLogger{}
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: logger,
	})
	require.NoError(t, err)

	cfg := &config.Config{
		StartEquity: decimal.NewFromInt(5000),
		RiskBudget:  decimal.NewFromInt(200),
		MaxNotional: decimal.NewFromInt(5000),
	}
	sizer, err := risk.New(risk.Config{RiskBudget: cfg.RiskBudget, MaxNotional: cfg.MaxNotional})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	service, err := app.NewTradeService(cfg, logger, repo, notifier, sizer)
	require.NoError(t, err)

	aggregator, err := analytics.New(analytics.Config{
		Repo: repo, Logger: logger,
		StartEquity: cfg.StartEquity, RiskBudget: cfg.RiskBudget,
	})
	require.NoError(t, err)

	server, err := NewServer(service, aggregator, logger)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return server, notifier, cleanup
}

func doJSON(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.R.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	server, _, cleanup := setupServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhook_MalformedJSON(t *testing.T) {
	server, _, cleanup := setupServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodPost, "/webhook", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_EntryExitAndReport(t *testing.T) {
	server, notifier, cleanup := setupServer(t)
	defer cleanup()

	// Entry: size = 200 / (100-90) = 20, notional 2000 within the 5000 cap.
	w := doJSON(t, server, http.MethodPost, "/webhook",
		`{"type":"SAT_ENTRY","symbol":"BTC","entry":100,"stop":90,"trade_id":"e2e-1","tf":"4h"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Full exit at 110: PnL = 20*110 - 20*100 = 200, R = 1.
	w = doJSON(t, server, http.MethodPost, "/webhook",
		`{"type":"SAT_EXIT","trade_id":"e2e-1","exit_price":110}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, server, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		Equity       string `json:"equity"`
		TotalPnL     string `json:"total_pnl"`
		ClosedTrades int    `json:"closed_trades"`
		WinRate      string `json:"win_rate"`
		AvgR         string `json:"avg_r"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "5200.00", report.Equity)
	assert.Equal(t, "200.00", report.TotalPnL)
	assert.Equal(t, 1, report.ClosedTrades)
	assert.Equal(t, "1.0000", report.WinRate)
	assert.Equal(t, "1.00", report.AvgR)

	assert.Equal(t, []string{"Entry BTC", "Exit e2e-1"}, notifier.titles)
}

func TestWebhook_PartialThenFullExit(t *testing.T) {
	server, _, cleanup := setupServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodPost, "/webhook",
		`{"type":"SAT_ENTRY","symbol":"ETH","price":100,"stop":90,"trade_id":"e2e-2"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// TP1 halves the position, then the full exit takes the rest.
	w = doJSON(t, server, http.MethodPost, "/webhook",
		`{"type":"SAT_TP1","trade_id":"e2e-2","exit_price":105}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, server, http.MethodPost, "/webhook",
		`{"type":"SAT_EXIT","trade_id":"e2e-2","exit_price":110}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, server, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		TotalPnL     string `json:"total_pnl"`
		ClosedTrades int    `json:"closed_trades"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	// 10*105 + 10*110 - 20*100 = 150
	assert.Equal(t, "150.00", report.TotalPnL)
	assert.Equal(t, 1, report.ClosedTrades)
}

func TestWebhook_UnknownTradeAcknowledged(t *testing.T) {
	server, notifier, cleanup := setupServer(t)
	defer cleanup()

	// A validation failure is notified and acknowledged, not retried.
	w := doJSON(t, server, http.MethodPost, "/webhook",
		`{"type":"SAT_EXIT","trade_id":"missing","exit_price":110}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, notifier.titles, 1)
	assert.Contains(t, notifier.titles[0], "Rejected")
}

func TestWebhook_PassthroughAlert(t *testing.T) {
	server, notifier, cleanup := setupServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodPost, "/webhook", `{"type":"CORE_ON","note":"regime up"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Alert CORE_ON"}, notifier.titles)

	// No ledger effect from passthrough events.
	w = doJSON(t, server, http.MethodGet, "/report", "")
	var report struct {
		ClosedTrades int `json:"closed_trades"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 0, report.ClosedTrades)
}

func TestDashboard_RendersTrades(t *testing.T) {
	server, _, cleanup := setupServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodPost, "/webhook",
		`{"type":"SAT_ENTRY","symbol":"BTC","entry":100,"stop":90,"trade_id":"dash-1","tf":"1d"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, server, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "dash-1")
	assert.Contains(t, w.Body.String(), "OPEN")
}
