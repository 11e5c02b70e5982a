// Package httpserver exposes the webhook ingestion endpoint and the
// read-only report/dashboard surface over HTTP.
package httpserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/southecare68/crypto-webhook/internal/analytics"
	"github.com/southecare68/crypto-webhook/internal/app"
	"github.com/southecare68/crypto-webhook/internal/domain"
	"github.com/southecare68/crypto-webhook/internal/ports"
)

// Server wires the router, lifecycle service, and aggregator.
type Server struct {
	R          *gin.Engine
	Service    *app.TradeService
	Aggregator *analytics.Aggregator
	Logger     ports.Logger
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// webhookPayload is the inbound event wire shape. Entry price may arrive as
// either "entry" or "price"; decimals accept both JSON numbers and strings.
type webhookPayload struct {
	Type      string          `json:"type"`
	Symbol    string          `json:"symbol"`
	Entry     decimal.Decimal `json:"entry"`
	Price     decimal.Decimal `json:"price"`
	Stop      decimal.Decimal `json:"stop"`
	TradeID   string          `json:"trade_id"`
	Timeframe string          `json:"tf"`
	ExitPrice decimal.Decimal `json:"exit_price"`
}

type reportResponse struct {
	StartEquity   string `json:"start_equity"`
	Equity        string `json:"equity"`
	TotalPnL      string `json:"total_pnl"`
	ClosedTrades  int    `json:"closed_trades"`
	WinningTrades int    `json:"winning_trades"`
	WinRate       string `json:"win_rate"`
	AvgR          string `json:"avg_r"`
}

type tradeRow struct {
	TradeID   string `json:"trade_id"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"tf"`
	Entry     string `json:"entry"`
	Stop      string `json:"stop"`
	Size      string `json:"size"`
	Status    string `json:"status"`
	OpenedAt  string `json:"opened_at"`
}

// NewServer wires the router, service, aggregator, and middleware.
func NewServer(service *app.TradeService, aggregator *analytics.Aggregator, logger ports.Logger) (*Server, error) {
	if service == nil || aggregator == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Server")
	}

	gin.SetMode(gin.ReleaseMode)
	g := gin.New()

	// Request logging with a per-request trace ID
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		traceID := uuid.NewString()
		cn.Set("traceID", traceID)
		cn.Next()
		logger.Info(cn.Request.Context(), "http_request", map[string]interface{}{
			"method":  cn.Request.Method,
			"path":    cn.Request.URL.Path,
			"status":  cn.Writer.Status(),
			"ip":      cn.ClientIP(),
			"latency": time.Since(start).String(),
			"traceID": traceID,
		})
	})

	g.Use(gin.Recovery())
	g.SetHTMLTemplate(template.Must(template.New("dashboard").Parse(dashboardTemplate)))

	s := &Server{
		R:          g,
		Service:    service,
		Aggregator: aggregator,
		Logger:     logger,
	}

	g.GET("/health", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.POST("/webhook", s.postWebhook)
	g.GET("/report", s.getReport)
	g.GET("/dashboard", s.getDashboard)

	return s, nil
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	s.Logger.Error(c.Request.Context(), err, "internal_error", map[string]interface{}{"where": where})
	c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
}

// --- Handlers ---

func (s *Server) postWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.badRequest(c, "unreadable body")
		return
	}

	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		s.badRequest(c, "malformed JSON payload")
		return
	}

	entry := p.Entry
	if entry.IsZero() {
		entry = p.Price
	}

	ev := domain.Event{
		Type:      domain.EventType(p.Type),
		Symbol:    p.Symbol,
		Timeframe: p.Timeframe,
		TradeID:   p.TradeID,
		Entry:     entry,
		Stop:      p.Stop,
		ExitPrice: p.ExitPrice,
		Raw:       string(body),
		At:        time.Now().UTC(),
	}

	if err := s.Service.HandleEvent(c.Request.Context(), ev); err != nil {
		// Only storage failures reach here; validation problems were
		// already notified and acknowledged by the service. The event
		// producer owns the retry policy.
		s.internalError(c, "HandleEvent", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getReport(c *gin.Context) {
	report, err := s.Aggregator.BuildReport(c.Request.Context())
	if err != nil {
		s.internalError(c, "BuildReport", err)
		return
	}
	c.JSON(http.StatusOK, reportToResponse(report))
}

func (s *Server) getDashboard(c *gin.Context) {
	report, err := s.Aggregator.BuildReport(c.Request.Context())
	if err != nil {
		s.internalError(c, "BuildReport", err)
		return
	}
	trades, err := s.Aggregator.ListTrades(c.Request.Context())
	if err != nil {
		s.internalError(c, "ListTrades", err)
		return
	}

	rows := make([]tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, tradeToRow(t))
	}
	c.HTML(http.StatusOK, "dashboard", gin.H{
		"Report": reportToResponse(report),
		"Trades": rows,
	})
}

// --- Mapping ---

func reportToResponse(r *domain.Report) reportResponse {
	return reportResponse{
		StartEquity:   r.StartEquity.StringFixed(2),
		Equity:        r.Equity.StringFixed(2),
		TotalPnL:      r.TotalPnL.StringFixed(2),
		ClosedTrades:  r.ClosedTrades,
		WinningTrades: r.WinningTrades,
		WinRate:       r.WinRate.StringFixed(4),
		AvgR:          r.AvgR.StringFixed(2),
	}
}

func tradeToRow(t *domain.Trade) tradeRow {
	return tradeRow{
		TradeID:   t.ID,
		Symbol:    t.Symbol,
		Timeframe: t.Timeframe,
		Entry:     t.EntryPrice.String(),
		Stop:      t.StopPrice.String(),
		Size:      t.Size.String(),
		Status:    string(t.Status),
		OpenedAt:  t.OpenedAt.UTC().Format(time.RFC3339),
	}
}
