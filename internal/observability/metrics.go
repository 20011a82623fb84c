package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

// MetricsConfig is filled from METRICS_* and LLM_COST_* settings by the app
// config loader.
type MetricsConfig struct {
	Enabled bool
	// USD per 1000 tokens; zero disables the cost series.
	CostInputPer1K  float64
	CostOutputPer1K float64
	// ScrapeInterval paces the DB and redis collectors. Zero means 10s.
	ScrapeInterval time.Duration
}

type Metrics struct {
	cfg MetricsConfig

	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec
	llmCost     *CounterVec

	exportRequests *CounterVec
	exportLatency  *HistogramVec
	exportBytes    *CounterVec

	draftsActive *Gauge
	dbStats      *GaugeVec
	redisUp      *Gauge
	redisPing    *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Current() *Metrics {
	return instance
}

func (m *Metrics) scrapeInterval() time.Duration {
	if m.cfg.ScrapeInterval > 0 {
		return m.cfg.ScrapeInterval
	}
	return 10 * time.Second
}

// Init returns the process-wide metrics, or nil when cfg.Enabled is off.
// Every method is safe on a nil receiver.
func Init(log *logger.Logger, cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		instance.cfg = cfg
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("ndt_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"ndt_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("ndt_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("ndt_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("ndt_api_requests_error_total", "Total API requests with 5xx status."),
		llmRequests: NewCounterVec("ndt_llm_requests_total", "LLM requests by provider/model/operation/status.", []string{"provider", "model", "operation", "status"}),
		llmLatency: NewHistogramVec(
			"ndt_llm_request_duration_seconds",
			"LLM request latency in seconds by provider/model/operation.",
			[]string{"provider", "model", "operation"},
			[]float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		),
		llmTokens: NewCounterVec("ndt_llm_tokens_total", "LLM tokens by model/direction.", []string{"model", "direction"}),
		llmCost:   NewCounterVec("ndt_llm_cost_usd_total", "Estimated LLM cost (USD) by model/direction.", []string{"model", "direction"}),
		exportRequests: NewCounterVec(
			"ndt_document_exports_total",
			"Document exports by format/status.",
			[]string{"format", "status"},
		),
		exportLatency: NewHistogramVec(
			"ndt_document_export_duration_seconds",
			"Document export duration in seconds by format.",
			[]string{"format"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		exportBytes:  NewCounterVec("ndt_document_export_bytes_total", "Bytes of exported documents by format.", []string{"format"}),
		draftsActive: NewGauge("ndt_drafts_active", "Tech card drafts currently held by the draft store."),
		dbStats:      NewGaugeVec("ndt_db_stats", "SQL connection pool stats.", []string{"metric"}),
		redisUp:      NewGauge("ndt_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing:    NewGauge("ndt_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, pw := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.llmRequests, m.llmLatency, m.llmTokens, m.llmCost,
		m.exportRequests, m.exportLatency, m.exportBytes,
		m.draftsActive, m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(provider, model, operation, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	provider = orUnknown(provider)
	model = orUnknown(model)
	operation = orUnknown(operation)
	status = orUnknown(status)
	m.llmRequests.Inc(provider, model, operation, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), provider, model, operation)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
	inputRate, outputRate := m.cfg.CostInputPer1K, m.cfg.CostOutputPer1K
	if inputTokens > 0 && inputRate > 0 {
		m.llmCost.Add((float64(inputTokens)/1000.0)*inputRate, model, "input")
	}
	if outputTokens > 0 && outputRate > 0 {
		m.llmCost.Add((float64(outputTokens)/1000.0)*outputRate, model, "output")
	}
}

func (m *Metrics) ObserveExport(format, status string, dur time.Duration, size int) {
	if m == nil {
		return
	}
	format = orUnknown(format)
	m.exportRequests.Inc(format, orUnknown(status))
	m.exportLatency.Observe(dur.Seconds(), format)
	if size > 0 {
		m.exportBytes.Add(float64(size), format)
	}
}

func (m *Metrics) SetDraftsActive(n int) {
	if m == nil {
		return
	}
	m.draftsActive.Set(float64(n))
}

// StartDBCollector samples the gorm connection pool of the SQL backend.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := m.scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings the draft store's redis on every scrape interval.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := m.scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	return len(status) == 3 && status[0] == '5'
}
