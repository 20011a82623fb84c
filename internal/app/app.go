package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	ndthttp "github.com/yungbote/ndtmaster-backend/internal/http"
	"github.com/yungbote/ndtmaster-backend/internal/observability"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Metrics  *observability.Metrics
	Clients  Clients
	Services Services
	Router   *gin.Engine

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

type Options struct {
	// ConfigFile overrides the ndtmaster.yaml lookup.
	ConfigFile string
	// LogMode overrides LOG_MODE.
	LogMode string
}

func New() (*App, error) {
	return NewWithOptions(context.Background(), Options{})
}

func NewWithOptions(ctx context.Context, opts Options) (*App, error) {
	bootLog, err := logger.New(firstNonEmpty(opts.LogMode, "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	bootLog.Info("Loading configuration...")
	cfg, err := LoadConfig(bootLog, opts.ConfigFile)
	if err != nil {
		bootLog.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := bootLog
	if mode := firstNonEmpty(opts.LogMode, cfg.LogMode); mode != "development" {
		if log, err = logger.New(mode); err != nil {
			bootLog.Sync()
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	shutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log, cfg.Metrics)

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		log.Sync()
		return nil, err
	}
	serviceset, err := wireServices(log, cfg, clients)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, clients, serviceset)
	router := wireRouter(log, cfg, metrics, handlerset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		Clients:      clients,
		Services:     serviceset,
		Router:       router,
		otelShutdown: shutdown,
	}, nil
}

// Start launches background work: the draft janitor, metric collectors and
// the optional metrics listener.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.Janitor != nil {
		a.Services.Janitor.Start()
	}
	if a.Clients.DB != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.Clients.DB.DB())
	}
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
}

// Run serves HTTP on addr until ctx is cancelled.
func (a *App) Run(ctx context.Context, addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting HTTP server", "addr", addr)
	return (&ndthttp.Server{Engine: a.Router}).Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Janitor != nil {
		a.Services.Janitor.Stop()
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
