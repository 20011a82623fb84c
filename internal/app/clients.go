package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/ndtmaster-backend/internal/data/db"
	"github.com/yungbote/ndtmaster-backend/internal/observability"
	"github.com/yungbote/ndtmaster-backend/internal/platform/browser"
	"github.com/yungbote/ndtmaster-backend/internal/platform/llm"
	"github.com/yungbote/ndtmaster-backend/internal/platform/localmedia"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

type Clients struct {
	LLM     llm.Client
	Browser *browser.Manager
	Office  localmedia.Tools
	Redis   *goredis.Client
	DB      *db.Service
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, m *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// LLM. A missing key is not fatal: pages still render and exports of
	// existing drafts still work, generation fails with the usual message.
	client, err := llm.New(ctx, log, cfg.LLM, m)
	if err != nil {
		log.Warn("LLM client unavailable", "provider", cfg.LLM.Provider, "error", err)
		client = llm.Unavailable(cfg.LLM.Provider, err)
	}

	c := Clients{
		LLM:     client,
		Browser: browser.NewManager(log, cfg.Browser),
		Office:  localmedia.New(log, localmedia.Options{SofficePath: cfg.SofficePath}),
	}

	// Redis
	if cfg.DraftStore == DraftStoreRedis {
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			c.Close()
			return Clients{}, fmt.Errorf("DRAFT_STORE=redis requires REDIS_ADDR")
		}
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        addr,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			c.Close()
			return Clients{}, fmt.Errorf("redis ping: %w", err)
		}
		c.Redis = rdb
	}

	// SQL
	switch cfg.BackendMode {
	case BackendSQLite, BackendPostgres:
		svc, err := db.Open(log, cfg.DB)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init %s: %w", cfg.BackendMode, err)
		}
		if err := db.AutoMigrateAll(svc.DB()); err != nil {
			_ = svc.Close()
			c.Close()
			return Clients{}, fmt.Errorf("%s automigrate: %w", cfg.BackendMode, err)
		}
		c.DB = svc
	case "", BackendMock:
	default:
		c.Close()
		return Clients{}, fmt.Errorf("unknown BACKEND_MODE %q", cfg.BackendMode)
	}

	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Browser != nil {
		_ = c.Browser.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
