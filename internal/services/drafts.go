package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/observability"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftStore keeps generated cards between generation and preview/export.
type DraftStore interface {
	Save(ctx context.Context, card techcard.Data) (techcard.Draft, error)
	Get(ctx context.Context, id uuid.UUID) (techcard.Draft, error)
}

const DefaultDraftTTL = 2 * time.Hour

type MemoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[uuid.UUID]techcard.Draft
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &MemoryDraftStore{
		ttl:    ttl,
		now:    time.Now,
		drafts: map[uuid.UUID]techcard.Draft{},
	}
}

func (s *MemoryDraftStore) Save(ctx context.Context, card techcard.Data) (techcard.Draft, error) {
	d := techcard.Draft{ID: uuid.New(), Card: card, CreatedAt: s.now().UTC()}
	s.mu.Lock()
	s.drafts[d.ID] = d
	n := len(s.drafts)
	s.mu.Unlock()
	observability.Current().SetDraftsActive(n)
	return d, nil
}

func (s *MemoryDraftStore) Get(ctx context.Context, id uuid.UUID) (techcard.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok || s.expired(d) {
		return techcard.Draft{}, ErrDraftNotFound
	}
	return d, nil
}

func (s *MemoryDraftStore) expired(d techcard.Draft) bool {
	return s.now().Sub(d.CreatedAt) > s.ttl
}

// Purge drops expired drafts and returns how many were removed.
func (s *MemoryDraftStore) Purge() int {
	s.mu.Lock()
	removed := 0
	for id, d := range s.drafts {
		if s.expired(d) {
			delete(s.drafts, id)
			removed++
		}
	}
	n := len(s.drafts)
	s.mu.Unlock()
	observability.Current().SetDraftsActive(n)
	return removed
}

func (s *MemoryDraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

type redisDraftStore struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisDraftStore stores drafts as JSON under "<prefix><id>" with the TTL
// applied by redis itself.
func NewRedisDraftStore(rdb *goredis.Client, ttl time.Duration) DraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &redisDraftStore{rdb: rdb, ttl: ttl, prefix: "ndtmaster:draft:"}
}

func (s *redisDraftStore) Save(ctx context.Context, card techcard.Data) (techcard.Draft, error) {
	d := techcard.Draft{ID: uuid.New(), Card: card, CreatedAt: time.Now().UTC()}
	raw, err := json.Marshal(d)
	if err != nil {
		return techcard.Draft{}, err
	}
	if err := s.rdb.Set(ctx, s.prefix+d.ID.String(), raw, s.ttl).Err(); err != nil {
		return techcard.Draft{}, fmt.Errorf("redis set draft: %w", err)
	}
	return d, nil
}

func (s *redisDraftStore) Get(ctx context.Context, id uuid.UUID) (techcard.Draft, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+id.String()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return techcard.Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return techcard.Draft{}, fmt.Errorf("redis get draft: %w", err)
	}
	var d techcard.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return techcard.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

// DraftJanitor runs Purge on a cron schedule.
type DraftJanitor struct {
	log   *logger.Logger
	store *MemoryDraftStore
	cron  *cron.Cron
}

func NewDraftJanitor(log *logger.Logger, store *MemoryDraftStore, schedule string) (*DraftJanitor, error) {
	if schedule == "" {
		schedule = "@every 5m"
	}
	j := &DraftJanitor{
		log:   log.With("service", "DraftJanitor"),
		store: store,
		cron:  cron.New(),
	}
	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("invalid draft purge schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *DraftJanitor) run() {
	if n := j.store.Purge(); n > 0 {
		j.log.Info("Purged expired drafts", "removed", n, "remaining", j.store.Len())
	}
}

func (j *DraftJanitor) Start() { j.cron.Start() }

// Stop halts the schedule and waits for a running purge to finish.
func (j *DraftJanitor) Stop() {
	<-j.cron.Stop().Done()
}
