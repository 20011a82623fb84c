package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/ndtmaster-backend/internal/domain/account"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

// Backend persists cards and serves the user profile.
type Backend interface {
	SaveTechCard(ctx context.Context, card techcard.Data) (account.SaveResult, error)
	ListTechCards(ctx context.Context) ([]account.CardSummary, error)
	GetProfile(ctx context.Context) (account.Profile, error)
}

// MockLatency is the simulated round trip of each mock call.
type MockLatency struct {
	Save    time.Duration
	List    time.Duration
	Profile time.Duration
}

func DefaultMockLatency() MockLatency {
	return MockLatency{
		Save:    500 * time.Millisecond,
		List:    800 * time.Millisecond,
		Profile: 300 * time.Millisecond,
	}
}

type mockBackend struct {
	log     *logger.Logger
	latency MockLatency
	now     func() time.Time
}

func NewMockBackend(log *logger.Logger, latency MockLatency) Backend {
	return &mockBackend{
		log:     log.With("service", "MockBackend"),
		latency: latency,
		now:     time.Now,
	}
}

func (b *mockBackend) SaveTechCard(ctx context.Context, card techcard.Data) (account.SaveResult, error) {
	b.log.Info("Saving tech card to backend",
		"weld", card.WeldConnectionNumber,
		"method", card.ControlMethod,
		"customer", card.Customer,
	)
	if err := sleepCtx(ctx, b.latency.Save); err != nil {
		return account.SaveResult{}, err
	}
	return account.SaveResult{Success: true, ID: fmt.Sprintf("doc_%d", b.now().UnixMilli())}, nil
}

func (b *mockBackend) ListTechCards(ctx context.Context) ([]account.CardSummary, error) {
	b.log.Info("Fetching user tech cards from backend")
	if err := sleepCtx(ctx, b.latency.List); err != nil {
		return nil, err
	}
	return []account.CardSummary{
		{ID: "doc_1", Name: "ТК № 02/11-РГК", CreatedAt: "2024-01-21"},
		{ID: "doc_2", Name: "ТК № 03/11-ВИК", CreatedAt: "2024-01-15"},
	}, nil
}

func (b *mockBackend) GetProfile(ctx context.Context) (account.Profile, error) {
	b.log.Info("Fetching user profile")
	if err := sleepCtx(ctx, b.latency.Profile); err != nil {
		return account.Profile{}, err
	}
	return mockProfile(), nil
}

func mockProfile() account.Profile {
	return account.Profile{Name: "John Doe", AvailableGenerations: 3}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
