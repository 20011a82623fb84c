package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/ndtmaster-backend/internal/domain/account"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

type sqlBackend struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

// NewSQLBackend persists cards as techcard.Record rows. The profile is not
// stored and stays the canned mock profile.
func NewSQLBackend(db *gorm.DB, log *logger.Logger) Backend {
	return &sqlBackend{
		db:  db,
		log: log.With("service", "SQLBackend"),
		now: time.Now,
	}
}

func (b *sqlBackend) SaveTechCard(ctx context.Context, card techcard.Data) (account.SaveResult, error) {
	payload, err := json.Marshal(card)
	if err != nil {
		return account.SaveResult{}, fmt.Errorf("encode card: %w", err)
	}
	now := b.now().UTC()
	rec := techcard.Record{
		ID:                   uuid.New(),
		Name:                 card.Title(),
		WeldConnectionNumber: card.WeldConnectionNumber,
		ControlMethod:        card.ControlMethod,
		Payload:              payload,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := b.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return account.SaveResult{}, fmt.Errorf("insert tech card: %w", err)
	}
	b.log.Info("Saved tech card", "id", rec.ID, "weld", rec.WeldConnectionNumber)
	return account.SaveResult{Success: true, ID: rec.ID.String()}, nil
}

func (b *sqlBackend) ListTechCards(ctx context.Context) ([]account.CardSummary, error) {
	var recs []techcard.Record
	if err := b.db.WithContext(ctx).
		Select("id", "name", "created_at").
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list tech cards: %w", err)
	}
	out := make([]account.CardSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, account.CardSummary{
			ID:        r.ID.String(),
			Name:      r.Name,
			CreatedAt: r.CreatedAt.Format("2006-01-02"),
		})
	}
	return out, nil
}

func (b *sqlBackend) GetProfile(ctx context.Context) (account.Profile, error) {
	return mockProfile(), ctx.Err()
}
