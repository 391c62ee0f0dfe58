package warnings

import (
	"context"
	"fmt"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/infrastructure/queue"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MessageDuplicateFundDetected is the queue message type for DuplicateFundDetected.
const MessageDuplicateFundDetected = "duplicate_fund_detected"

// Listener persists a warning for every DuplicateFundDetected. Delivery is
// at-least-once, so a repeated (fund, duplicate fund) pair is ignored.
type Listener struct {
	DB *gorm.DB
}

func (l *Listener) Handle(ctx context.Context, evt domain.DuplicateFundDetected) error {
	w := domain.DuplicateWarning{
		FundID:          evt.FundID,
		DuplicateFundID: evt.DuplicateFundID,
		MatchedName:     evt.MatchedName,
		FundManagerID:   evt.FundManagerID,
	}
	res := l.DB.WithContext(ctx).
		Where(domain.DuplicateWarning{FundID: evt.FundID, DuplicateFundID: evt.DuplicateFundID}).
		FirstOrCreate(&w)
	if res.Error != nil {
		return fmt.Errorf("persist duplicate warning: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Info().Uint("warning_id", w.ID).Uint("fund_id", w.FundID).Uint("duplicate_fund_id", w.DuplicateFundID).Msg("Duplicate warning recorded")
	}
	return nil
}

// HandleMessage decodes a queued DuplicateFundDetected and handles it.
func (l *Listener) HandleMessage(ctx context.Context, msg queue.Message) error {
	var evt domain.DuplicateFundDetected
	if err := msg.Decode(&evt); err != nil {
		return err
	}
	return l.Handle(ctx, evt)
}

// Handlers maps queue message types to this listener.
func (l *Listener) Handlers() map[string]queue.Handler {
	return map[string]queue.Handler{MessageDuplicateFundDetected: l.HandleMessage}
}
