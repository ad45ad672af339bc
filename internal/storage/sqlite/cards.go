package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/models"
)

// CreatePaymentCard persists an issued payment card.
func (s *SQLiteStore) CreatePaymentCard(ctx context.Context, card *models.PaymentCard) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if card.CreatedAt == 0 {
		card.CreatedAt = time.Now().Unix()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO payment_cards (id, group_id, card_number, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		card.ID, card.GroupID, card.CardNumber, card.Amount, string(card.Status), card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment card: %w", err)
	}
	return nil
}
