package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tabshare/tabshare/internal/models"
)

// CreateTransaction persists a new user-to-user transfer.
func (s *PostgresStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	if txn.Status == "" {
		txn.Status = models.TransactionPending
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO transactions (id, sender_id, receiver_id, amount, description, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txn.ID, txn.SenderID, txn.ReceiverID, txn.Amount, txn.Description, string(txn.Status), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transfer by ID.
func (s *PostgresStore) GetTransaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var status string
	err := s.q.QueryRow(ctx,
		`SELECT id, sender_id, receiver_id, amount, description, status, created_at
		 FROM transactions WHERE id = $1`,
		txnID,
	).Scan(&txn.ID, &txn.SenderID, &txn.ReceiverID, &txn.Amount, &txn.Description, &status, &txn.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", txnID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	txn.Status = models.TransactionStatus(status)
	return txn, nil
}

// SaveTransaction updates an existing transfer.
func (s *PostgresStore) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE transactions SET status = $1 WHERE id = $2`,
		string(txn.Status), txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, models.ErrNotFound)
	}
	return nil
}
