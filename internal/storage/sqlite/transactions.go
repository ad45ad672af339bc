package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/models"
)

// CreateTransaction persists a new user-to-user transfer.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	if txn.Status == "" {
		txn.Status = models.TransactionPending
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO transactions (id, sender_id, receiver_id, amount, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.SenderID, txn.ReceiverID, txn.Amount, txn.Description, string(txn.Status), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transfer by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var status string
	err := s.q.QueryRowContext(ctx,
		`SELECT id, sender_id, receiver_id, amount, description, status, created_at
		 FROM transactions WHERE id = ?`,
		txnID,
	).Scan(&txn.ID, &txn.SenderID, &txn.ReceiverID, &txn.Amount, &txn.Description, &status, &txn.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", txnID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	txn.Status = models.TransactionStatus(status)
	return txn, nil
}

// SaveTransaction updates an existing transfer.
func (s *SQLiteStore) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ?`,
		string(txn.Status), txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, models.ErrNotFound)
	}
	return nil
}
