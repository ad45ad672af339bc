package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

// TransactionService handles direct user-to-user transfers, independent of
// any group. Settlement happens outside the system; callers drive it through
// status updates.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a transfer service over the storage backend.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// CreateTransaction records a PENDING transfer from sender to receiver.
func (s *TransactionService) CreateTransaction(ctx context.Context, senderID, receiverID string, amount float64, description string) (_ *models.Transaction, err error) {
	defer func() { observe("create_transaction", err) }()

	slog.Info("CreateTransaction request received",
		"sender_id", senderID,
		"receiver_id", receiverID,
		"amount", amount,
	)

	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive: %w", models.ErrInvalidArgument)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("sender and receiver must differ: %w", models.ErrInvalidArgument)
	}

	var txn *models.Transaction
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if _, err := tx.GetUser(ctx, senderID); err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		if _, err := tx.GetUser(ctx, receiverID); err != nil {
			return fmt.Errorf("receiver: %w", err)
		}

		txn = &models.Transaction{
			SenderID:    senderID,
			ReceiverID:  receiverID,
			Amount:      amount,
			Description: description,
			Status:      models.TransactionPending,
		}
		return tx.CreateTransaction(ctx, txn)
	})
	if err != nil {
		slog.Warn("CreateTransaction failed", "sender_id", senderID, "error", err)
		return nil, err
	}

	slog.Info("Transaction created", "transaction_id", txn.ID, "amount", amount)
	return txn, nil
}

// UpdateTransactionStatus sets the transfer's status. Like the group status
// override, this trusts the caller: settlement outcome is decided externally.
func (s *TransactionService) UpdateTransactionStatus(ctx context.Context, txnID string, status models.TransactionStatus) (_ *models.Transaction, err error) {
	defer func() { observe("transaction_status", err) }()

	slog.Info("UpdateTransactionStatus request received", "transaction_id", txnID, "status", status)

	switch status {
	case models.TransactionPending, models.TransactionCompleted, models.TransactionFailed:
	default:
		return nil, fmt.Errorf("transaction status %s: %w", status, models.ErrInvalidArgument)
	}

	var txn *models.Transaction
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		txn, err = tx.GetTransaction(ctx, txnID)
		if err != nil {
			return err
		}
		txn.Status = status
		return tx.SaveTransaction(ctx, txn)
	})
	if err != nil {
		slog.Warn("UpdateTransactionStatus failed", "transaction_id", txnID, "error", err)
		return nil, err
	}

	slog.Info("Transaction status updated", "transaction_id", txnID, "status", status)
	return txn, nil
}

// GetTransaction retrieves a transfer by ID.
func (s *TransactionService) GetTransaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, txnID)
}
