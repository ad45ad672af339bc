// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/tabshare/tabshare/internal/models"
)

// Store defines the interface for membership storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Methods that look up a single row return models.ErrNotFound (wrapped) when
// the row does not exist; any other failure is an underlying store error and
// is surfaced wrapped, never retried.
type Store interface {
	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateGroup persists a new group.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupByShareCode retrieves a group by its opaque invite code.
	GetGroupByShareCode(ctx context.Context, code string) (*models.Group, error)

	// SaveGroup updates an existing group (status, amount, description).
	SaveGroup(ctx context.Context, group *models.Group) error

	// CreateMember persists a new member slot.
	CreateMember(ctx context.Context, member *models.GroupMember) error

	// GetMembers retrieves all member slots of a group, ordered by creation
	// (the leader's slot first).
	GetMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error)

	// GetMember retrieves the slot held by a user within a group.
	GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error)

	// SaveMember updates an existing member slot (user, amount, status).
	SaveMember(ctx context.Context, member *models.GroupMember) error

	// CreatePaymentCard persists an issued payment card.
	CreatePaymentCard(ctx context.Context, card *models.PaymentCard) error

	// CreateTransaction persists a new user-to-user transfer.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// GetTransaction retrieves a transfer by ID.
	GetTransaction(ctx context.Context, txnID string) (*models.Transaction, error)

	// SaveTransaction updates an existing transfer (status).
	SaveTransaction(ctx context.Context, txn *models.Transaction) error

	// InTx runs fn against a transaction-scoped Store. If fn returns an error
	// the transaction is rolled back and nothing fn wrote is visible; otherwise
	// it commits. Calls nested inside an open transaction join it.
	//
	// Every coordinator mutation runs inside exactly one InTx call, so
	// read-modify-write sequences (capacity check + insert, consensus check +
	// status flip) are atomic with respect to concurrent operations.
	InTx(ctx context.Context, fn func(tx Store) error) error

	// Close releases any resources held by the store.
	Close() error
}
