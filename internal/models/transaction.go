package models

// TransactionStatus is the lifecycle state of a user-to-user transfer.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

// Transaction is a direct transfer between two users, independent of any
// group. Transfers start PENDING; settlement is driven externally through
// status updates.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// SenderID references the user sending the amount.
	SenderID string

	// ReceiverID references the user receiving the amount.
	ReceiverID string

	// Amount is the transferred amount.
	Amount float64

	// Description is an optional human-readable note.
	Description string

	// Status is the transfer's lifecycle state. Starts at TransactionPending.
	Status TransactionStatus

	// CreatedAt is the Unix timestamp when the transfer was created.
	CreatedAt int64
}
