package models

// PaymentCardStatus is the lifecycle state of an issued payment card.
type PaymentCardStatus string

const (
	CardActive  PaymentCardStatus = "ACTIVE"
	CardExpired PaymentCardStatus = "EXPIRED"
)

// PaymentCard is the payment instrument issued for a group once every filled
// slot has agreed. Card number generation is delegated to the issuer
// collaborator; the core only stores the result.
type PaymentCard struct {
	// ID is the unique identifier for the card (UUID format).
	ID string

	// GroupID is the group this card pays for.
	GroupID string

	// CardNumber is the issuer-generated card number.
	CardNumber string

	// Amount is the amount the card is good for (the group total).
	Amount float64

	// Status is the card's lifecycle state.
	Status PaymentCardStatus

	// CreatedAt is the Unix timestamp when the card was issued.
	CreatedAt int64
}
