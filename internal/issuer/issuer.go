// Package issuer generates payment instruments for groups that reached
// consensus. Card number generation is an external concern; the coordinator
// only depends on the Issuer interface.
package issuer

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/models"
)

// Issuer produces a payment card for a group. Implementations may call out to
// a card network; failures surface to the coordinator unchanged.
type Issuer interface {
	Issue(ctx context.Context, group *models.Group) (*models.PaymentCard, error)
}

// Local issues cards in-process with random 16-digit numbers. Suitable for
// development and tests; production deployments plug in a real provider.
type Local struct{}

// Issue builds an ACTIVE card covering the group total.
func (Local) Issue(_ context.Context, group *models.Group) (*models.PaymentCard, error) {
	number, err := cardNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to generate card number: %w", err)
	}
	return &models.PaymentCard{
		ID:         uuid.New().String(),
		GroupID:    group.ID,
		CardNumber: number,
		Amount:     group.TotalAmount,
		Status:     models.CardActive,
	}, nil
}

func cardNumber() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016d", n), nil
}
