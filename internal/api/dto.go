package api

import "github.com/tabshare/tabshare/internal/models"

// Wire representations. The model types stay serialization-free; the JSON
// shape is owned here.

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type groupResponse struct {
	ID          string  `json:"id"`
	LeaderID    string  `json:"leader_id"`
	TotalAmount float64 `json:"total_amount"`
	Capacity    int     `json:"capacity"`
	Description string  `json:"description,omitempty"`
	ShareCode   string  `json:"share_code"`
	Status      string  `json:"status"`
	CreatedAt   int64   `json:"created_at"`
}

type memberResponse struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	UserID    string  `json:"user_id,omitempty"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt int64   `json:"created_at"`
}

type cardResponse struct {
	ID         string  `json:"id"`
	GroupID    string  `json:"group_id"`
	CardNumber string  `json:"card_number"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	CreatedAt  int64   `json:"created_at"`
}

func userFromModel(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func groupFromModel(g *models.Group) groupResponse {
	return groupResponse{
		ID:          g.ID,
		LeaderID:    g.LeaderID,
		TotalAmount: g.TotalAmount,
		Capacity:    g.Capacity,
		Description: g.Description,
		ShareCode:   g.ShareCode,
		Status:      string(g.Status),
		CreatedAt:   g.CreatedAt,
	}
}

func memberFromModel(m *models.GroupMember) memberResponse {
	return memberResponse{
		ID:        m.ID,
		GroupID:   m.GroupID,
		UserID:    m.UserID,
		Amount:    m.Amount,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func membersFromModels(members []*models.GroupMember) []memberResponse {
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberFromModel(m))
	}
	return out
}

type transactionResponse struct {
	ID          string  `json:"id"`
	SenderID    string  `json:"sender_id"`
	ReceiverID  string  `json:"receiver_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   int64   `json:"created_at"`
}

func transactionFromModel(txn *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:          txn.ID,
		SenderID:    txn.SenderID,
		ReceiverID:  txn.ReceiverID,
		Amount:      txn.Amount,
		Description: txn.Description,
		Status:      string(txn.Status),
		CreatedAt:   txn.CreatedAt,
	}
}

func cardFromModel(c *models.PaymentCard) cardResponse {
	return cardResponse{
		ID:         c.ID,
		GroupID:    c.GroupID,
		CardNumber: c.CardNumber,
		Amount:     c.Amount,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
	}
}
