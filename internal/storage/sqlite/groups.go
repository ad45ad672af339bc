package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/models"
)

// CreateGroup persists a new group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Status == "" {
		group.Status = models.GroupPending
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO groups (id, leader_id, total_amount, capacity, description, share_code, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.LeaderID, group.TotalAmount, group.Capacity,
		group.Description, group.ShareCode, string(group.Status), group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.scanGroup(s.q.QueryRowContext(ctx,
		`SELECT id, leader_id, total_amount, capacity, description, share_code, status, created_at
		 FROM groups WHERE id = ?`,
		groupID,
	), groupID)
}

// GetGroupByShareCode retrieves a group by its opaque invite code.
func (s *SQLiteStore) GetGroupByShareCode(ctx context.Context, code string) (*models.Group, error) {
	return s.scanGroup(s.q.QueryRowContext(ctx,
		`SELECT id, leader_id, total_amount, capacity, description, share_code, status, created_at
		 FROM groups WHERE share_code = ?`,
		code,
	), code)
}

// SaveGroup updates an existing group.
func (s *SQLiteStore) SaveGroup(ctx context.Context, group *models.Group) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE groups SET total_amount = ?, description = ?, status = ? WHERE id = ?`,
		group.TotalAmount, group.Description, string(group.Status), group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", group.ID, models.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) scanGroup(row *sql.Row, key string) (*models.Group, error) {
	group := &models.Group{}
	var status string
	err := row.Scan(&group.ID, &group.LeaderID, &group.TotalAmount, &group.Capacity,
		&group.Description, &group.ShareCode, &status, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Status = models.GroupStatus(status)
	return group, nil
}
