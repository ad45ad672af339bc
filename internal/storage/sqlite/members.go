package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/models"
)

// CreateMember persists a new member slot.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.GroupMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO group_members (id, group_id, user_id, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		member.ID, member.GroupID, member.UserID, member.Amount, string(member.Status), member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMembers retrieves all member slots of a group in insertion order, so the
// leader's slot comes first. rowid breaks created_at ties between rows
// inserted within the same second.
func (s *SQLiteStore) GetMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, group_id, user_id, amount, status, created_at
		 FROM group_members WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		member := &models.GroupMember{}
		var status string
		if err := rows.Scan(&member.ID, &member.GroupID, &member.UserID,
			&member.Amount, &status, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.Status = models.MemberStatus(status)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// GetMember retrieves the slot held by a user within a group.
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	member := &models.GroupMember{}
	var status string
	err := s.q.QueryRowContext(ctx,
		`SELECT id, group_id, user_id, amount, status, created_at
		 FROM group_members WHERE group_id = ? AND user_id = ? AND user_id != ''`,
		groupID, userID,
	).Scan(&member.ID, &member.GroupID, &member.UserID, &member.Amount, &status, &member.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s/%s: %w", groupID, userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.Status = models.MemberStatus(status)
	return member, nil
}

// SaveMember updates an existing member slot.
func (s *SQLiteStore) SaveMember(ctx context.Context, member *models.GroupMember) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE group_members SET user_id = ?, amount = ?, status = ? WHERE id = ?`,
		member.UserID, member.Amount, string(member.Status), member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %s: %w", member.ID, models.ErrNotFound)
	}
	return nil
}
