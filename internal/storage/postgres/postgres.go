// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

// querier is the subset of *pgxpool.Pool and pgx.Tx the queries need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    querier
	tx   bool
}

// New connects to the database at databaseURL and runs migrations.
func New(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{pool: pool, q: pool}, nil
}

// maxTxAttempts bounds serialization-failure retries in InTx.
const maxTxAttempts = 5

// InTx runs fn against a transaction-scoped store at SERIALIZABLE isolation,
// so read-check-write sequences (capacity checks, consensus evaluation) cannot
// interleave across connections. Conflicting transactions abort with a
// serialization failure and are retried from the start; fn must therefore be
// safe to re-run. A nested call joins the already-open transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.tx {
		return fn(s)
	}

	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (s *PostgresStore) runTx(ctx context.Context, fn func(tx storage.Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresStore{pool: s.pool, q: tx, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isSerializationFailure reports whether err is a PostgreSQL serialization
// failure (40001) or deadlock (40P01), both of which are retryable.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateUser persists a new user account.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.scanUser(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE id = $1`,
		userID)
}

// GetUserByEmail retrieves a user by email address.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = $1`,
		email)
}

func (s *PostgresStore) scanUser(ctx context.Context, query, key string) (*models.User, error) {
	user := &models.User{}
	err := s.q.QueryRow(ctx, query, key).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateGroup persists a new group.
func (s *PostgresStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Status == "" {
		group.Status = models.GroupPending
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO groups (id, leader_id, total_amount, capacity, description, share_code, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		group.ID, group.LeaderID, group.TotalAmount, group.Capacity,
		group.Description, group.ShareCode, string(group.Status), group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *PostgresStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.scanGroup(ctx,
		`SELECT id, leader_id, total_amount, capacity, description, share_code, status, created_at
		 FROM groups WHERE id = $1`,
		groupID)
}

// GetGroupByShareCode retrieves a group by its opaque invite code.
func (s *PostgresStore) GetGroupByShareCode(ctx context.Context, code string) (*models.Group, error) {
	return s.scanGroup(ctx,
		`SELECT id, leader_id, total_amount, capacity, description, share_code, status, created_at
		 FROM groups WHERE share_code = $1`,
		code)
}

func (s *PostgresStore) scanGroup(ctx context.Context, query, key string) (*models.Group, error) {
	group := &models.Group{}
	var status string
	err := s.q.QueryRow(ctx, query, key).Scan(
		&group.ID, &group.LeaderID, &group.TotalAmount, &group.Capacity,
		&group.Description, &group.ShareCode, &status, &group.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Status = models.GroupStatus(status)
	return group, nil
}

// SaveGroup updates an existing group.
func (s *PostgresStore) SaveGroup(ctx context.Context, group *models.Group) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE groups SET total_amount = $1, description = $2, status = $3 WHERE id = $4`,
		group.TotalAmount, group.Description, string(group.Status), group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("group %s: %w", group.ID, models.ErrNotFound)
	}
	return nil
}

// CreateMember persists a new member slot.
func (s *PostgresStore) CreateMember(ctx context.Context, member *models.GroupMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO group_members (id, group_id, user_id, amount, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		member.ID, member.GroupID, member.UserID, member.Amount, string(member.Status), member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMembers retrieves all member slots of a group in insertion order, so the
// leader's slot comes first. seq breaks created_at ties between rows inserted
// within the same second.
func (s *PostgresStore) GetMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, group_id, user_id, amount, status, created_at
		 FROM group_members WHERE group_id = $1 ORDER BY created_at, seq`,
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
func (s *PostgresStore) GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	member := &models.GroupMember{}
	var status string
	err := s.q.QueryRow(ctx,
		`SELECT id, group_id, user_id, amount, status, created_at
		 FROM group_members WHERE group_id = $1 AND user_id = $2 AND user_id != ''`,
		groupID, userID,
	).Scan(&member.ID, &member.GroupID, &member.UserID, &member.Amount, &status, &member.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("member %s/%s: %w", groupID, userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.Status = models.MemberStatus(status)
	return member, nil
}

// SaveMember updates an existing member slot.
func (s *PostgresStore) SaveMember(ctx context.Context, member *models.GroupMember) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE group_members SET user_id = $1, amount = $2, status = $3 WHERE id = $4`,
		member.UserID, member.Amount, string(member.Status), member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", member.ID, models.ErrNotFound)
	}
	return nil
}

// CreatePaymentCard persists an issued payment card.
func (s *PostgresStore) CreatePaymentCard(ctx context.Context, card *models.PaymentCard) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if card.CreatedAt == 0 {
		card.CreatedAt = time.Now().Unix()
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO payment_cards (id, group_id, card_number, amount, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		card.ID, card.GroupID, card.CardNumber, card.Amount, string(card.Status), card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment card: %w", err)
	}
	return nil
}
