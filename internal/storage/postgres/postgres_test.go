package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

// newTestStore connects to the database named by TEST_DATABASE_URL. Tests
// are skipped when no server is configured; rows are keyed by fresh UUIDs so
// runs do not interfere with each other.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := New(context.Background(), databaseURL)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *PostgresStore) *models.User {
	t.Helper()
	user := models.NewUser(uuid.New().String()+"@example.com", "tester", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestPostgresStore_InTxRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	leader := createTestUser(t, store)

	boom := errors.New("boom")
	group := &models.Group{LeaderID: leader.ID, TotalAmount: 40, Capacity: 2, ShareCode: uuid.New().String()}

	err := store.InTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected rolled-back group to be absent, got %v", err)
	}
}

// Serializable isolation must make the read-count-insert sequence atomic:
// with one free slot and many concurrent claimants, exactly one insert may
// commit. Conflicting transactions retry, re-read the filled count, and bail.
func TestPostgresStore_InTxSerializesCapacityChecks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	leader := createTestUser(t, store)

	group := &models.Group{LeaderID: leader.ID, TotalAmount: 100, Capacity: 2, ShareCode: uuid.New().String()}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	leaderSlot := &models.GroupMember{GroupID: group.ID, UserID: leader.ID, Amount: 100, Status: models.MemberAgreed}
	if err := store.CreateMember(ctx, leaderSlot); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	const contenders = 8
	users := make([]*models.User, contenders)
	for i := range users {
		users[i] = createTestUser(t, store)
	}

	claim := func(userID string) error {
		return store.InTx(ctx, func(tx storage.Store) error {
			members, err := tx.GetMembers(ctx, group.ID)
			if err != nil {
				return err
			}
			filled := 0
			for _, m := range members {
				if m.Filled() {
					filled++
				}
			}
			if filled >= group.Capacity {
				return fmt.Errorf("group full: %w", models.ErrCapacityExceeded)
			}
			return tx.CreateMember(ctx, &models.GroupMember{
				GroupID: group.ID, UserID: userID, Amount: 50, Status: models.MemberPending,
			})
		})
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			results <- claim(userID)
		}(users[i].ID)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, models.ErrCapacityExceeded) {
			t.Errorf("unexpected claim error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful claim, got %d", succeeded)
	}

	members, err := store.GetMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetMembers failed: %v", err)
	}
	filled := 0
	for _, m := range members {
		if m.Filled() {
			filled++
		}
	}
	if filled != group.Capacity {
		t.Errorf("filled slots %d, capacity %d", filled, group.Capacity)
	}
}
