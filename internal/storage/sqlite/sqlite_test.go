package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tabshare-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	leader := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, leader); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("CreateGroup generates ID and defaults status", func(t *testing.T) {
		group := &models.Group{
			LeaderID:    leader.ID,
			TotalAmount: 100.0,
			Capacity:    3,
			ShareCode:   "code-1",
		}

		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.Status != models.GroupPending {
			t.Errorf("Expected status PENDING, got %s", group.Status)
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetGroup and GetGroupByShareCode retrieve the same row", func(t *testing.T) {
		group := &models.Group{
			LeaderID:    leader.ID,
			TotalAmount: 60.0,
			Capacity:    2,
			Description: "dinner",
			ShareCode:   "code-2",
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		byID, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		byCode, err := store.GetGroupByShareCode(ctx, "code-2")
		if err != nil {
			t.Fatalf("GetGroupByShareCode failed: %v", err)
		}
		if byID.ID != byCode.ID {
			t.Errorf("ID mismatch: %s vs %s", byID.ID, byCode.ID)
		}
		if byID.Description != "dinner" {
			t.Errorf("Description mismatch: got %q", byID.Description)
		}
	})

	t.Run("GetGroup returns ErrNotFound for missing group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("members round-trip in creation order", func(t *testing.T) {
		bob := models.NewUser("bob@example.com", "Bob", "hash")
		if err := store.CreateUser(ctx, bob); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		group := &models.Group{LeaderID: leader.ID, TotalAmount: 50, Capacity: 2, ShareCode: "code-3"}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		first := &models.GroupMember{GroupID: group.ID, UserID: leader.ID, Amount: 50, Status: models.MemberAgreed, CreatedAt: 1}
		second := &models.GroupMember{GroupID: group.ID, UserID: bob.ID, Amount: 25, Status: models.MemberPending, CreatedAt: 2}
		if err := store.CreateMember(ctx, first); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}
		if err := store.CreateMember(ctx, second); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}

		members, err := store.GetMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Fatalf("Expected 2 members, got %d", len(members))
		}
		if members[0].UserID != leader.ID {
			t.Errorf("Expected leader first, got %s", members[0].UserID)
		}

		got, err := store.GetMember(ctx, group.ID, bob.ID)
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if got.Status != models.MemberPending {
			t.Errorf("Expected PENDING, got %s", got.Status)
		}
	})

	t.Run("created_at ties keep insertion order", func(t *testing.T) {
		erin := models.NewUser("erin@example.com", "Erin", "hash")
		if err := store.CreateUser(ctx, erin); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		group := &models.Group{LeaderID: leader.ID, TotalAmount: 80, Capacity: 2, ShareCode: "code-tie"}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		// Same Unix second; the second row's id sorts lexicographically before
		// the first's, so ordering by id would flip the leader out of front.
		first := &models.GroupMember{ID: "zzzz-leader", GroupID: group.ID, UserID: leader.ID, Amount: 80, Status: models.MemberAgreed, CreatedAt: 5}
		second := &models.GroupMember{ID: "aaaa-member", GroupID: group.ID, UserID: erin.ID, Amount: 40, Status: models.MemberPending, CreatedAt: 5}
		if err := store.CreateMember(ctx, first); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}
		if err := store.CreateMember(ctx, second); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}

		members, err := store.GetMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetMembers failed: %v", err)
		}
		if members[0].UserID != leader.ID {
			t.Errorf("Expected leader first despite created_at tie, got %s", members[0].UserID)
		}
	})

	t.Run("transactions round-trip", func(t *testing.T) {
		frank := models.NewUser("frank@example.com", "Frank", "hash")
		if err := store.CreateUser(ctx, frank); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		txn := &models.Transaction{SenderID: leader.ID, ReceiverID: frank.ID, Amount: 15.25, Description: "taxi"}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if txn.Status != models.TransactionPending {
			t.Errorf("Expected default status PENDING, got %s", txn.Status)
		}

		txn.Status = models.TransactionCompleted
		if err := store.SaveTransaction(ctx, txn); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}

		got, err := store.GetTransaction(ctx, txn.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if got.Status != models.TransactionCompleted || got.Amount != 15.25 {
			t.Errorf("Round-trip mismatch: %+v", got)
		}

		if _, err := store.GetTransaction(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		err = store.SaveTransaction(ctx, &models.Transaction{ID: "missing", Status: models.TransactionFailed})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("SaveTransaction: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate filled slot for the same user is rejected", func(t *testing.T) {
		group := &models.Group{LeaderID: leader.ID, TotalAmount: 50, Capacity: 3, ShareCode: "code-4"}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		m1 := &models.GroupMember{GroupID: group.ID, UserID: leader.ID, Amount: 50, Status: models.MemberAgreed}
		if err := store.CreateMember(ctx, m1); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}
		m2 := &models.GroupMember{GroupID: group.ID, UserID: leader.ID, Amount: 25, Status: models.MemberPending}
		if err := store.CreateMember(ctx, m2); err == nil {
			t.Error("Expected unique index violation for duplicate filled slot")
		}
	})

	t.Run("reserved empty slots may coexist", func(t *testing.T) {
		group := &models.Group{LeaderID: leader.ID, TotalAmount: 90, Capacity: 3, ShareCode: "code-5"}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		for i := 0; i < 2; i++ {
			slot := &models.GroupMember{GroupID: group.ID, Amount: 30, Status: models.MemberPending}
			if err := store.CreateMember(ctx, slot); err != nil {
				t.Fatalf("CreateMember (reserved slot %d) failed: %v", i, err)
			}
		}

		members, err := store.GetMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Errorf("Expected 2 reserved slots, got %d", len(members))
		}
	})

	t.Run("SaveGroup and SaveMember report missing rows", func(t *testing.T) {
		err := store.SaveGroup(ctx, &models.Group{ID: "missing", Status: models.GroupActive})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("SaveGroup: expected ErrNotFound, got %v", err)
		}
		err = store.SaveMember(ctx, &models.GroupMember{ID: "missing"})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("SaveMember: expected ErrNotFound, got %v", err)
		}
	})
}

func TestSQLiteStore_InTxRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	leader := models.NewUser("carol@example.com", "Carol", "hash")
	if err := store.CreateUser(ctx, leader); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	boom := errors.New("boom")
	group := &models.Group{LeaderID: leader.ID, TotalAmount: 40, Capacity: 2, ShareCode: "tx-code"}

	err := store.InTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		member := &models.GroupMember{GroupID: group.ID, UserID: leader.ID, Amount: 40, Status: models.MemberAgreed}
		if err := tx.CreateMember(ctx, member); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	// Nothing from the failed transaction is visible.
	if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected rolled-back group to be absent, got %v", err)
	}
}

func TestSQLiteStore_InTxCommit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	leader := models.NewUser("dave@example.com", "Dave", "hash")
	if err := store.CreateUser(ctx, leader); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	group := &models.Group{LeaderID: leader.ID, TotalAmount: 40, Capacity: 2, ShareCode: "tx-commit"}
	err := store.InTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		// Nested InTx joins the open transaction instead of deadlocking.
		return tx.InTx(ctx, func(inner storage.Store) error {
			return inner.CreateMember(ctx, &models.GroupMember{
				GroupID: group.ID, UserID: leader.ID, Amount: 40, Status: models.MemberAgreed,
			})
		})
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	members, err := store.GetMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetMembers failed: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("Expected 1 member after commit, got %d", len(members))
	}
}
