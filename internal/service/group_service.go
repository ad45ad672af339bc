package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/calculator"
	"github.com/tabshare/tabshare/internal/consensus"
	"github.com/tabshare/tabshare/internal/issuer"
	"github.com/tabshare/tabshare/internal/metrics"
	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/pubsub"
	"github.com/tabshare/tabshare/internal/storage"
)

// GroupService coordinates group membership and agreement state. Every
// mutation runs in a single store transaction and, on success, pushes the
// changed entities through the publisher before returning. On error the store
// is left unchanged and nothing is published.
type GroupService struct {
	store    storage.Store
	pub      *pubsub.Publisher
	split    calculator.Policy
	strategy consensus.Strategy
	issuer   issuer.Issuer
}

// GroupOption configures a GroupService.
type GroupOption func(*GroupService)

// WithSplitPolicy overrides the share recomputation policy.
func WithSplitPolicy(p calculator.Policy) GroupOption {
	return func(s *GroupService) { s.split = p }
}

// WithDeclineStrategy overrides how declined members affect the group.
func WithDeclineStrategy(st consensus.Strategy) GroupOption {
	return func(s *GroupService) { s.strategy = st }
}

// WithIssuer overrides the payment card issuer.
func WithIssuer(i issuer.Issuer) GroupOption {
	return func(s *GroupService) { s.issuer = i }
}

// NewGroupService creates a GroupService with the given storage backend and
// publisher. Defaults: equal split by headcount, wait-on-decline, local issuer.
func NewGroupService(store storage.Store, pub *pubsub.Publisher, opts ...GroupOption) *GroupService {
	s := &GroupService{
		store:    store,
		pub:      pub,
		split:    calculator.EqualSplit{},
		strategy: consensus.Wait,
		issuer:   issuer.Local{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.GroupOperations.WithLabelValues(op, result).Inc()
}

// CreateGroup creates a PENDING group led by leaderID and auto-enrolls the
// leader as an AGREED member owing the full amount. Group and leader member
// persist together or not at all.
func (s *GroupService) CreateGroup(ctx context.Context, leaderID string, totalAmount float64, capacity int, description string) (_ *models.Group, err error) {
	defer func() { observe("create", err) }()

	slog.Info("CreateGroup request received",
		"leader_id", leaderID,
		"total_amount", totalAmount,
		"capacity", capacity,
	)

	if capacity < 1 {
		return nil, fmt.Errorf("capacity must be at least 1: %w", models.ErrInvalidArgument)
	}
	if totalAmount <= 0 {
		return nil, fmt.Errorf("total amount must be positive: %w", models.ErrInvalidArgument)
	}

	var group *models.Group
	var leader *models.GroupMember
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if _, err := tx.GetUser(ctx, leaderID); err != nil {
			return fmt.Errorf("leader: %w", err)
		}

		group = &models.Group{
			LeaderID:    leaderID,
			TotalAmount: totalAmount,
			Capacity:    capacity,
			Description: description,
			ShareCode:   uuid.New().String(),
			Status:      models.GroupPending,
		}
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}

		leader = &models.GroupMember{
			GroupID: group.ID,
			UserID:  leaderID,
			Amount:  totalAmount,
			Status:  models.MemberAgreed,
		}
		return tx.CreateMember(ctx, leader)
	})
	if err != nil {
		slog.Error("CreateGroup failed", "leader_id", leaderID, "error", err)
		return nil, err
	}

	s.pub.PublishGroup(group.ID, group)
	s.pub.PublishMember(group.ID, leader)

	slog.Info("Group created", "group_id", group.ID, "share_code", group.ShareCode)
	return group, nil
}

// JoinGroup adds userID to the group, claiming a reserved slot when one
// exists, and recomputes every member's share under the configured policy so
// assigned amounts never lag the actual headcount.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID string) (_ *models.GroupMember, err error) {
	defer func() { observe("join", err) }()

	slog.Info("JoinGroup request received", "group_id", groupID, "user_id", userID)

	var joined *models.GroupMember
	var changed []*models.GroupMember
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if group.Status != models.GroupPending && group.Status != models.GroupActive {
			return fmt.Errorf("group %s is %s: %w", groupID, group.Status, models.ErrInvalidState)
		}
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}

		members, err := tx.GetMembers(ctx, groupID)
		if err != nil {
			return err
		}

		filled := 0
		var reserved *models.GroupMember
		for _, m := range members {
			if m.UserID == userID {
				return fmt.Errorf("user %s in group %s: %w", userID, groupID, models.ErrConflict)
			}
			if m.Filled() {
				filled++
			} else if reserved == nil {
				reserved = m
			}
		}
		if filled >= group.Capacity {
			return fmt.Errorf("group %s full (%d/%d): %w", groupID, filled, group.Capacity, models.ErrCapacityExceeded)
		}

		if reserved != nil {
			reserved.UserID = userID
			reserved.Status = models.MemberPending
			joined = reserved
		} else {
			joined = &models.GroupMember{
				GroupID: groupID,
				UserID:  userID,
				Status:  models.MemberPending,
			}
			if err := tx.CreateMember(ctx, joined); err != nil {
				return err
			}
			members = append(members, joined)
		}

		changed, err = s.recomputeShares(ctx, tx, group, members, joined)
		return err
	})
	if err != nil {
		slog.Warn("JoinGroup failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, err
	}

	for _, m := range changed {
		s.pub.PublishMember(groupID, m)
	}

	slog.Info("Member joined", "group_id", groupID, "user_id", userID, "amount", joined.Amount)
	return joined, nil
}

// recomputeShares applies the split policy to every filled slot and saves the
// rows whose amount (or user binding) changed. Returns the saved members with
// the joined slot last, so its event follows its co-members' adjustments.
func (s *GroupService) recomputeShares(ctx context.Context, tx storage.Store, group *models.Group, members []*models.GroupMember, joined *models.GroupMember) ([]*models.GroupMember, error) {
	var filled []*models.GroupMember
	for _, m := range members {
		if m.Filled() {
			filled = append(filled, m)
		}
	}

	shares, err := s.split.Shares(group.TotalAmount, len(filled), group.Capacity)
	if err != nil {
		return nil, fmt.Errorf("split policy %s: %w", s.split.Name(), err)
	}

	var changed []*models.GroupMember
	for i, m := range filled {
		if m.Amount != shares[i] || m == joined {
			m.Amount = shares[i]
			if err := tx.SaveMember(ctx, m); err != nil {
				return nil, err
			}
			if m != joined {
				changed = append(changed, m)
			}
		}
	}
	return append(changed, joined), nil
}

// UpdateMemberStatus moves a member slot from PENDING to AGREED or DECLINED
// and runs consensus evaluation. Re-applying the member's current status is an
// idempotent no-op: nothing is saved, published, or re-evaluated.
func (s *GroupService) UpdateMemberStatus(ctx context.Context, groupID, userID string, status models.MemberStatus) (_ *models.GroupMember, err error) {
	defer func() { observe("member_status", err) }()

	slog.Info("UpdateMemberStatus request received",
		"group_id", groupID,
		"user_id", userID,
		"status", status,
	)

	if status != models.MemberAgreed && status != models.MemberDeclined {
		return nil, fmt.Errorf("target status %s: %w", status, models.ErrInvalidArgument)
	}

	var member *models.GroupMember
	var group *models.Group
	memberChanged := false
	groupChanged := false
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		group, err = tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		member, err = tx.GetMember(ctx, groupID, userID)
		if err != nil {
			return err
		}

		if member.Status == status {
			// Idempotent re-application: no transition, no side effects.
			return nil
		}
		if member.Status != models.MemberPending {
			return fmt.Errorf("member is %s: %w", member.Status, models.ErrInvalidState)
		}

		member.Status = status
		if err := tx.SaveMember(ctx, member); err != nil {
			return err
		}
		memberChanged = true

		members, err := tx.GetMembers(ctx, groupID)
		if err != nil {
			return err
		}
		switch consensus.Evaluate(members, s.strategy) {
		case consensus.OutcomeActivate:
			if group.Status == models.GroupPending {
				group.Status = models.GroupActive
				groupChanged = true
			}
		case consensus.OutcomeCancel:
			if group.Status == models.GroupPending {
				group.Status = models.GroupCancelled
				groupChanged = true
			}
		}
		if groupChanged {
			return tx.SaveGroup(ctx, group)
		}
		return nil
	})
	if err != nil {
		slog.Warn("UpdateMemberStatus failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, err
	}

	if memberChanged {
		s.pub.PublishMember(groupID, member)
	}
	if groupChanged {
		s.pub.PublishGroup(groupID, group)
		slog.Info("Group consensus reached", "group_id", groupID, "status", group.Status)
	}

	return member, nil
}

// UpdateGroupStatus is the administrative override: it sets any valid status
// without a transition guard. Callers are trusted external orchestration.
func (s *GroupService) UpdateGroupStatus(ctx context.Context, groupID string, status models.GroupStatus) (_ *models.Group, err error) {
	defer func() { observe("group_status", err) }()

	slog.Info("UpdateGroupStatus request received", "group_id", groupID, "status", status)

	switch status {
	case models.GroupPending, models.GroupActive, models.GroupCompleted, models.GroupCancelled:
	default:
		return nil, fmt.Errorf("group status %s: %w", status, models.ErrInvalidArgument)
	}

	var group *models.Group
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		group, err = tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		group.Status = status
		return tx.SaveGroup(ctx, group)
	})
	if err != nil {
		slog.Warn("UpdateGroupStatus failed", "group_id", groupID, "error", err)
		return nil, err
	}

	s.pub.PublishGroup(groupID, group)
	slog.Info("Group status updated", "group_id", groupID, "status", status)
	return group, nil
}

// IssuePaymentCard issues the payment instrument for a group whose filled
// slots have all agreed. Number generation is delegated to the issuer.
func (s *GroupService) IssuePaymentCard(ctx context.Context, groupID string) (_ *models.PaymentCard, err error) {
	defer func() { observe("issue_card", err) }()

	slog.Info("IssuePaymentCard request received", "group_id", groupID)

	var card *models.PaymentCard
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		members, err := tx.GetMembers(ctx, groupID)
		if err != nil {
			return err
		}
		if !consensus.AllAgreed(members) {
			return fmt.Errorf("not all members have agreed: %w", models.ErrInvalidState)
		}

		card, err = s.issuer.Issue(ctx, group)
		if err != nil {
			return fmt.Errorf("issuer: %w", err)
		}
		return tx.CreatePaymentCard(ctx, card)
	})
	if err != nil {
		slog.Warn("IssuePaymentCard failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Info("Payment card issued", "group_id", groupID, "card_id", card.ID)
	return card, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// GetGroupByShareCode retrieves a group by its invite code.
func (s *GroupService) GetGroupByShareCode(ctx context.Context, code string) (*models.Group, error) {
	return s.store.GetGroupByShareCode(ctx, code)
}

// ListMembers retrieves a group's member slots, leader first.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.GetMembers(ctx, groupID)
}
