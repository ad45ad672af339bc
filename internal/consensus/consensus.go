// Package consensus decides when a group's member set has reached unanimous
// agreement, and what a decline means for the group.
package consensus

import (
	"github.com/samber/lo"

	"github.com/tabshare/tabshare/internal/models"
)

// Strategy controls how a DECLINED member affects the group.
type Strategy string

const (
	// Wait leaves the group as-is on decline; the caller decides whether to
	// replace the member or cancel. Default.
	Wait Strategy = "wait"

	// CancelOnDecline fails fast: any declined member cancels a pending group.
	CancelOnDecline Strategy = "cancel"
)

// Outcome is the group-level consequence of the current member states.
type Outcome int

const (
	// OutcomeNone means no group transition is warranted.
	OutcomeNone Outcome = iota
	// OutcomeActivate means every filled slot agreed: the group is payment-ready.
	OutcomeActivate
	// OutcomeCancel means a member declined under the fail-fast strategy.
	OutcomeCancel
)

// AllAgreed reports whether every filled member slot has agreed.
// Reserved (unfilled) slots do not vote. A group with no filled slots has no
// consensus.
func AllAgreed(members []*models.GroupMember) bool {
	filled := lo.Filter(members, func(m *models.GroupMember, _ int) bool {
		return m.Filled()
	})
	if len(filled) == 0 {
		return false
	}
	return lo.EveryBy(filled, func(m *models.GroupMember) bool {
		return m.Status == models.MemberAgreed
	})
}

// Evaluate maps the current member set to a group outcome under the given
// strategy. The caller applies the outcome (and its status guard) itself.
func Evaluate(members []*models.GroupMember, strategy Strategy) Outcome {
	if strategy == CancelOnDecline {
		declined := lo.SomeBy(members, func(m *models.GroupMember) bool {
			return m.Filled() && m.Status == models.MemberDeclined
		})
		if declined {
			return OutcomeCancel
		}
	}
	if AllAgreed(members) {
		return OutcomeActivate
	}
	return OutcomeNone
}

// StrategyForName maps a config value to a strategy, defaulting to Wait.
func StrategyForName(name string) Strategy {
	if Strategy(name) == CancelOnDecline {
		return CancelOnDecline
	}
	return Wait
}
