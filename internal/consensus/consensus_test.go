package consensus

import (
	"testing"

	"github.com/tabshare/tabshare/internal/models"
)

func member(userID string, status models.MemberStatus) *models.GroupMember {
	return &models.GroupMember{ID: "m-" + userID, UserID: userID, Status: status}
}

func TestAllAgreed(t *testing.T) {
	tests := []struct {
		name    string
		members []*models.GroupMember
		want    bool
	}{
		{
			name:    "no members",
			members: nil,
			want:    false,
		},
		{
			name:    "only reserved slots",
			members: []*models.GroupMember{member("", models.MemberPending)},
			want:    false,
		},
		{
			name:    "single agreed member",
			members: []*models.GroupMember{member("a", models.MemberAgreed)},
			want:    true,
		},
		{
			name: "one member still pending",
			members: []*models.GroupMember{
				member("a", models.MemberAgreed),
				member("b", models.MemberPending),
			},
			want: false,
		},
		{
			name: "declined member blocks consensus",
			members: []*models.GroupMember{
				member("a", models.MemberAgreed),
				member("b", models.MemberDeclined),
			},
			want: false,
		},
		{
			name: "reserved slots do not vote",
			members: []*models.GroupMember{
				member("a", models.MemberAgreed),
				member("b", models.MemberAgreed),
				member("", models.MemberPending),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllAgreed(tt.members); got != tt.want {
				t.Errorf("AllAgreed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	agreedPair := []*models.GroupMember{
		member("a", models.MemberAgreed),
		member("b", models.MemberAgreed),
	}
	withDecline := []*models.GroupMember{
		member("a", models.MemberAgreed),
		member("b", models.MemberDeclined),
	}

	tests := []struct {
		name     string
		members  []*models.GroupMember
		strategy Strategy
		want     Outcome
	}{
		{"all agreed activates", agreedPair, Wait, OutcomeActivate},
		{"decline under wait does nothing", withDecline, Wait, OutcomeNone},
		{"decline under fail-fast cancels", withDecline, CancelOnDecline, OutcomeCancel},
		{"all agreed under fail-fast still activates", agreedPair, CancelOnDecline, OutcomeActivate},
		{"pending members yield no outcome", []*models.GroupMember{member("a", models.MemberPending)}, Wait, OutcomeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.members, tt.strategy); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStrategyForName(t *testing.T) {
	if StrategyForName("cancel") != CancelOnDecline {
		t.Error(`StrategyForName("cancel") should be CancelOnDecline`)
	}
	if StrategyForName("wait") != Wait {
		t.Error(`StrategyForName("wait") should be Wait`)
	}
	if StrategyForName("bogus") != Wait {
		t.Error("unknown strategy should default to Wait")
	}
}
