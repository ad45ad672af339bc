package models

// GroupStatus is the lifecycle state of a payment group.
type GroupStatus string

const (
	// GroupPending is the initial state: members are still joining and agreeing.
	GroupPending GroupStatus = "PENDING"
	// GroupActive means every filled slot agreed; the group is payment-ready.
	GroupActive GroupStatus = "ACTIVE"
	// GroupCompleted means the payment went through.
	GroupCompleted GroupStatus = "COMPLETED"
	// GroupCancelled is a terminal state set by external orchestration
	// (or the fail-fast decline strategy).
	GroupCancelled GroupStatus = "CANCELLED"
)

// MemberStatus is the agreement state of one member slot.
type MemberStatus string

const (
	MemberPending  MemberStatus = "PENDING"
	MemberAgreed   MemberStatus = "AGREED"
	MemberDeclined MemberStatus = "DECLINED"
)

// Group represents a bill-splitting unit: one total amount shared by up to
// Capacity members. The leader creates the group and is auto-enrolled as its
// first, already-agreed member.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// LeaderID references the user who created the group.
	LeaderID string

	// TotalAmount is the full amount owed by the group.
	TotalAmount float64

	// Capacity is the maximum number of member slots.
	Capacity int

	// Description is an optional human-readable note.
	Description string

	// ShareCode is the opaque invite code others use to find and join the group.
	ShareCode string

	// Status is the group's lifecycle state. Starts at GroupPending.
	Status GroupStatus

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// GroupMember is one slot in a group. A slot with an empty UserID is reserved
// but unfilled; joining either claims a reserved slot or appends a new one.
type GroupMember struct {
	// ID is the unique identifier for the member row (UUID format).
	ID string

	// GroupID is the group this slot belongs to.
	GroupID string

	// UserID references the user holding the slot. Empty means reserved/unfilled.
	UserID string

	// Amount is this member's currently assigned share of the group total.
	Amount float64

	// Status is the slot's agreement state. Starts at MemberPending,
	// except the leader who starts at MemberAgreed.
	Status MemberStatus

	// CreatedAt is the Unix timestamp when the slot was created.
	CreatedAt int64
}

// Filled reports whether the slot is held by a user.
func (m *GroupMember) Filled() bool {
	return m.UserID != ""
}
