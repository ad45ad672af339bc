// Package calculator computes per-member share amounts for a group total.
package calculator

import (
	"fmt"
	"math"
)

// Policy computes the share of each filled member slot. Implementations must
// be deterministic: the coordinator reapplies the policy to every member on
// each join so assigned amounts never drift from the actual headcount.
//
// The returned slice has one share per filled slot, in member-creation order
// (leader first). The first share absorbs any rounding remainder so the sum
// of shares always equals what the policy distributes.
type Policy interface {
	// Shares returns the amount owed by each of the filled member slots.
	Shares(total float64, filled, capacity int) ([]float64, error)

	// Name identifies the policy in config and logs.
	Name() string
}

// EqualSplit divides the group total equally among the current filled members.
// This is the reference policy: three members of a 100.00 group owe
// 33.34 / 33.33 / 33.33.
type EqualSplit struct{}

func (EqualSplit) Name() string { return "headcount" }

func (EqualSplit) Shares(total float64, filled, capacity int) ([]float64, error) {
	if filled < 1 {
		return nil, fmt.Errorf("must have at least one filled member")
	}
	if total < 0 {
		return nil, fmt.Errorf("total cannot be negative")
	}
	return distribute(total, filled), nil
}

// CapacitySplit divides the group total by the declared capacity, so each
// member's share is fixed from the start and unfilled slots leave part of the
// total unassigned until they fill.
type CapacitySplit struct{}

func (CapacitySplit) Name() string { return "capacity" }

func (CapacitySplit) Shares(total float64, filled, capacity int) ([]float64, error) {
	if filled < 1 {
		return nil, fmt.Errorf("must have at least one filled member")
	}
	if capacity < filled {
		return nil, fmt.Errorf("capacity %d below filled count %d", capacity, filled)
	}
	perSlot := roundCents(total / float64(capacity))
	shares := make([]float64, filled)
	for i := range shares {
		shares[i] = perSlot
	}
	return shares, nil
}

// ForName maps a config value to a policy. Unknown names fall back to the
// reference equal-split policy.
func ForName(name string) Policy {
	switch name {
	case "capacity":
		return CapacitySplit{}
	default:
		return EqualSplit{}
	}
}

// distribute splits total into n cent-rounded shares; the first share absorbs
// the remainder so the shares always sum to the cent-rounded total.
func distribute(total float64, n int) []float64 {
	base := roundCents(total / float64(n))
	shares := make([]float64, n)
	for i := range shares {
		shares[i] = base
	}
	shares[0] = roundCents(total - base*float64(n-1))
	return shares
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
