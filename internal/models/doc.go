// Package models defines the core domain models for Tabshare.
//
// # Models
//
//   - Group: a bill-splitting unit with a total amount and a bounded member capacity
//   - GroupMember: one (group, user) slot with an owed amount and agreement status
//   - User: a registered account referenced by groups and member slots
//   - PaymentCard: the payment instrument issued once a group reaches consensus
//
// # Design Principles
//
// 1. **Soft lifecycle**: groups and members are never deleted by the core; state
// changes go through the status enums only.
// 2. **Avoid circular references**: relationships use ID strings, not pointers.
// 3. **Explicit errors**: the error kinds callers branch on live here as
// sentinels, so the service, storage, and transport layers share one vocabulary.
package models
