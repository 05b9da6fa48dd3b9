package model

import "time"

// QueueSlot statuses.  ACTIVE mirrors an entry in WAITING or BILLED;
// COMPLETED mirrors VERIFIED.  The slot flips to COMPLETED in the same
// transaction that verifies the entry, so the two are never observable
// in a half-applied state.
const (
	SlotActive    = "ACTIVE"
	SlotCompleted = "COMPLETED"
)

// QueueSlot is the lightweight projection of an entry's place in the
// queue.  It exists so completed history can be queried without
// scanning the live entries table.
//
// Fields:
//  Position    – queue number, primary key; same value as the entry's.
//  CustomerID  – customer code of the entry occupying the slot.
//  Status      – ACTIVE or COMPLETED.
//  CreatedAt   – when the slot was opened (registration time).
//  CompletedAt – when the slot was completed; equals the entry's
//                VerifiedAt.
type QueueSlot struct {
	Position    uint64     `json:"position"`     // queue_slots.position
	CustomerID  string     `json:"customer_id"`  // queue_slots.customer_id
	Status      string     `json:"status"`       // queue_slots.status
	CreatedAt   time.Time  `json:"created_at"`   // queue_slots.created_at
	CompletedAt *time.Time `json:"completed_at"` // queue_slots.completed_at (nullable)
}
