package model

import "time"

// Entry statuses.  An entry moves strictly forward through
// WAITING -> BILLED -> VERIFIED; the only backward edge is the
// administrative billing reversal BILLED -> WAITING.  VERIFIED is
// terminal.  Transitions are enforced at the storage layer with
// status-predicated updates, never by caller discipline.
const (
	StatusWaiting  = "WAITING"
	StatusBilled   = "BILLED"
	StatusVerified = "VERIFIED"
)

// Entry records one customer moving through the checkout queue.
//
// Fields:
//  CustomerID – globally unique customer code (SM-prefixed), immutable.
//  Position   – globally unique, monotonically assigned queue number,
//               immutable once assigned.
//  Name       – customer name captured at the kiosk.
//  Phone      – customer phone captured at the kiosk.
//  CartValue  – informational cart total in cents; not consulted by the
//               state machine.
//  Status     – WAITING, BILLED or VERIFIED.
//  EnteredAt  – set once at registration.
//  BilledAt   – set when billing completes; cleared only by the
//               administrative reversal.
//  VerifiedAt – set at most once; present iff Status is VERIFIED.
type Entry struct {
	CustomerID string     `json:"customer_id"` // entries.customer_id
	Position   uint64     `json:"position"`    // entries.position
	Name       string     `json:"name"`        // entries.name
	Phone      string     `json:"phone"`       // entries.phone
	CartValue  uint64     `json:"cart_value"`  // entries.cart_value (cents)
	Status     string     `json:"status"`      // entries.status
	EnteredAt  time.Time  `json:"entered_at"`  // entries.entered_at
	BilledAt   *time.Time `json:"billed_at"`   // entries.billed_at (nullable)
	VerifiedAt *time.Time `json:"verified_at"` // entries.verified_at (nullable)
}

// Active reports whether the entry still occupies a place in the live
// queue.  WAITING and BILLED entries are active; VERIFIED entries have
// left the store and are no longer ranked.
func (e *Entry) Active() bool {
	return e.Status == StatusWaiting || e.Status == StatusBilled
}

// EstimateWaitMinutes returns the deterministic wait estimate for a
// customer holding the given rank in the active queue: everyone ahead
// is assumed to take avgServiceMinutes each.  Rank 1 (front of the
// line) always yields zero.
func EstimateWaitMinutes(rank int, avgServiceMinutes int) int {
	if rank <= 1 {
		return 0
	}
	return (rank - 1) * avgServiceMinutes
}
