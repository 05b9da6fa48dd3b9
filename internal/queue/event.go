// Package queue defines audit messages exchanged over the message broker.
package queue

// Audit event types carried on the queue.audit queue.
const (
	EventExitVerified    = "exit.verified"
	EventBillingReverted = "billing.reverted"
)

// AuditEvent is published for every exit verification and every
// administrative billing reversal.  It carries enough for downstream
// consumers to build an audit trail without querying the primary
// database.  OperatorID and Reason are only set for reversals.
type AuditEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	CustomerID string `json:"customer_id"`
	Position   uint64 `json:"position"`
	OperatorID uint64 `json:"operator_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
