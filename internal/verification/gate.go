// Package verification implements the exit gate: it turns a scanned QR
// payload into exactly one of the defined outcomes, performing the
// terminal VERIFIED transition at most once per customer no matter how
// many scanners race on the same credential.
package verification

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/market-queue/internal/credential"
	"github.com/iliyamo/market-queue/internal/model"
	"github.com/iliyamo/market-queue/internal/repository"
)

// Result statuses and failure reasons reported to exit personnel.  A
// duplicate scan and a not-billed customer call for different
// interventions at the door, so the reason is always specific.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"

	ReasonInvalidQR     = "INVALID_QR"
	ReasonDataMismatch  = "DATA_MISMATCH"
	ReasonDuplicateScan = "DUPLICATE_SCAN"
	ReasonNotBilled     = "NOT_BILLED"
)

// EntryStore is the slice of the entry repository the gate needs.
// *repository.EntryRepo satisfies it; tests substitute an in-memory
// implementation.
type EntryStore interface {
	GetByCustomerID(ctx context.Context, customerID string) (*model.Entry, error)
	MarkVerified(ctx context.Context, customerID string) (*model.Entry, error)
}

// Result is the outcome of one scan.
type Result struct {
	Status          string       `json:"status"`
	Reason          string       `json:"reason,omitempty"`
	Message         string       `json:"message"`
	Entry           *model.Entry `json:"entry,omitempty"`
	PriorVerifiedAt *time.Time   `json:"prior_verified_at,omitempty"`
}

// Gate validates presented credentials against the entry store.
type Gate struct {
	store EntryStore
}

// NewGate returns a Gate backed by the given store.
func NewGate(store EntryStore) *Gate {
	if store == nil {
		panic("nil store passed to NewGate")
	}
	return &Gate{store: store}
}

// Verify runs the fixed check sequence over a scanned payload:
// decode, lookup, position match, replay, billing state, and only then
// the terminal transition.  An unknown customer code produces the same
// INVALID_QR signal as a garbled payload so the scan response never
// reveals whether a code exists.  A non-nil error is returned only for
// infrastructure failures; every business outcome is a Result.
func (g *Gate) Verify(ctx context.Context, payload string) (Result, error) {
	cred, err := credential.Decode(payload)
	if err != nil {
		return failed(ReasonInvalidQR, "credential could not be read"), nil
	}

	entry, err := g.store.GetByCustomerID(ctx, cred.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return failed(ReasonInvalidQR, "credential could not be read"), nil
		}
		return Result{}, err
	}

	if entry.Position != cred.Position {
		return failed(ReasonDataMismatch, "credential does not match queue records"), nil
	}

	switch entry.Status {
	case model.StatusVerified:
		r := failed(ReasonDuplicateScan, "credential was already used")
		r.PriorVerifiedAt = entry.VerifiedAt
		return r, nil
	case model.StatusWaiting:
		return failed(ReasonNotBilled, "customer has not been billed"), nil
	}

	updated, err := g.store.MarkVerified(ctx, cred.CustomerID)
	switch {
	case err == nil:
		return Result{Status: StatusSuccess, Message: "exit verified", Entry: updated}, nil
	case errors.Is(err, repository.ErrAlreadyVerified):
		// Lost a race with another scanner between the status read and
		// the transition.
		r := failed(ReasonDuplicateScan, "credential was already used")
		if updated != nil {
			r.PriorVerifiedAt = updated.VerifiedAt
		}
		return r, nil
	case errors.Is(err, repository.ErrNotYetBilled):
		return failed(ReasonNotBilled, "customer has not been billed"), nil
	case errors.Is(err, repository.ErrNotFound):
		return failed(ReasonInvalidQR, "credential could not be read"), nil
	default:
		return Result{}, err
	}
}

func failed(reason, message string) Result {
	return Result{Status: StatusFailed, Reason: reason, Message: message}
}
