package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/market-queue/internal/model"
)

// EntryRepo owns the entries table and its state machine.  Every
// transition is a single status-predicated UPDATE, so the precondition
// check and the write are indivisible: two concurrent verifications of
// the same entry can never both observe BILLED.  All timestamps are
// stored as UTC DATETIME(3).
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo returns a new EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning entries and queue_slots.
func (r *EntryRepo) DB() *sql.DB { return r.db }

const entryColumns = `customer_id, position, name, phone, cart_value, status, entered_at, billed_at, verified_at`

func scanEntry(row interface {
	Scan(dest ...interface{}) error
}) (*model.Entry, error) {
	var e model.Entry
	var billedAt, verifiedAt sql.NullTime
	err := row.Scan(&e.CustomerID, &e.Position, &e.Name, &e.Phone, &e.CartValue,
		&e.Status, &e.EnteredAt, &billedAt, &verifiedAt)
	if err != nil {
		return nil, err
	}
	if billedAt.Valid {
		t := billedAt.Time.UTC()
		e.BilledAt = &t
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time.UTC()
		e.VerifiedAt = &t
	}
	e.EnteredAt = e.EnteredAt.UTC()
	return &e, nil
}

// Create inserts a WAITING entry and its ACTIVE queue slot in one
// transaction.  The entries primary key (customer_id) and the unique
// index on position turn races into MySQL 1062 duplicate-key errors,
// which are mapped to ErrDuplicateID / ErrDuplicatePosition by key
// name.  enteredAt is supplied by the caller so the stored value and
// the credential's issue time are the same instant.
func (r *EntryRepo) Create(ctx context.Context, customerID string, position uint64, name, phone string, cartValue uint64, enteredAt time.Time) (*model.Entry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (customer_id, position, name, phone, cart_value, status, entered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		customerID, position, name, phone, cartValue, model.StatusWaiting, enteredAt.UTC())
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO queue_slots (position, customer_id, status, created_at) VALUES (?, ?, ?, ?)`,
		position, customerID, model.SlotActive, enteredAt.UTC())
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	committed = true

	return &model.Entry{
		CustomerID: customerID,
		Position:   position,
		Name:       name,
		Phone:      phone,
		CartValue:  cartValue,
		Status:     model.StatusWaiting,
		EnteredAt:  enteredAt.UTC(),
	}, nil
}

// duplicateKeyError classifies a MySQL 1062 error by the violated key
// name.  Returns nil when the error is not a duplicate-key violation.
func duplicateKeyError(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return nil
	}
	if strings.Contains(msg, "position") {
		return ErrDuplicatePosition
	}
	return ErrDuplicateID
}

// GetByCustomerID loads a single entry, returning ErrNotFound when the
// customer code is unknown.
func (r *EntryRepo) GetByCustomerID(ctx context.Context, customerID string) (*model.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE customer_id = ? LIMIT 1`, customerID)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return e, nil
}

// MarkBilled transitions WAITING -> BILLED.  Calling it again on a
// BILLED entry is a successful no-op (billing counters retry on flaky
// networks), but a VERIFIED entry is rejected with ErrAlreadyVerified.
func (r *EntryRepo) MarkBilled(ctx context.Context, customerID string) (*model.Entry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET status = ?, billed_at = UTC_TIMESTAMP(3)
		 WHERE customer_id = ? AND status = ?`,
		model.StatusBilled, customerID, model.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e, gerr := r.GetByCustomerID(ctx, customerID)
	if gerr != nil {
		return nil, gerr
	}
	if n == 0 {
		// Nothing transitioned: either already billed (fine) or terminal.
		switch e.Status {
		case model.StatusBilled:
			return e, nil
		case model.StatusVerified:
			return nil, ErrAlreadyVerified
		}
	}
	return e, nil
}

// UndoBilling is the administrative reversal BILLED -> WAITING.  It
// clears billed_at and fails with ErrInvalidStateForUndo unless the
// entry is exactly BILLED at the moment of the update.
func (r *EntryRepo) UndoBilling(ctx context.Context, customerID string) (*model.Entry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET status = ?, billed_at = NULL
		 WHERE customer_id = ? AND status = ?`,
		model.StatusWaiting, customerID, model.StatusBilled)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		if _, gerr := r.GetByCustomerID(ctx, customerID); gerr != nil {
			return nil, gerr // ErrNotFound or store failure
		}
		return nil, ErrInvalidStateForUndo
	}
	return r.GetByCustomerID(ctx, customerID)
}

// MarkVerified performs the terminal BILLED -> VERIFIED transition and
// completes the entry's queue slot in the same transaction, so a crash
// can never leave a VERIFIED entry with an ACTIVE slot.  The status
// predicate on the UPDATE guarantees at most one of any number of
// concurrent calls succeeds; the losers observe ErrAlreadyVerified (or
// ErrNotYetBilled after a concurrent reversal).
func (r *EntryRepo) MarkVerified(ctx context.Context, customerID string) (*model.Entry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	verifiedAt := time.Now().UTC().Truncate(time.Millisecond)
	res, err := tx.ExecContext(ctx,
		`UPDATE entries SET status = ?, verified_at = ?
		 WHERE customer_id = ? AND status = ?`,
		model.StatusVerified, verifiedAt, customerID, model.StatusBilled)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		_ = tx.Rollback()
		committed = true // nothing to roll back beyond this point
		e, gerr := r.GetByCustomerID(ctx, customerID)
		if gerr != nil {
			return nil, gerr
		}
		switch e.Status {
		case model.StatusVerified:
			return e, ErrAlreadyVerified
		case model.StatusWaiting:
			return e, ErrNotYetBilled
		}
		return nil, fmt.Errorf("%w: entry %s changed state mid-verification", ErrStoreUnavailable, customerID)
	}

	// Same timestamp on the slot keeps the pair consistent for history
	// queries.
	_, err = tx.ExecContext(ctx,
		`UPDATE queue_slots SET status = ?, completed_at = ? WHERE customer_id = ?`,
		model.SlotCompleted, verifiedAt, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	committed = true
	return r.GetByCustomerID(ctx, customerID)
}
