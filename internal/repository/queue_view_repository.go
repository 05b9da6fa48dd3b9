package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/market-queue/internal/model"
)

// QueueViewRepo is the read-only projection over the entries table:
// live ordering, per-customer rank and completion latency.  Nothing
// here mutates state and nothing is cached – every call reflects the
// store at call time.
type QueueViewRepo struct {
	db *sql.DB
}

// NewQueueViewRepo returns a new QueueViewRepo bound to the given database.
func NewQueueViewRepo(db *sql.DB) *QueueViewRepo { return &QueueViewRepo{db: db} }

// ActiveOrdered returns all WAITING and BILLED entries sorted ascending
// by position.  When the queue is empty an empty slice is returned.
func (r *QueueViewRepo) ActiveOrdered(ctx context.Context) ([]model.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE status IN (?, ?) ORDER BY position ASC`,
		model.StatusWaiting, model.StatusBilled)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()
	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return entries, nil
}

// Rank returns the 1-based place of a customer in the active queue:
// one plus the number of active entries with a strictly smaller
// position.  For an already VERIFIED entry it returns ranked=false –
// the customer has left and holds no place in line.
func (r *QueueViewRepo) Rank(ctx context.Context, customerID string) (rank int, ranked bool, err error) {
	e, err := r.entryStatus(ctx, customerID)
	if err != nil {
		return 0, false, err
	}
	if e.Status == model.StatusVerified {
		return 0, false, nil
	}
	var ahead int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries
		 WHERE status IN (?, ?) AND position < ?`,
		model.StatusWaiting, model.StatusBilled, e.Position).Scan(&ahead)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ahead + 1, true, nil
}

func (r *QueueViewRepo) entryStatus(ctx context.Context, customerID string) (*model.Entry, error) {
	var e model.Entry
	err := r.db.QueryRowContext(ctx,
		`SELECT customer_id, position, status FROM entries WHERE customer_id = ? LIMIT 1`,
		customerID).Scan(&e.CustomerID, &e.Position, &e.Status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &e, nil
}

// AverageCompletionMinutes is the mean of (verified_at - entered_at)
// across all VERIFIED entries, in minutes.  Zero when nothing has been
// verified yet; that is a defined value, not an error.
func (r *QueueViewRepo) AverageCompletionMinutes(ctx context.Context) (float64, error) {
	var avgSeconds sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(TIMESTAMPDIFF(SECOND, entered_at, verified_at))
		 FROM entries WHERE status = ?`,
		model.StatusVerified).Scan(&avgSeconds)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !avgSeconds.Valid {
		return 0, nil
	}
	return avgSeconds.Float64 / 60.0, nil
}
