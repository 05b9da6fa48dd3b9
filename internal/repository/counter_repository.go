package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// positionCounter is the single counters row backing queue position
// assignment for the whole store.
const positionCounter = "queue_position"

// CounterRepo hands out globally unique, strictly increasing queue
// positions.  The increment is a single atomic statement against the
// counters table – never a read-max-then-write, which would let two
// concurrent registrations observe the same maximum.
type CounterRepo struct{ DB *sql.DB }

// NewCounterRepo returns a CounterRepo bound to the given database.
func NewCounterRepo(db *sql.DB) *CounterRepo { return &CounterRepo{DB: db} }

// NextPosition atomically increments and returns the shared queue
// counter.  The LAST_INSERT_ID trick makes MySQL return the
// post-increment value of this session's update without a second
// round-trip, so no two callers can ever see the same number.  On any
// database failure the error wraps ErrStoreUnavailable; a position is
// never fabricated.
func (r *CounterRepo) NextPosition(ctx context.Context) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)`,
		positionCounter)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if id <= 0 {
		// First insert reports LastInsertId 0 on some driver versions;
		// the row value is 1 in that case.
		return 1, nil
	}
	return uint64(id), nil
}
