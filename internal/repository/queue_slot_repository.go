package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/market-queue/internal/model"
)

// QueueSlotRepo reads the queue_slots projection.  Slots are written by
// EntryRepo (opened at registration, completed inside the verification
// transaction); this repo only serves history queries so completed
// traffic can be reported without scanning the live entries table.
type QueueSlotRepo struct {
	db *sql.DB
}

// NewQueueSlotRepo returns a new QueueSlotRepo bound to the given database.
func NewQueueSlotRepo(db *sql.DB) *QueueSlotRepo { return &QueueSlotRepo{db: db} }

// ListCompleted returns completed slots newest-first, capped at limit.
// A non-positive limit defaults to 100.
func (r *QueueSlotRepo) ListCompleted(ctx context.Context, limit int) ([]model.QueueSlot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT position, customer_id, status, created_at, completed_at
		 FROM queue_slots WHERE status = ?
		 ORDER BY completed_at DESC LIMIT ?`,
		model.SlotCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()
	slots := make([]model.QueueSlot, 0, limit)
	for rows.Next() {
		var s model.QueueSlot
		var completedAt sql.NullTime
		if err := rows.Scan(&s.Position, &s.CustomerID, &s.Status, &s.CreatedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		if completedAt.Valid {
			t := completedAt.Time.UTC()
			s.CompletedAt = &t
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return slots, nil
}

// GetByPosition loads a single slot, returning ErrNotFound for an
// unknown position.
func (r *QueueSlotRepo) GetByPosition(ctx context.Context, position uint64) (*model.QueueSlot, error) {
	var s model.QueueSlot
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT position, customer_id, status, created_at, completed_at
		 FROM queue_slots WHERE position = ? LIMIT 1`,
		position).Scan(&s.Position, &s.CustomerID, &s.Status, &s.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		s.CompletedAt = &t
	}
	return &s, nil
}
