package verification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/market-queue/internal/credential"
	"github.com/iliyamo/market-queue/internal/model"
	"github.com/iliyamo/market-queue/internal/repository"
)

// fakeStore is an in-memory EntryStore with the same transition
// semantics as the SQL repository: MarkVerified succeeds at most once
// per customer, under a lock, so racing scans resolve the way the
// status-predicated update does in MySQL.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]*model.Entry
}

func newFakeStore(entries ...*model.Entry) *fakeStore {
	s := &fakeStore{entries: make(map[string]*model.Entry)}
	for _, e := range entries {
		s.entries[e.CustomerID] = e
	}
	return s
}

func (s *fakeStore) GetByCustomerID(_ context.Context, customerID string) (*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[customerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *fakeStore) MarkVerified(_ context.Context, customerID string) (*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[customerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	switch e.Status {
	case model.StatusVerified:
		cp := *e
		return &cp, repository.ErrAlreadyVerified
	case model.StatusWaiting:
		return nil, repository.ErrNotYetBilled
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	e.Status = model.StatusVerified
	e.VerifiedAt = &now
	cp := *e
	return &cp, nil
}

func billedEntry(position uint64) *model.Entry {
	entered := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	billed := entered.Add(12 * time.Minute)
	return &model.Entry{
		CustomerID: credential.CustomerIDForPosition(position),
		Position:   position,
		Name:       "Asha Verma",
		Phone:      "+4917612345678",
		CartValue:  129900,
		Status:     model.StatusBilled,
		EnteredAt:  entered,
		BilledAt:   &billed,
	}
}

func encodeFor(t *testing.T, e *model.Entry) string {
	t.Helper()
	payload, err := credential.Encode(e.CustomerID, e.Position, e.EnteredAt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return payload
}

func TestVerifyGarbledPayload(t *testing.T) {
	t.Parallel()

	gate := NewGate(newFakeStore())
	res, err := gate.Verify(context.Background(), "???not-a-credential???")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != StatusFailed || res.Reason != ReasonInvalidQR {
		t.Errorf("got %s/%s, want FAILED/INVALID_QR", res.Status, res.Reason)
	}
}

func TestVerifyUnknownCustomerLooksLikeInvalidQR(t *testing.T) {
	t.Parallel()

	gate := NewGate(newFakeStore())
	payload, err := credential.Encode("SM-9999", 8999, time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	res, err := gate.Verify(context.Background(), payload)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Reason != ReasonInvalidQR {
		t.Errorf("unknown customer must report INVALID_QR, got %s", res.Reason)
	}
}

func TestVerifyPositionMismatch(t *testing.T) {
	t.Parallel()

	entry := billedEntry(1)
	gate := NewGate(newFakeStore(entry))

	payload, err := credential.Encode(entry.CustomerID, entry.Position+5, entry.EnteredAt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	res, err := gate.Verify(context.Background(), payload)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Reason != ReasonDataMismatch {
		t.Errorf("got reason %s, want DATA_MISMATCH", res.Reason)
	}
}

func TestVerifyNotBilledLeavesEntryUntouched(t *testing.T) {
	t.Parallel()

	entry := billedEntry(3)
	entry.Status = model.StatusWaiting
	entry.BilledAt = nil
	store := newFakeStore(entry)
	gate := NewGate(store)

	res, err := gate.Verify(context.Background(), encodeFor(t, entry))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Reason != ReasonNotBilled {
		t.Errorf("got reason %s, want NOT_BILLED", res.Reason)
	}

	after, err := store.GetByCustomerID(context.Background(), entry.CustomerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Status != model.StatusWaiting || after.VerifiedAt != nil {
		t.Errorf("failed scan must not mutate the entry: status=%s verified_at=%v", after.Status, after.VerifiedAt)
	}
}

func TestVerifySuccessThenDuplicate(t *testing.T) {
	t.Parallel()

	entry := billedEntry(1)
	store := newFakeStore(entry)
	gate := NewGate(store)
	payload := encodeFor(t, entry)

	res, err := gate.Verify(context.Background(), payload)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("first scan: got %s/%s, want SUCCESS", res.Status, res.Reason)
	}
	if res.Entry == nil || res.Entry.VerifiedAt == nil {
		t.Fatal("success result must carry the verified entry with its timestamp")
	}
	firstVerifiedAt := *res.Entry.VerifiedAt

	res2, err := gate.Verify(context.Background(), payload)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if res2.Status != StatusFailed || res2.Reason != ReasonDuplicateScan {
		t.Errorf("second scan: got %s/%s, want FAILED/DUPLICATE_SCAN", res2.Status, res2.Reason)
	}
	if res2.PriorVerifiedAt == nil || !res2.PriorVerifiedAt.Equal(firstVerifiedAt) {
		t.Errorf("duplicate scan must report the original verification time, got %v", res2.PriorVerifiedAt)
	}
}

func TestVerifyConcurrentScansExactlyOneSuccess(t *testing.T) {
	t.Parallel()

	entry := billedEntry(1)
	gate := NewGate(newFakeStore(entry))
	payload := encodeFor(t, entry)

	const scanners = 32
	results := make(chan Result, scanners)
	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := gate.Verify(context.Background(), payload)
			if err != nil {
				t.Errorf("verify: %v", err)
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	successes, duplicates := 0, 0
	for res := range results {
		switch {
		case res.Status == StatusSuccess:
			successes++
		case res.Reason == ReasonDuplicateScan:
			duplicates++
		default:
			t.Errorf("unexpected outcome %s/%s", res.Status, res.Reason)
		}
	}
	if successes != 1 {
		t.Errorf("got %d successes, want exactly 1", successes)
	}
	if duplicates != scanners-1 {
		t.Errorf("got %d duplicate outcomes, want %d", duplicates, scanners-1)
	}
}

func TestVerifyCheckOrderingDecodeBeforeLookup(t *testing.T) {
	t.Parallel()

	// A payload that is both garbled and would reference a verified
	// entry must fail on the decode, not the replay check.
	entry := billedEntry(2)
	now := time.Now().UTC()
	entry.Status = model.StatusVerified
	entry.VerifiedAt = &now
	gate := NewGate(newFakeStore(entry))

	res, err := gate.Verify(context.Background(), "garbage")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Reason != ReasonInvalidQR {
		t.Errorf("got reason %s, want INVALID_QR", res.Reason)
	}
}

func TestVerifyOutOfOrderExit(t *testing.T) {
	t.Parallel()

	// The second customer in line is billed and leaves before the
	// first. Position order never constrains exit order.
	first := billedEntry(1)
	first.Status = model.StatusWaiting
	first.BilledAt = nil
	second := billedEntry(2)
	store := newFakeStore(first, second)
	gate := NewGate(store)

	res, err := gate.Verify(context.Background(), encodeFor(t, second))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("second customer: got %s/%s, want SUCCESS", res.Status, res.Reason)
	}

	remaining, err := store.GetByCustomerID(context.Background(), first.CustomerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if remaining.Status != model.StatusWaiting {
		t.Errorf("first customer must be untouched, got status %s", remaining.Status)
	}
}
