package model

import (
	"testing"
	"time"
)

func TestEstimateWaitMinutes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rank int
		avg  int
		want int
	}{
		{"front of line", 1, 3, 0},
		{"second in line", 2, 3, 3},
		{"fifth in line", 5, 3, 12},
		{"custom service time", 4, 7, 21},
		{"zero rank", 0, 3, 0},
		{"negative rank", -2, 3, 0},
	}
	for _, tc := range cases {
		if got := EstimateWaitMinutes(tc.rank, tc.avg); got != tc.want {
			t.Errorf("%s: EstimateWaitMinutes(%d, %d) = %d, want %d", tc.name, tc.rank, tc.avg, got, tc.want)
		}
	}
}

func TestEntryActive(t *testing.T) {
	t.Parallel()

	e := &Entry{Status: StatusWaiting}
	if !e.Active() {
		t.Error("WAITING entry must be active")
	}
	e.Status = StatusBilled
	if !e.Active() {
		t.Error("BILLED entry must be active")
	}
	e.Status = StatusVerified
	now := time.Now()
	e.VerifiedAt = &now
	if e.Active() {
		t.Error("VERIFIED entry must not be active")
	}
}
