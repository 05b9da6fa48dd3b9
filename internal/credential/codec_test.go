package credential

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestCustomerIDForPosition(t *testing.T) {
	t.Parallel()

	if id := CustomerIDForPosition(1); id != "SM-1001" {
		t.Errorf("position 1: got %q, want SM-1001", id)
	}
	if id := CustomerIDForPosition(42); id != "SM-1042" {
		t.Errorf("position 42: got %q, want SM-1042", id)
	}
	if id := CustomerIDForPosition(9000); id != "SM-10000" {
		t.Errorf("position 9000: got %q, want SM-10000", id)
	}
	if !ValidCustomerID(CustomerIDForPosition(1)) {
		t.Error("generated id must satisfy ValidCustomerID")
	}
}

func TestValidCustomerID(t *testing.T) {
	t.Parallel()

	valid := []string{"SM-1001", "SM-1", "SM-000123"}
	for _, id := range valid {
		if !ValidCustomerID(id) {
			t.Errorf("%q should be valid", id)
		}
	}
	invalid := []string{"", "SM-", "sm-1001", "XX-1001", "SM-10a1", " SM-1001", "SM-1001 "}
	for _, id := range invalid {
		if ValidCustomerID(id) {
			t.Errorf("%q should be invalid", id)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 8, 31, 14, 5, 6, 789_000_000, time.UTC)
	payload, err := Encode("SM-1001", 1, issued)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cred, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cred.CustomerID != "SM-1001" {
		t.Errorf("customer id: got %q, want SM-1001", cred.CustomerID)
	}
	if cred.Position != 1 {
		t.Errorf("position: got %d, want 1", cred.Position)
	}
	if !cred.IssuedAt.Equal(issued) {
		t.Errorf("issued at: got %v, want %v", cred.IssuedAt, issued)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	a, err := Encode("SM-1007", 7, issued)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := Encode("SM-1007", 7, issued)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if a != b {
		t.Errorf("same inputs must produce the same payload: %q vs %q", a, b)
	}
}

func TestEncodeRejectsBadInputs(t *testing.T) {
	t.Parallel()

	now := time.Now()
	if _, err := Encode("bogus", 1, now); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("bad id: got %v, want ErrInvalidIdentifier", err)
	}
	if _, err := Encode("SM-1001", 0, now); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("zero position: got %v, want ErrInvalidPosition", err)
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		want    error
	}{
		{"empty", "", ErrMalformedPayload},
		{"not base64", "!!!not-base64!!!", ErrMalformedPayload},
		{"base64 but not json", base64.RawURLEncoding.EncodeToString([]byte("hello")), ErrMalformedPayload},
		{"wrong id prefix", encodeRaw(t, `{"customer_id":"XX-1001","position":1,"issued_at":0}`), ErrInvalidIdentifier},
		{"missing id", encodeRaw(t, `{"position":1,"issued_at":0}`), ErrInvalidIdentifier},
		{"zero position", encodeRaw(t, `{"customer_id":"SM-1001","position":0,"issued_at":0}`), ErrInvalidPosition},
		{"negative position", encodeRaw(t, `{"customer_id":"SM-1001","position":-3,"issued_at":0}`), ErrInvalidPosition},
	}
	for _, tc := range cases {
		if _, err := Decode(tc.payload); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestDecodeIssuedAtIsUTC(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	issued := time.Date(2026, 3, 15, 10, 30, 0, 250_000_000, loc)
	payload, err := Encode("SM-1002", 2, issued)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	cred, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cred.IssuedAt.Location() != time.UTC {
		t.Errorf("issued at location: got %v, want UTC", cred.IssuedAt.Location())
	}
	if !cred.IssuedAt.Equal(issued) {
		t.Errorf("issued at: got %v, want instant %v", cred.IssuedAt, issued)
	}
}

func encodeRaw(t *testing.T, jsonBody string) string {
	t.Helper()
	return base64.RawURLEncoding.EncodeToString([]byte(jsonBody))
}
