// Package credential encodes and decodes the exit credential shown by a
// customer's QR code.  The payload is pure data – customer code, queue
// position and issue time – and the codec never touches storage.  Whether a
// decoded credential matches a real entry is the verification gate's job.
package credential

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Customer codes look like SM-1001: the fixed store prefix followed by
// digits.  The same pattern gates both ID generation and decoding.
var customerIDPattern = regexp.MustCompile(`^SM-[0-9]+$`)

// Decode failure modes.  Handlers collapse all of these into a single
// INVALID_QR signal so a scanner cannot distinguish a garbled payload
// from a fabricated one.
var (
	ErrMalformedPayload  = errors.New("credential: malformed payload")
	ErrInvalidIdentifier = errors.New("credential: invalid customer id format")
	ErrInvalidPosition   = errors.New("credential: position must be a positive integer")
)

// Credential is the decoded form of the QR payload.
type Credential struct {
	CustomerID string    // SM-prefixed customer code
	Position   uint64    // assigned queue number
	IssuedAt   time.Time // issue time, millisecond precision, UTC
}

// wirePayload is the serialized shape.  IssuedAt travels as Unix
// milliseconds so that encode/decode round-trips exactly.
// Position is carried signed so a negative value in a tampered payload
// is reported as an invalid position rather than a parse failure.
type wirePayload struct {
	CustomerID string `json:"customer_id"`
	Position   int64  `json:"position"`
	IssuedAtMS int64  `json:"issued_at"`
}

// ValidCustomerID reports whether id matches the SM-prefixed code format.
func ValidCustomerID(id string) bool {
	return customerIDPattern.MatchString(id)
}

// CustomerIDForPosition derives the customer code handed out at
// registration.  Position 1 maps to SM-1001, keeping codes four digits
// or longer without a separate sequence.
func CustomerIDForPosition(position uint64) string {
	return fmt.Sprintf("SM-%d", 1000+position)
}

// Encode serializes a credential into the opaque payload embedded in the
// QR code.  The inputs are validated so an unencodable credential can
// never be issued in the first place.
func Encode(customerID string, position uint64, issuedAt time.Time) (string, error) {
	if !ValidCustomerID(customerID) {
		return "", ErrInvalidIdentifier
	}
	if position == 0 {
		return "", ErrInvalidPosition
	}
	raw, err := json.Marshal(wirePayload{
		CustomerID: customerID,
		Position:   int64(position),
		IssuedAtMS: issuedAt.UTC().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a presented payload back into a Credential.  It performs
// structural validation only: base64/JSON shape, identifier format and
// position positivity.  ErrMalformedPayload is returned when the payload
// cannot be parsed at all.
func Decode(payload string) (Credential, error) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Credential{}, ErrMalformedPayload
	}
	var w wirePayload
	if err := json.Unmarshal(raw, &w); err != nil {
		return Credential{}, ErrMalformedPayload
	}
	if !ValidCustomerID(w.CustomerID) {
		return Credential{}, ErrInvalidIdentifier
	}
	if w.Position <= 0 {
		return Credential{}, ErrInvalidPosition
	}
	return Credential{
		CustomerID: w.CustomerID,
		Position:   uint64(w.Position),
		IssuedAt:   time.UnixMilli(w.IssuedAtMS).UTC(),
	}, nil
}
