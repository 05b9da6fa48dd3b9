package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	queue_publisher "github.com/iliyamo/market-queue/internal/service"
	"github.com/iliyamo/market-queue/internal/verification"
)

// VerificationHandler serves the exit scanner.  All the decision logic
// lives in the verification gate; this handler only shapes HTTP and
// publishes the audit event on success.
type VerificationHandler struct {
	Gate      *verification.Gate
	Publisher *queue_publisher.Publisher
}

// NewVerificationHandler constructs a VerificationHandler.
func NewVerificationHandler(gate *verification.Gate, pub *queue_publisher.Publisher) *VerificationHandler {
	if gate == nil || pub == nil {
		panic("nil dependency passed to NewVerificationHandler")
	}
	return &VerificationHandler{Gate: gate, Publisher: pub}
}

type verifyReq struct {
	QRData string `json:"qr_data"`
}

// Verify handles POST /v1/verify.  Business failures come back as 200
// with a FAILED result so scanner devices can render the reason
// directly; only infrastructure trouble surfaces as an HTTP error.
func (h *VerificationHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil || req.QRData == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_data is required"})
	}

	ctx := c.Request().Context()
	result, err := h.Gate.Verify(ctx, req.QRData)
	if err != nil {
		return storeError(c, err)
	}

	if result.Status == verification.StatusSuccess && result.Entry != nil {
		at := time.Now().UTC()
		if result.Entry.VerifiedAt != nil {
			at = *result.Entry.VerifiedAt
		}
		// Best effort: the publisher logs its own failures.
		_ = h.Publisher.ExitVerified(ctx, result.Entry.CustomerID, result.Entry.Position, at)
	}

	return c.JSON(http.StatusOK, result)
}
