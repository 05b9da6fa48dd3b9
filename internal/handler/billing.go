package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/market-queue/internal/credential"
	"github.com/iliyamo/market-queue/internal/repository"
	queue_publisher "github.com/iliyamo/market-queue/internal/service"
)

// BillingHandler serves the billing counter: marking an entry billed
// and the administrative reversal.  Reversals always publish an audit
// event naming the operator and reason; the reversal itself is not
// blocked by a broker outage.
type BillingHandler struct {
	Entries   *repository.EntryRepo
	Publisher *queue_publisher.Publisher
}

// NewBillingHandler constructs a BillingHandler.
func NewBillingHandler(entries *repository.EntryRepo, pub *queue_publisher.Publisher) *BillingHandler {
	if entries == nil || pub == nil {
		panic("nil dependency passed to NewBillingHandler")
	}
	return &BillingHandler{Entries: entries, Publisher: pub}
}

// Bill handles POST /v1/entries/:id/bill.  Re-billing an already
// BILLED entry succeeds as a no-op; billing a VERIFIED entry is a 409.
func (h *BillingHandler) Bill(c echo.Context) error {
	customerID := c.Param("id")
	if !credential.ValidCustomerID(customerID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	entry, err := h.Entries.MarkBilled(c.Request().Context(), customerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		case errors.Is(err, repository.ErrAlreadyVerified):
			return c.JSON(http.StatusConflict, echo.Map{"error": "entry already verified"})
		}
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

type undoBillReq struct {
	Reason string `json:"reason"`
}

// UndoBill handles POST /v1/entries/:id/undo-bill.  ADMIN only (routing
// enforces the role).  A reason is required: the reversal is recorded
// in the audit trail, never a silent field reset.
func (h *BillingHandler) UndoBill(c echo.Context) error {
	operatorID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	customerID := c.Param("id")
	if !credential.ValidCustomerID(customerID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	var req undoBillReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
	}

	ctx := c.Request().Context()
	entry, err := h.Entries.UndoBilling(ctx, customerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		case errors.Is(err, repository.ErrInvalidStateForUndo):
			return c.JSON(http.StatusConflict, echo.Map{"error": "entry not in billed state"})
		}
		return storeError(c, err)
	}

	// Best effort: the publisher logs its own failures.
	_ = h.Publisher.BillingReverted(ctx, entry.CustomerID, entry.Position, operatorID, strings.TrimSpace(req.Reason))

	return c.JSON(http.StatusOK, entry)
}
