package handler

import (
	"encoding/base64" // inline QR image in the JSON response
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/market-queue/internal/config"
	"github.com/iliyamo/market-queue/internal/credential"
	"github.com/iliyamo/market-queue/internal/model"
	"github.com/iliyamo/market-queue/internal/repository"
	"github.com/iliyamo/market-queue/internal/utils"
)

// RegistrationHandler serves the entry kiosk: it validates customer
// input, allocates a queue position, issues the exit credential and
// persists the new entry.  The credential's issue time equals the
// stored entered_at, so the QR can be re-rendered later byte for byte.
type RegistrationHandler struct {
	Cfg     config.Config
	Counter *repository.CounterRepo
	Entries *repository.EntryRepo
	View    *repository.QueueViewRepo
}

// NewRegistrationHandler constructs a RegistrationHandler.  All
// dependencies must be non-nil.
func NewRegistrationHandler(cfg config.Config, counter *repository.CounterRepo, entries *repository.EntryRepo, view *repository.QueueViewRepo) *RegistrationHandler {
	if counter == nil || entries == nil || view == nil {
		panic("nil repository passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Cfg: cfg, Counter: counter, Entries: entries, View: view}
}

type registerEntryReq struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CartValue int64  `json:"cart_value"` // cents
}

type registerEntryResp struct {
	Entry      *model.Entry `json:"entry"`
	Credential string       `json:"credential"`
	QRPNG      string       `json:"qr_png"` // base64-encoded PNG
	Rank       int          `json:"rank"`
	ETAMinutes int          `json:"eta_minutes"`
}

// Register handles POST /v1/queue/register.  Validation runs before
// any store interaction so a malformed request never consumes a queue
// position.  Position allocation and entry creation are separate store
// operations; the unique indexes make the create fail loudly rather
// than ever reassigning a position.
func (h *RegistrationHandler) Register(c echo.Context) error {
	var req registerEntryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := utils.ValidateName(req.Name); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := utils.ValidatePhone(req.Phone); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := utils.ValidateCartValue(req.CartValue); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()

	position, err := h.Counter.NextPosition(ctx)
	if err != nil {
		return storeError(c, err)
	}
	customerID := credential.CustomerIDForPosition(position)

	// Millisecond precision matches the DATETIME(3) columns, keeping the
	// stored entered_at identical to the credential's issue time.
	enteredAt := time.Now().UTC().Truncate(time.Millisecond)
	payload, err := credential.Encode(customerID, position, enteredAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credential encode failed"})
	}

	entry, err := h.Entries.Create(ctx, customerID, position, req.Name, req.Phone, uint64(req.CartValue), enteredAt)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateID):
			return c.JSON(http.StatusConflict, echo.Map{"error": "customer id already exists"})
		case errors.Is(err, repository.ErrDuplicatePosition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "queue position already exists"})
		}
		return storeError(c, err)
	}

	rank, _, err := h.View.Rank(ctx, customerID)
	if err != nil {
		return storeError(c, err)
	}

	png, err := credential.RenderQR(payload)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr render failed"})
	}

	return c.JSON(http.StatusCreated, registerEntryResp{
		Entry:      entry,
		Credential: payload,
		QRPNG:      base64.StdEncoding.EncodeToString(png),
		Rank:       rank,
		ETAMinutes: model.EstimateWaitMinutes(rank, h.Cfg.AvgServiceMinutes),
	})
}

// Credential handles GET /v1/entries/:id/credential.  It re-renders the
// entry's QR code as image/png; because issue time equals entered_at
// the payload is identical to the one issued at registration.
func (h *RegistrationHandler) Credential(c echo.Context) error {
	customerID := c.Param("id")
	if !credential.ValidCustomerID(customerID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	entry, err := h.Entries.GetByCustomerID(c.Request().Context(), customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return storeError(c, err)
	}
	payload, err := credential.Encode(entry.CustomerID, entry.Position, entry.EnteredAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credential encode failed"})
	}
	png, err := credential.RenderQR(payload)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr render failed"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
