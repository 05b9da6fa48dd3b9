package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/market-queue/internal/config"
	"github.com/iliyamo/market-queue/internal/credential"
	"github.com/iliyamo/market-queue/internal/model"
	"github.com/iliyamo/market-queue/internal/repository"
)

// QueueHandler serves the read-only queue projections: the live line,
// per-customer rank and wait estimate, throughput metrics and the
// completed history drawn from queue slots.
type QueueHandler struct {
	Cfg   config.Config
	View  *repository.QueueViewRepo
	Slots *repository.QueueSlotRepo
}

// NewQueueHandler constructs a QueueHandler.
func NewQueueHandler(cfg config.Config, view *repository.QueueViewRepo, slots *repository.QueueSlotRepo) *QueueHandler {
	if view == nil || slots == nil {
		panic("nil repository passed to NewQueueHandler")
	}
	return &QueueHandler{Cfg: cfg, View: view, Slots: slots}
}

// Active handles GET /v1/queue: all WAITING and BILLED entries in
// position order, straight from the store.
func (h *QueueHandler) Active(c echo.Context) error {
	entries, err := h.View.ActiveOrdered(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":   len(entries),
		"entries": entries,
	})
}

// Position handles GET /v1/entries/:id/position.  A verified customer
// has left the queue and is reported as not ranked rather than rank 0.
func (h *QueueHandler) Position(c echo.Context) error {
	customerID := c.Param("id")
	if !credential.ValidCustomerID(customerID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	rank, ranked, err := h.View.Rank(c.Request().Context(), customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return storeError(c, err)
	}
	if !ranked {
		return c.JSON(http.StatusOK, echo.Map{
			"customer_id": customerID,
			"ranked":      false,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"customer_id": customerID,
		"ranked":      true,
		"position":    rank,
		"eta_minutes": model.EstimateWaitMinutes(rank, h.Cfg.AvgServiceMinutes),
	})
}

// Metrics handles GET /v1/queue/metrics: mean registration-to-exit
// latency over verified entries, zero when none exist.
func (h *QueueHandler) Metrics(c echo.Context) error {
	avg, err := h.View.AverageCompletionMinutes(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"avg_completion_minutes": avg,
		"avg_service_minutes":    h.Cfg.AvgServiceMinutes,
	})
}

// History handles GET /v1/queue/history: recently completed queue
// slots, newest first.  Optional ?limit caps the page size.
func (h *QueueHandler) History(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	slots, err := h.Slots.ListCompleted(c.Request().Context(), limit)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(slots),
		"slots": slots,
	})
}
