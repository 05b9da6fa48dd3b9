package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/market-queue/internal/repository"
)

// getStaffID extracts the authenticated staff ID from echo.Context and
// converts it to uint64.  JWT numeric claims arrive as float64 after
// JSON decoding, so several representations are accepted.
func getStaffID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// storeError translates an unexpected repository failure into the HTTP
// response for it: 503 when the store is unreachable (retryable by the
// caller), 500 otherwise.
func storeError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrStoreUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
