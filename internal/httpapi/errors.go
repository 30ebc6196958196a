package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/streamops/replay-service/pkg/logger"
)

var (
	errAmbiguousReplayRequest = errors.New("replay request must be a timeframe or a header match, not both")
	errIncompleteTimeframe    = errors.New("replay request timeframe requires both from and to")
	errEmptyReplayRequest     = errors.New("replay request must be a timeframe or a header match")
)

// httpErrorHandler reproduces the original service's error contract: every
// failure, regardless of cause -- a malformed request, a broker failure,
// a decode error -- becomes a 500 with body "Something went wrong: <detail>".
// The engine's structured AppError codes exist for logging and for callers
// who parse logs, not for the HTTP status line -- the source never
// distinguished error kinds at the transport layer either.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	detail := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			detail = msg
		}
	}

	logger.L().ErrorContext(c.Request().Context(), "request failed", "error", err, "path", c.Path())

	if werr := c.String(http.StatusInternalServerError, "Something went wrong: "+detail); werr != nil {
		logger.L().ErrorContext(c.Request().Context(), "failed writing error response", "error", werr)
	}
}
