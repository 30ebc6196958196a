// Package httpapi exposes pkg/replay's engine over HTTP: list, replay and
// health, matching the three-endpoint surface the original service
// presents, with request binding/validation and the error contract that
// preserves its "Something went wrong: <detail>" response.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/streamops/replay-service/pkg/replay"
)

var errPoolUnhealthy = errors.New("no connection could be leased from the pool")

// replayEngine is the subset of *replay.Engine the HTTP layer drives.
// Narrowed to an interface so handler tests can substitute a fake
// without a live broker.
type replayEngine interface {
	List(ctx context.Context, queue string, from, to *time.Time) ([]replay.ReportRecord, error)
	ReplayTimeframe(ctx context.Context, queue string, from, to time.Time) ([]replay.ReportRecord, error)
	ReplayHeader(ctx context.Context, queue, name, value string) ([]replay.ReportRecord, error)
}

// healthChecker is the subset of *pool.Pool the health endpoint needs.
type healthChecker interface {
	Healthy(ctx context.Context) bool
}

// Handler serves the replay HTTP surface.
type Handler struct {
	engine replayEngine
	pool   healthChecker
}

// NewHandler builds a Handler from its collaborators.
func NewHandler(engine replayEngine, pool healthChecker) *Handler {
	return &Handler{engine: engine, pool: pool}
}

// List handles GET /messages.
func (h *Handler) List(c echo.Context) error {
	var q listQuery
	if err := c.Bind(&q); err != nil {
		return err
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	records, err := h.engine.List(c.Request().Context(), q.Queue, q.From, q.To)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toReportRecordDTOs(records))
}

// Replay handles POST /replay.
func (h *Handler) Replay(c echo.Context) error {
	var req replayRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	shape, err := req.shape()
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var records []replay.ReportRecord
	switch shape {
	case shapeTimeframe:
		records, err = h.engine.ReplayTimeframe(ctx, req.Queue, *req.From, *req.To)
	case shapeHeader:
		records, err = h.engine.ReplayHeader(ctx, req.Queue, req.Header.Name, req.Header.Value)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toReportRecordDTOs(records))
}

// Health handles GET /health. It reports healthy only if a connection can
// actually be leased from the pool and a channel opened on it.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !h.pool.Healthy(ctx) {
		return replay.ErrChannelUnhealthy(errPoolUnhealthy)
	}

	return c.String(http.StatusOK, "OK")
}

func toReportRecordDTOs(records []replay.ReportRecord) []reportRecordDTO {
	dtos := make([]reportRecordDTO, len(records))
	for i, r := range records {
		dto := reportRecordDTO{Offset: r.Offset, Timestamp: r.Timestamp, Data: r.Data}
		if r.Transaction != nil {
			dto.Transaction = &transactionDTO{Name: r.Transaction.Name, Value: r.Transaction.Value}
		}
		dtos[i] = dto
	}
	return dtos
}
