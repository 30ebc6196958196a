package replay

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/streamops/replay-service/pkg/logger"
	"github.com/streamops/replay-service/pkg/replay/pool"
)

// consumer tags, per the design: "fetch_messages" for listing, "replay"
// for either replay operation.
const (
	consumerTagFetch  = "fetch_messages"
	consumerTagReplay = "replay"
)

// Engine composes the probe, scanner, selector and republisher into the
// three operations the HTTP surface exposes: list, replay-by-timeframe
// and replay-by-header.
type Engine struct {
	pool           *pool.Pool
	prober         *Prober
	scanner        *Scanner
	republisher    *Republisher
	acquireTimeout time.Duration
}

// NewEngine wires an Engine from its collaborators. acquireTimeout bounds
// how long each pool.Acquire may block waiting for a free connection; zero
// means wait as long as ctx allows.
func NewEngine(p *pool.Pool, prober *Prober, republish RepublishConfig, acquireTimeout time.Duration) *Engine {
	return &Engine{
		pool:           p,
		prober:         prober,
		scanner:        NewScanner(),
		republisher:    NewRepublisher(republish),
		acquireTimeout: acquireTimeout,
	}
}

// acquire leases a connection from the pool, bounding the wait by
// acquireTimeout when one is configured.
func (e *Engine) acquire(ctx context.Context) (*pool.Lease, error) {
	if e.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.acquireTimeout)
		defer cancel()
	}
	return e.pool.Acquire(ctx)
}

// List returns every delivery in queue, each one collapsed into a report
// record. When from/to are both nil, every message is returned. A
// delivery outside the window is skipped; one with no timestamp and no
// window configured is still returned, with Timestamp left nil.
func (e *Engine) List(ctx context.Context, queue string, from, to *time.Time) ([]ReportRecord, error) {
	descriptor, err := e.prober.ProbeQueue(ctx, queue)
	if err != nil {
		return nil, err
	}
	if descriptor.MessageCount == 0 {
		return nil, ErrQueueNotFound(queue)
	}

	lease, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	ch, err := lease.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	selector := TimeWindowSelector{From: from, To: to}

	var records []ReportRecord
	err = e.scanner.Scan(ctx, ch, queue, consumerTagFetch, descriptor.MessageCount, func(d Delivery) error {
		tri := selector.Select(d)
		if tri == TriFalse {
			return nil
		}

		record, err := e.toListRecord(d, tri == TriTrue)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L().InfoContext(ctx, "listed stream messages", "queue", queue, "count", len(records))
	return records, nil
}

func (e *Engine) toListRecord(d Delivery, includeTimestamp bool) (ReportRecord, error) {
	if !utf8.Valid(d.Payload) {
		return ReportRecord{}, ErrDecode(errNotUTF8)
	}

	offset := uint64(d.Offset)
	record := ReportRecord{
		Offset:      &offset,
		Transaction: e.readTransactionHeader(d),
		Data:        string(d.Payload),
	}

	if includeTimestamp && d.Timestamp != nil {
		ts := time.UnixMilli(*d.Timestamp).UTC()
		record.Timestamp = &ts
	}

	return record, nil
}

func (e *Engine) readTransactionHeader(d Delivery) *TransactionHeader {
	name := e.republisher.cfg.TransactionHeaderName
	if name == "" {
		return nil
	}
	raw, ok := d.Headers[name]
	if !ok {
		return nil
	}
	value, ok := raw.(string)
	if !ok {
		return nil
	}
	return &TransactionHeader{Name: name, Value: value}
}

// ReplayTimeframe republishes every delivery whose timestamp falls in
// [from, to], preserving original exchange/routing key and stamping
// fresh identifying headers per the republisher's configuration.
func (e *Engine) ReplayTimeframe(ctx context.Context, queue string, from, to time.Time) ([]ReportRecord, error) {
	selector := TimeWindowSelector{From: &from, To: &to}
	return e.replay(ctx, queue, selector.Matches)
}

// ReplayHeader republishes every delivery whose header name equals value.
func (e *Engine) ReplayHeader(ctx context.Context, queue, name, value string) ([]ReportRecord, error) {
	selector := HeaderSelector{Name: name, Value: value}
	return e.replay(ctx, queue, selector.Matches)
}

func (e *Engine) replay(ctx context.Context, queue string, matches func(Delivery) bool) ([]ReportRecord, error) {
	descriptor, err := e.prober.ProbeQueue(ctx, queue)
	if err != nil {
		return nil, err
	}
	if descriptor.MessageCount == 0 {
		return nil, ErrQueueNotFound(queue)
	}

	selected, err := e.scanForReplay(ctx, queue, descriptor.MessageCount, matches)
	if err != nil {
		return nil, err
	}

	publishLease, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer publishLease.Release()

	publishCh, err := publishLease.Channel()
	if err != nil {
		return nil, err
	}
	defer publishCh.Close()

	records := make([]ReportRecord, 0, len(selected))
	for _, d := range selected {
		record, err := e.republisher.Republish(ctx, publishCh, d)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	logger.L().InfoContext(ctx, "replayed stream messages", "queue", queue, "count", len(records))
	return records, nil
}

// scanForReplay leases a connection, scans queue for deliveries matching
// matches and returns them, releasing the lease before returning -- so the
// caller never holds the scan lease and the publish lease at once. One
// connection per in-flight request is leased, per the pool's contract.
func (e *Engine) scanForReplay(ctx context.Context, queue string, messageCount uint64, matches func(Delivery) bool) ([]Delivery, error) {
	lease, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	ch, err := lease.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	var selected []Delivery
	err = e.scanner.Scan(ctx, ch, queue, consumerTagReplay, messageCount, func(d Delivery) error {
		if matches(d) {
			selected = append(selected, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return selected, nil
}
