package replay

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

var _ scanChannel = (*amqp.Channel)(nil)

// prefetchCount is the number of unacknowledged deliveries the broker
// will push to a scanning consumer before it stalls. It both sizes the
// broker's backpressure window and bounds how much progress can be
// buffered server-side while the scan's consumer is slow to drain it.
const prefetchCount = 1000

// Scanner connects to a stream queue and walks it from its first offset,
// handing each delivery to the caller until the last offset present at
// scan start has been observed. There is no end-of-stream signal on a
// stream queue, so the scanner fuses the authoritative message count
// obtained from the management API with an inline offset check.
type Scanner struct{}

// NewScanner returns a ready-to-use Scanner. It carries no state: every
// scan opens its own consumer on a channel supplied by the caller.
func NewScanner() *Scanner { return &Scanner{} }

// Visit is called once per delivery, in offset order. Returning an error
// aborts the scan immediately; the error propagates to Scan's caller.
type Visit func(Delivery) error

// Scan consumes queue on ch from its first retained message, acknowledging
// every delivery as it arrives -- on a stream queue, ack is pure credit
// return, not a commitment, since acking never removes data -- and calls
// visit for each one. It terminates after observing a delivery whose
// offset is >= messageCount-1, and never blocks waiting for a message
// beyond that point. messageCount must be > 0; a freshly-probed empty
// queue should be rejected by the caller before Scan is invoked.
func (s *Scanner) Scan(ctx context.Context, ch scanChannel, queue, consumerTag string, messageCount uint64, visit Visit) error {
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return ErrBrokerTransport(err)
	}

	args := amqp.Table{"x-stream-offset": "first"}
	deliveries, err := ch.Consume(queue, consumerTag, false, false, false, false, args)
	if err != nil {
		return ErrBrokerTransport(err)
	}

	lastOffset := messageCount - 1

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}

			if err := d.Ack(false); err != nil {
				return ErrBrokerTransport(err)
			}

			offset, err := readOffset(d.Headers)
			if err != nil {
				return err
			}

			delivery := Delivery{
				Payload:    d.Body,
				Exchange:   d.Exchange,
				RoutingKey: d.RoutingKey,
				Headers:    d.Headers,
				Timestamp:  readTimestamp(d),
				Offset:     offset,
			}

			if err := visit(delivery); err != nil {
				return err
			}

			if uint64(offset) >= lastOffset {
				return nil
			}
		}
	}
}

func readOffset(headers amqp.Table) (int64, error) {
	if headers == nil {
		return 0, ErrMalformedDelivery("delivery has no headers")
	}
	raw, present := headers[StreamOffsetHeader]
	if !present {
		return 0, ErrMalformedDelivery("missing x-stream-offset header")
	}
	offset, ok := raw.(int64)
	if !ok {
		return 0, ErrMalformedDelivery("x-stream-offset header is not a long-long-int")
	}
	return offset, nil
}

func readTimestamp(d amqp.Delivery) *int64 {
	if d.Timestamp.IsZero() {
		return nil
	}
	ms := d.Timestamp.UnixMilli()
	return &ms
}
