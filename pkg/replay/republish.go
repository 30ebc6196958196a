package replay

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

var _ publishChannel = (*amqp.Channel)(nil)

// RepublishConfig controls what the republisher stamps onto each message
// it sends back through the broker.
type RepublishConfig struct {
	// EnableTimestamp gives every republished message a fresh timestamp,
	// captured once per message in UTC milliseconds.
	EnableTimestamp bool `env:"AMQP_ENABLE_TIMESTAMP" env-default:"true"`

	// TransactionHeaderName, if set, is stamped with a freshly generated
	// UUID v4 on every republished message, replacing whatever value the
	// original carried -- the point is re-identification of this replay
	// run, not chain-of-custody back to the original message.
	TransactionHeaderName string `env:"AMQP_TRANSACTION_HEADER"`
}

// Republisher publishes selected deliveries back to their original
// exchange and routing key, one at a time, sequentially on a single
// channel. Serial publishing trades throughput for a deterministic
// replay order -- a stream queue preserves append order per publisher,
// so this is enough to make two runs of the same selection produce the
// same order downstream.
//
// A publish failure is not retried: it aborts the request immediately and
// surfaces as the error, leaving any messages already republished
// unrolled-back. Callers reconcile via the transaction header.
type Republisher struct {
	cfg RepublishConfig
}

// NewRepublisher builds a Republisher with the given stamping config.
func NewRepublisher(cfg RepublishConfig) *Republisher {
	return &Republisher{cfg: cfg}
}

// Republish sends d back through ch to its original exchange/routing key
// and returns the report record describing what was sent. It never
// buffers: callers drive it one delivery at a time, in scan order.
func (r *Republisher) Republish(ctx context.Context, ch publishChannel, d Delivery) (ReportRecord, error) {
	if !utf8.Valid(d.Payload) {
		return ReportRecord{}, ErrDecode(errNotUTF8)
	}

	publishing := amqp.Publishing{Body: d.Payload}
	record := ReportRecord{Data: string(d.Payload)}

	if r.cfg.EnableTimestamp {
		now := time.Now().UTC()
		publishing.Timestamp = now
		record.Timestamp = &now
	}

	if r.cfg.TransactionHeaderName != "" {
		value := uuid.New().String()
		publishing.Headers = amqp.Table{r.cfg.TransactionHeaderName: value}
		record.Transaction = &TransactionHeader{Name: r.cfg.TransactionHeaderName, Value: value}
	}

	if err := ch.PublishWithContext(ctx, d.Exchange, d.RoutingKey, false, false, publishing); err != nil {
		return ReportRecord{}, ErrBrokerTransport(err)
	}

	return record, nil
}

var errNotUTF8 = utf8Error{}

type utf8Error struct{}

func (utf8Error) Error() string { return "payload is not valid UTF-8" }
