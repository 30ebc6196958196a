package replay

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// scanChannel is the subset of *amqp.Channel the scanner needs. Narrowed to
// an interface (rather than the concrete *amqp.Channel type from the
// previous draft) so tests can drive Scan against an in-process fake
// without a live broker connection.
type scanChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// publishChannel is the subset of *amqp.Channel the republisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}
