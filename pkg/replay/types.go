// Package replay implements the stream scanning and replay engine: it
// reads a RabbitMQ stream queue from its first offset, selects messages
// by time window or header match, and republishes the selection back
// through the broker while preserving the original exchange and routing
// key.
package replay

import "time"

// StreamOffsetHeader is the reserved header under which the broker
// exposes a stream delivery's monotonic offset.
const StreamOffsetHeader = "x-stream-offset"

// Delivery is the immutable, in-memory view of one message read off a
// stream queue: its payload, its original routing coordinates, and the
// subset of properties the engine cares about.
type Delivery struct {
	Payload    []byte
	Exchange   string
	RoutingKey string
	Headers    map[string]any
	Timestamp  *int64 // milliseconds since epoch, nil if the publisher set none
	Offset     int64
}

// TransactionHeader names the header carrying a replay's correlation id.
type TransactionHeader struct {
	Name  string
	Value string
}

// ReportRecord is what the engine returns to its caller for both list
// and replay operations.
//
// Offset is nil for republished messages: the new message is assigned
// its own offset by the stream on append and the engine never reads it
// back.
type ReportRecord struct {
	Offset      *uint64
	Transaction *TransactionHeader
	Timestamp   *time.Time
	Data        string
}

// QueueKind distinguishes a stream queue from every other queue type the
// management API can report.
type QueueKind int

const (
	QueueKindOther QueueKind = iota
	QueueKindStream
)

// QueueDescriptor is the result of probing a queue's management metadata.
type QueueDescriptor struct {
	Kind         QueueKind
	MessageCount uint64
}
