package replay

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAcknowledger lets a hand-built amqp.Delivery's Ack/Nack/Reject calls
// be observed without a live channel.
type fakeAcknowledger struct {
	acked []uint64
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = append(a.acked, tag)
	return nil
}
func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error { return nil }
func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error        { return nil }

// fakeScanChannel is an in-process stand-in for *amqp.Channel, feeding a
// fixed table of deliveries to Scan without a broker connection.
type fakeScanChannel struct {
	deliveries  []amqp.Delivery
	qosCalled   bool
	qosPrefetch int
	consumeArgs amqp.Table
}

func (f *fakeScanChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	f.qosCalled = true
	f.qosPrefetch = prefetchCount
	return nil
}

func (f *fakeScanChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	f.consumeArgs = args
	ch := make(chan amqp.Delivery, len(f.deliveries))
	for _, d := range f.deliveries {
		ch <- d
	}
	return ch, nil
}

// streamOf builds n deliveries with offsets 0..n-1, each carrying the
// acker so Ack calls can be observed, mirroring a freshly seeded stream.
func streamOf(n int) (*fakeAcknowledger, []amqp.Delivery) {
	acker := &fakeAcknowledger{}
	deliveries := make([]amqp.Delivery, n)
	for i := 0; i < n; i++ {
		deliveries[i] = amqp.Delivery{
			Acknowledger: acker,
			DeliveryTag:  uint64(i + 1),
			Body:         []byte("test"),
			Headers:      amqp.Table{"x-stream-offset": int64(i)},
		}
	}
	return acker, deliveries
}

func TestScanner_Scan_VisitsAllInOrderAndTerminates(t *testing.T) {
	acker, deliveries := streamOf(10)
	fake := &fakeScanChannel{deliveries: deliveries}

	var visited []int64
	s := NewScanner()
	err := s.Scan(context.Background(), fake, "replay", "fetch_messages", 10, func(d Delivery) error {
		visited = append(visited, d.Offset)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, visited, 10)
	for i, offset := range visited {
		assert.Equal(t, int64(i), offset, "deliveries must be visited in offset order")
	}

	assert.True(t, fake.qosCalled)
	assert.Equal(t, prefetchCount, fake.qosPrefetch)
	assert.Equal(t, "first", fake.consumeArgs["x-stream-offset"])
	assert.Len(t, acker.acked, 10, "every delivery is acked on receipt, as credit return")
}

func TestScanner_Scan_TerminatesAtLastOffsetWithoutBlocking(t *testing.T) {
	// messageCount says 5 messages exist (offsets 0..4), but the stream
	// channel only ever yields those 5 -- if the scanner tried to read a
	// 6th, this test would hang (the channel is never closed).
	_, deliveries := streamOf(5)
	fake := &fakeScanChannel{deliveries: deliveries}

	var count int
	s := NewScanner()
	err := s.Scan(context.Background(), fake, "replay", "fetch_messages", 5, func(d Delivery) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestScanner_Scan_MissingOffsetHeaderIsFatal(t *testing.T) {
	acker := &fakeAcknowledger{}
	fake := &fakeScanChannel{deliveries: []amqp.Delivery{
		{Acknowledger: acker, DeliveryTag: 1, Body: []byte("test"), Headers: amqp.Table{}},
	}}

	s := NewScanner()
	err := s.Scan(context.Background(), fake, "replay", "fetch_messages", 5, func(Delivery) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x-stream-offset")
}

func TestScanner_Scan_WrongTypedOffsetIsFatal(t *testing.T) {
	acker := &fakeAcknowledger{}
	fake := &fakeScanChannel{deliveries: []amqp.Delivery{
		{Acknowledger: acker, DeliveryTag: 1, Body: []byte("test"), Headers: amqp.Table{"x-stream-offset": "not-an-int"}},
	}}

	s := NewScanner()
	err := s.Scan(context.Background(), fake, "replay", "fetch_messages", 5, func(Delivery) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x-stream-offset")
}

func TestScanner_Scan_VisitErrorAbortsScan(t *testing.T) {
	_, deliveries := streamOf(10)
	fake := &fakeScanChannel{deliveries: deliveries}

	var count int
	s := NewScanner()
	err := s.Scan(context.Background(), fake, "replay", "fetch_messages", 10, func(d Delivery) error {
		count++
		if d.Offset == 2 {
			return assert.AnError
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 3, count, "the scan stops at the first visit error, not after draining the channel")
}
