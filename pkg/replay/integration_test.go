//go:build integration

package replay_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/streamops/replay-service/pkg/replay"
	"github.com/streamops/replay-service/pkg/replay/pool"
)

// These scenarios mirror the original service's own end-to-end test suite:
// a stream queue "replay" freshly populated with 500 messages, message i
// carrying payload "test", header x-stream-transaction-id = "transaction_i",
// and a strictly increasing timestamp. Run with -tags=integration against a
// Docker daemon.
const testMessageCount = 500

func startBroker(t *testing.T) (amqpURL string, managementPort string) {
	t.Helper()
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	amqpURL, err = container.AmqpURL(ctx)
	require.NoError(t, err)

	mp, err := container.MappedPort(ctx, "15672/tcp")
	require.NoError(t, err)

	return amqpURL, mp.Port()
}

func seedStream(t *testing.T, amqpURL, queue string, count int) []time.Time {
	t.Helper()

	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	_, _ = ch.QueueDelete(queue, false, false, false)
	_, err = ch.QueueDeclare(queue, true, false, false, false, amqp.Table{"x-queue-type": "stream"})
	require.NoError(t, err)

	timestamps := make([]time.Time, count)
	base := time.Now().UTC()
	for i := 0; i < count; i++ {
		ts := base.Add(time.Duration(i) * time.Millisecond)
		timestamps[i] = ts

		err := ch.Publish("", queue, false, false, amqp.Publishing{
			Body:      []byte("test"),
			Timestamp: ts,
			Headers:   amqp.Table{"x-stream-transaction-id": fmt.Sprintf("transaction_%d", i)},
		})
		require.NoError(t, err)
	}
	return timestamps
}

func newEngine(amqpURL, host, managementPort string) *replay.Engine {
	p := pool.New(pool.Config{URL: amqpURL, Capacity: 2})
	prober := replay.NewProber(replay.ManagementConfig{
		Host: host, Port: managementPort, Username: "guest", Password: "guest",
	})
	return replay.NewEngine(p, prober, replay.RepublishConfig{
		EnableTimestamp:       true,
		TransactionHeaderName: "x-stream-transaction-id",
	}, 5*time.Second)
}

// S1: list all.
func TestIntegration_ListAll(t *testing.T) {
	amqpURL, mgmtPort := startBroker(t)
	seedStream(t, amqpURL, "replay", testMessageCount)

	engine := newEngine(amqpURL, "localhost", mgmtPort)
	records, err := engine.List(context.Background(), "replay", nil, nil)
	require.NoError(t, err)
	require.Len(t, records, testMessageCount)

	for i, r := range records {
		require.NotNil(t, r.Offset)
		require.Equal(t, uint64(i), *r.Offset)
		require.NotNil(t, r.Transaction)
		require.Equal(t, fmt.Sprintf("transaction_%d", i), r.Transaction.Value)
	}
}

// S2: list window.
func TestIntegration_ListWindow(t *testing.T) {
	amqpURL, mgmtPort := startBroker(t)
	timestamps := seedStream(t, amqpURL, "replay", testMessageCount)

	engine := newEngine(amqpURL, "localhost", mgmtPort)
	from, to := timestamps[100], timestamps[199]
	records, err := engine.List(context.Background(), "replay", &from, &to)
	require.NoError(t, err)
	require.Len(t, records, 100)
	require.Equal(t, uint64(100), *records[0].Offset)
	require.Equal(t, uint64(199), *records[len(records)-1].Offset)
}

// S3/S4: replay by timeframe, full range and a single message.
func TestIntegration_ReplayTimeframe(t *testing.T) {
	amqpURL, mgmtPort := startBroker(t)
	timestamps := seedStream(t, amqpURL, "replay", testMessageCount)

	engine := newEngine(amqpURL, "localhost", mgmtPort)
	start := time.Now().UTC()

	records, err := engine.ReplayTimeframe(context.Background(), "replay", timestamps[0], timestamps[testMessageCount-1])
	require.NoError(t, err)
	require.Len(t, records, testMessageCount)
	for _, r := range records {
		require.Nil(t, r.Offset)
		require.NotNil(t, r.Transaction)
		require.NotEmpty(t, r.Transaction.Value)
		require.NotNil(t, r.Timestamp)
		require.False(t, r.Timestamp.Before(start))
	}

	single, err := engine.ReplayTimeframe(context.Background(), "replay", timestamps[testMessageCount-1], timestamps[testMessageCount-1])
	require.NoError(t, err)
	require.Len(t, single, 1)
	require.Equal(t, "test", single[0].Data)
}

// S5: replay by header.
func TestIntegration_ReplayHeader(t *testing.T) {
	amqpURL, mgmtPort := startBroker(t)
	seedStream(t, amqpURL, "replay", testMessageCount)

	engine := newEngine(amqpURL, "localhost", mgmtPort)
	for _, i := range []int{0, 249, 499} {
		records, err := engine.ReplayHeader(context.Background(), "replay", "x-stream-transaction-id", fmt.Sprintf("transaction_%d", i))
		require.NoError(t, err)
		require.Len(t, records, 1)
	}
}

// S6: a non-stream queue is rejected before any message is consumed.
func TestIntegration_NonStreamQueueRejected(t *testing.T) {
	amqpURL, mgmtPort := startBroker(t)

	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()
	_, err = ch.QueueDeclare("classic", true, false, false, false, nil)
	require.NoError(t, err)

	engine := newEngine(amqpURL, "localhost", mgmtPort)
	_, err = engine.List(context.Background(), "classic", nil, nil)
	require.Error(t, err)
}
