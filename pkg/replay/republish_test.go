package replay

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepublish_RejectsInvalidUTF8(t *testing.T) {
	r := NewRepublisher(RepublishConfig{})

	d := Delivery{Payload: []byte{0xff, 0xfe, 0xfd}}
	_, err := r.Republish(context.Background(), nil, d)

	assert.ErrorContains(t, err, "not valid UTF-8")
}

// fakePublishChannel is an in-process stand-in for *amqp.Channel's publish
// side, recording what Republish actually sent.
type fakePublishChannel struct {
	exchange, routingKey string
	publishing           amqp.Publishing
	err                  error
}

func (f *fakePublishChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange, f.routingKey, f.publishing = exchange, key, msg
	return f.err
}

func TestRepublish_PreservesOriginalExchangeAndRoutingKey(t *testing.T) {
	r := NewRepublisher(RepublishConfig{})
	fake := &fakePublishChannel{}

	d := Delivery{Payload: []byte("test"), Exchange: "amq.topic", RoutingKey: "orders.created"}
	_, err := r.Republish(context.Background(), fake, d)

	require.NoError(t, err)
	assert.Equal(t, "amq.topic", fake.exchange)
	assert.Equal(t, "orders.created", fake.routingKey)
}

func TestRepublish_StampsPerConfig(t *testing.T) {
	cases := []struct {
		name              string
		cfg               RepublishConfig
		wantTimestampSet  bool
		wantHeaderStamped bool
	}{
		{"defaults", RepublishConfig{}, false, false},
		{"timestamp only", RepublishConfig{EnableTimestamp: true}, true, false},
		{"header only", RepublishConfig{TransactionHeaderName: "x-stream-transaction-id"}, false, true},
		{"both", RepublishConfig{EnableTimestamp: true, TransactionHeaderName: "x-stream-transaction-id"}, true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRepublisher(tc.cfg)
			fake := &fakePublishChannel{}

			d := Delivery{Payload: []byte("test"), Exchange: "", RoutingKey: "replay"}
			record, err := r.Republish(context.Background(), fake, d)
			require.NoError(t, err)

			assert.Nil(t, record.Offset, "a republished message has no offset of its own yet")
			assert.Equal(t, "test", record.Data)

			if tc.wantTimestampSet {
				assert.False(t, fake.publishing.Timestamp.IsZero())
				require.NotNil(t, record.Timestamp)
			} else {
				assert.True(t, fake.publishing.Timestamp.IsZero())
				assert.Nil(t, record.Timestamp)
			}

			if tc.wantHeaderStamped {
				value, ok := fake.publishing.Headers[tc.cfg.TransactionHeaderName].(string)
				require.True(t, ok)
				assert.NotEmpty(t, value)
				require.NotNil(t, record.Transaction)
				assert.Equal(t, value, record.Transaction.Value)
			} else {
				assert.Nil(t, record.Transaction)
			}
		})
	}
}

func TestRepublish_FreshTransactionIDDiffersAcrossCalls(t *testing.T) {
	r := NewRepublisher(RepublishConfig{TransactionHeaderName: "x-stream-transaction-id"})
	fake := &fakePublishChannel{}
	d := Delivery{Payload: []byte("test")}

	first, err := r.Republish(context.Background(), fake, d)
	require.NoError(t, err)
	second, err := r.Republish(context.Background(), fake, d)
	require.NoError(t, err)

	assert.NotEqual(t, first.Transaction.Value, second.Transaction.Value)
}

func TestRepublish_PublishFailureAbortsImmediately(t *testing.T) {
	r := NewRepublisher(RepublishConfig{})
	fake := &fakePublishChannel{err: assert.AnError}

	_, err := r.Republish(context.Background(), fake, Delivery{Payload: []byte("test")})
	require.Error(t, err)
}
