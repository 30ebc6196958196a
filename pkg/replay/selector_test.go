package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeWindowSelector_Matches(t *testing.T) {
	from := ymd(2022, time.January, 1)
	to := ymd(2023, time.January, 1)
	sel := TimeWindowSelector{From: &from, To: &to}

	inside := Delivery{Timestamp: millis(ymd(2022, time.June, 1))}
	assert.True(t, sel.Matches(inside))

	outside := Delivery{Timestamp: millis(ymd(2021, time.June, 1))}
	assert.False(t, sel.Matches(outside))

	noTimestamp := Delivery{Timestamp: nil}
	assert.False(t, sel.Matches(noTimestamp), "a missing timestamp never satisfies a configured window")
}

func TestHeaderSelector_Matches(t *testing.T) {
	sel := HeaderSelector{Name: "x-stream-transaction-id", Value: "transaction_7"}

	match := Delivery{Headers: map[string]any{"x-stream-transaction-id": "transaction_7"}}
	assert.True(t, sel.Matches(match))

	mismatch := Delivery{Headers: map[string]any{"x-stream-transaction-id": "transaction_8"}}
	assert.False(t, sel.Matches(mismatch))

	missing := Delivery{Headers: map[string]any{}}
	assert.False(t, sel.Matches(missing))

	wrongType := Delivery{Headers: map[string]any{"x-stream-transaction-id": int64(7)}}
	assert.False(t, sel.Matches(wrongType), "a non-string header value never matches")
}
