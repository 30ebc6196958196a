package replay

import (
	"github.com/streamops/replay-service/pkg/errors"
	"github.com/streamops/replay-service/pkg/replay/internal/replayerr"
)

// Error codes surfaced by the replay engine. Named after the failure
// kinds in the design: queue lookup, stream-shape violations, transport
// failures on either the AMQP or the management-HTTP side, and payload
// decoding.
const (
	CodeQueueNotFound       = replayerr.CodeQueueNotFound
	CodeNotAStream          = replayerr.CodeNotAStream
	CodeMalformedDelivery   = replayerr.CodeMalformedDelivery
	CodeBrokerTransport     = replayerr.CodeBrokerTransport
	CodeManagementTransport = replayerr.CodeManagementTransport
	CodeDecode              = replayerr.CodeDecode
	CodePoolExhausted       = replayerr.CodePoolExhausted
	CodeChannelUnhealthy    = replayerr.CodeChannelUnhealthy
)

// ErrQueueNotFound reports that the management API has no record of the
// queue, or that it is empty (the two cases the source API cannot tell
// apart, see ProbeQueue).
func ErrQueueNotFound(queue string) *errors.AppError { return replayerr.QueueNotFound(queue) }

// ErrNotAStream reports that the queue exists but is not a stream queue.
func ErrNotAStream(queue string) *errors.AppError { return replayerr.NotAStream(queue) }

// ErrMalformedDelivery reports a delivery that lacked a well-typed
// x-stream-offset header, which the engine treats as a fatal, unrecoverable
// violation of the stream queue's contract.
func ErrMalformedDelivery(reason string) *errors.AppError {
	return replayerr.MalformedDelivery(reason)
}

// ErrBrokerTransport wraps any AMQP-level failure (connect, channel,
// consume, ack, publish).
func ErrBrokerTransport(err error) *errors.AppError { return replayerr.BrokerTransport(err) }

// ErrManagementTransport wraps any HTTP-level failure talking to the
// management API.
func ErrManagementTransport(err error) *errors.AppError { return replayerr.ManagementTransport(err) }

// ErrDecode reports a payload that failed UTF-8 decoding. The engine
// never emits a lossy replacement; it aborts the request.
func ErrDecode(err error) *errors.AppError { return replayerr.Decode(err) }

// ErrPoolExhausted reports that no pooled connection could be leased
// within the configured acquire timeout.
func ErrPoolExhausted(err error) *errors.AppError { return replayerr.PoolExhausted(err) }

// ErrChannelUnhealthy reports that a leased connection could not produce
// a usable channel, used by the health endpoint.
func ErrChannelUnhealthy(err error) *errors.AppError { return replayerr.ChannelUnhealthy(err) }
