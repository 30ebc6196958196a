// Package replayerr holds the replay engine's error codes and
// constructors. It is split out from pkg/replay so that pkg/replay/pool
// (a dependency of pkg/replay) can report errors of the same shape
// without importing the parent package.
package replayerr

import "github.com/streamops/replay-service/pkg/errors"

const (
	CodeQueueNotFound       = "REPLAY_QUEUE_NOT_FOUND"
	CodeNotAStream          = "REPLAY_NOT_A_STREAM"
	CodeMalformedDelivery   = "REPLAY_MALFORMED_DELIVERY"
	CodeBrokerTransport     = "REPLAY_BROKER_TRANSPORT"
	CodeManagementTransport = "REPLAY_MANAGEMENT_TRANSPORT"
	CodeDecode              = "REPLAY_DECODE"
	CodePoolExhausted       = "REPLAY_POOL_EXHAUSTED"
	CodeChannelUnhealthy    = "REPLAY_CHANNEL_UNHEALTHY"
)

func QueueNotFound(queue string) *errors.AppError {
	return errors.New(CodeQueueNotFound, "queue not found or empty: "+queue, nil)
}

func NotAStream(queue string) *errors.AppError {
	return errors.New(CodeNotAStream, "queue is not a stream: "+queue, nil)
}

func MalformedDelivery(reason string) *errors.AppError {
	return errors.New(CodeMalformedDelivery, "malformed stream delivery: "+reason, nil)
}

func BrokerTransport(err error) *errors.AppError {
	return errors.New(CodeBrokerTransport, "broker transport failure", err)
}

func ManagementTransport(err error) *errors.AppError {
	return errors.New(CodeManagementTransport, "management API transport failure", err)
}

func Decode(err error) *errors.AppError {
	return errors.New(CodeDecode, "payload is not valid UTF-8", err)
}

func PoolExhausted(err error) *errors.AppError {
	return errors.New(CodePoolExhausted, "connection pool exhausted", err)
}

func ChannelUnhealthy(err error) *errors.AppError {
	return errors.New(CodeChannelUnhealthy, "channel is not healthy", err)
}
