package ratelimit

import (
	algoratelimit "github.com/streamops/replay-service/pkg/algorithms/ratelimit"
)

// Strategy names a window algorithm by string. The Redis adapter in
// adapters/redis does not take this type; it selects its Lua script with
// its own integer Strategy.
type Strategy string

const (
	StrategyFixedWindow   Strategy = "fixed_window"
	StrategyTokenBucket   Strategy = "token_bucket"
	StrategySlidingWindow Strategy = "sliding_window"
)

// Result and Limiter are shared with the in-process limiter so HTTP
// middleware can be handed either one interchangeably.
type Result = algoratelimit.Result
type Limiter = algoratelimit.Limiter
