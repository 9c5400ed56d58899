package stream

import (
	"fmt"
	"time"
)

// DefaultReconnectDelay is the pause between reconnect attempts when no
// other policy is configured.
const DefaultReconnectDelay = 3 * time.Second

// Backoff decides how long to wait before reconnect attempt n. Attempt 0 is
// the first reconnect after a drop; the counter resets once a connection
// is established.
type Backoff interface {
	Next(attempt int) time.Duration
}

// ConstantBackoff waits the same delay before every attempt.
type ConstantBackoff struct {
	Delay time.Duration
}

func (b ConstantBackoff) Next(int) time.Duration {
	if b.Delay <= 0 {
		return DefaultReconnectDelay
	}
	return b.Delay
}

// ExponentialBackoff doubles the delay after each failed attempt, up to Max.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

func (b ExponentialBackoff) Next(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = DefaultReconnectDelay
	}
	limit := b.Max
	if limit < base {
		limit = base
	}

	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	return d
}

// NewBackoff builds a policy from its configured name: "constant" or
// "exponential".
func NewBackoff(kind string, delay, maxDelay time.Duration) (Backoff, error) {
	switch kind {
	case "", "constant":
		return ConstantBackoff{Delay: delay}, nil
	case "exponential":
		return ExponentialBackoff{Base: delay, Max: maxDelay}, nil
	default:
		return nil, fmt.Errorf("unknown backoff policy %q (want constant or exponential)", kind)
	}
}
