package infra

import "time"

const (
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// CalculateBackoff returns the reconnect delay for the given retry count:
// exponential from baseDelay, capped at maxDelay.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount <= 0 {
		return baseDelay
	}
	delay := baseDelay << uint(retryCount)
	if delay > maxDelay || delay <= 0 {
		return maxDelay
	}
	return delay
}
