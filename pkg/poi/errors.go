package poi

import "fmt"

// InsufficientConnectivityError means the sampled core candidates contained no
// mutually reachable pair, so no anchor clique exists. Retrying with a fresh
// sample or a larger core count is the expected recovery.
type InsufficientConnectivityError struct {
	CoreCount int
}

func (e *InsufficientConnectivityError) Error() string {
	return fmt.Sprintf("no connected clique among %d sampled core candidates", e.CoreCount)
}
