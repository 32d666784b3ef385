// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/flogmeter/internal/frame"
)

// PollResult is one fast-log block, or the failure that ended polling.
type PollResult struct {
	Channel int
	At      time.Time

	// Polls is the number of status queries spent waiting for the block.
	Polls int

	Frame frame.Frame
	Err   error // non-nil means the stream is unusable
}
