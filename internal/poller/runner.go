// internal/poller/runner.go
package poller

import "context"

// Run polls back-to-back and emits every PollResult on out.
// It returns after the first failed result: a broken stream is never re-read.
// out is closed on return.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) {
	defer close(out)

	for {
		res := p.PollOnce(ctx)

		select {
		case out <- res:
		case <-ctx.Done():
			return
		}

		if res.Err != nil {
			return
		}
	}
}
