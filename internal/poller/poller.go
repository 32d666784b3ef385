// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tamzrod/flogmeter/internal/frame"
)

// ErrIdle means no block became available within the idle timeout.
// A silent source counts as truncated.
var ErrIdle = fmt.Errorf("%w: no data within idle timeout", frame.ErrTruncatedSource)

// Client abstracts the instrument operations needed by the poller.
type Client interface {
	DataAvailable(ch int) (bool, error)
	ReadLoggerData() (frame.Frame, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Channel     int
	PollHz      float64       // data-available query rate
	IdleTimeout time.Duration // max wait for one block
}

// Poller waits for fast-log data and pulls whole blocks.
type Poller struct {
	cfg     Config
	client  Client
	limiter *rate.Limiter
}

// New creates a poller with immutable config.
func New(cfg Config, client Client) (*Poller, error) {
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if cfg.Channel < 1 {
		return nil, errors.New("poller: channel must be >= 1")
	}
	if cfg.PollHz <= 0 {
		return nil, errors.New("poller: poll rate must be > 0")
	}
	if cfg.IdleTimeout <= 0 {
		return nil, errors.New("poller: idle timeout must be > 0")
	}
	return &Poller{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.PollHz), 1),
	}, nil
}

// PollOnce waits for the data-available bit and reads exactly one block.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{Channel: p.cfg.Channel}
	deadline := time.Now().Add(p.cfg.IdleTimeout)

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			res.Err = err
			return res
		}
		res.Polls++

		ok, err := p.client.DataAvailable(p.cfg.Channel)
		if err != nil {
			res.Err = fmt.Errorf("poller: status: %w", err)
			return res
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			res.Err = ErrIdle
			return res
		}
	}

	f, err := p.client.ReadLoggerData()
	res.At = time.Now()
	if err != nil {
		res.Err = fmt.Errorf("poller: read: %w", err)
		return res
	}

	res.Frame = f
	return res
}
