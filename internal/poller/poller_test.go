// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/flogmeter/internal/config"
	"github.com/tamzrod/flogmeter/internal/frame"
)

type fakeClient struct {
	notReady  int // DataAvailable answers false this many times first
	statusErr error
	readErr   error
	reads     int
	channel   int
}

func (f *fakeClient) DataAvailable(ch int) (bool, error) {
	f.channel = ch
	if f.statusErr != nil {
		return false, f.statusErr
	}
	if f.notReady > 0 {
		f.notReady--
		return false, nil
	}
	return true, nil
}

func (f *fakeClient) ReadLoggerData() (frame.Frame, error) {
	f.reads++
	if f.readErr != nil {
		return frame.Frame{}, f.readErr
	}
	return frame.Frame{Declared: 8, Payload: make([]byte, 8)}, nil
}

func testConfig() Config {
	return Config{Channel: 2, PollHz: 1000, IdleTimeout: time.Second}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(testConfig(), nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	bad := testConfig()
	bad.PollHz = 0
	if _, err := New(bad, &fakeClient{}); err == nil {
		t.Fatalf("expected error for zero poll rate")
	}
	bad = testConfig()
	bad.Channel = 0
	if _, err := New(bad, &fakeClient{}); err == nil {
		t.Fatalf("expected error for channel 0")
	}
}

func TestPollOnce_WaitsForData(t *testing.T) {
	cli := &fakeClient{notReady: 3}
	p, err := New(testConfig(), cli)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce(context.Background())
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if res.Polls != 4 {
		t.Fatalf("expected 4 status polls, got %d", res.Polls)
	}
	if cli.channel != 2 {
		t.Fatalf("polled channel %d, want 2", cli.channel)
	}
	if res.Frame.Declared != 8 || cli.reads != 1 {
		t.Fatalf("expected one 8-byte block, got declared=%d reads=%d", res.Frame.Declared, cli.reads)
	}
}

func TestPollOnce_Idle(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTimeout = 20 * time.Millisecond

	p, err := New(cfg, &fakeClient{notReady: 1 << 30})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce(context.Background())
	if !errors.Is(res.Err, ErrIdle) {
		t.Fatalf("expected ErrIdle, got %v", res.Err)
	}
	if !errors.Is(res.Err, frame.ErrTruncatedSource) {
		t.Fatalf("idle timeout must count as a truncated source")
	}
}

func TestPollOnce_ReadFailure(t *testing.T) {
	cli := &fakeClient{readErr: frame.ErrDesync}
	p, err := New(testConfig(), cli)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce(context.Background())
	if !errors.Is(res.Err, frame.ErrDesync) {
		t.Fatalf("expected wrapped ErrDesync, got %v", res.Err)
	}
}

func TestRun_StopsAfterFailure(t *testing.T) {
	cli := &fakeClient{statusErr: errors.New("socket closed")}
	p, err := New(testConfig(), cli)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	out := make(chan PollResult, 4)
	done := make(chan struct{})
	go func() {
		p.Run(context.Background(), out)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after failure")
	}

	var results []PollResult
	for r := range out {
		results = append(results, r)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("expected exactly one failed result, got %d", len(results))
	}
}

func TestRun_Cancel(t *testing.T) {
	p, err := New(testConfig(), &fakeClient{})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan PollResult)
	go p.Run(ctx, out)

	if r := <-out; r.Err != nil {
		t.Fatalf("first result err=%v", r.Err)
	}
	cancel()

	// drain until Run closes out
	for range out {
	}
}

func TestBuild_FromConfig(t *testing.T) {
	in := config.InstrumentConfig{Channel: 1, PollHz: 50, IdleTimeoutMs: 250}
	p, err := Build(in, &fakeClient{})
	if err != nil {
		t.Fatalf("Build err=%v", err)
	}
	if p.cfg.IdleTimeout != 250*time.Millisecond || p.cfg.PollHz != 50 {
		t.Fatalf("unexpected config %+v", p.cfg)
	}
}
