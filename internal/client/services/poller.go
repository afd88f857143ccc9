package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"libapp/internal/logging"
)

// Poller periodically asks the feed for its new-book count while the feed
// view is active. Each tick captures the newest id the feed holds at that
// moment; at most one poll request is outstanding at a time, and a tick
// firing during a slow poll is skipped rather than stacked.
//
// Stop is synchronous: when it returns, no further tick fires and no
// in-flight poll result has been or will be applied.
type Poller struct {
	feed     *Feed
	interval time.Duration
	log      logging.Logger

	// onCount, when set, is invoked with each successfully polled count.
	onCount func(int64)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
	busy   atomic.Bool
}

func NewPoller(feed *Feed, interval time.Duration, log logging.Logger) *Poller {
	return &Poller{
		feed:     feed,
		interval: interval,
		log:      log.With("component", "poller", "filter", feed.User()),
	}
}

// OnCount registers the count callback. Must be called before Start.
func (p *Poller) OnCount(fn func(int64)) {
	p.onCount = fn
}

// Start launches the tick loop. Starting an already-running poller is a
// no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	go p.run(ctx, done)
}

// Stop cancels the loop and waits for it and any in-flight poll to wind
// down. Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.busy.CompareAndSwap(false, true) {
				continue
			}
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				defer p.busy.Store(false)
				p.poll(ctx)
			}()
		}
	}
}

// poll runs one count fetch. Failures are deliberately swallowed: the next
// tick simply tries again.
func (p *Poller) poll(ctx context.Context) {
	count, err := p.feed.PollNewCount(ctx)
	if err != nil {
		p.log.Debug(ctx, "poll failed", "error", err)
		return
	}
	if p.onCount != nil && ctx.Err() == nil {
		p.onCount(count)
	}
}
