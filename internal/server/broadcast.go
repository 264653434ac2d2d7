package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/olivierh59500/particle-life-engine/internal/particles"
)

// subscriber receives the latest frame and, at most once, the step error
// that ended the stream.
type subscriber struct {
	frames chan particles.Frame
	failed chan error
}

// broadcaster steps the engine on a single ticker while at least one stream
// is subscribed and fans every frame out to all of them. Streams never step
// the engine themselves, so the tick rate does not depend on how many
// clients are connected.
type broadcaster struct {
	engine   *particles.Engine
	logger   *slog.Logger
	interval time.Duration

	mu   sync.Mutex
	subs map[*subscriber]struct{}
	// stop cancels the running ticker loop; nil while idle. gen identifies
	// the loop it belongs to.
	stop context.CancelFunc
	gen  uint64
}

func newBroadcaster(engine *particles.Engine, logger *slog.Logger, interval time.Duration) *broadcaster {
	return &broadcaster{
		engine:   engine,
		logger:   logger,
		interval: interval,
		subs:     make(map[*subscriber]struct{}),
	}
}

// subscribe registers a stream and starts the ticker if it was idle.
func (b *broadcaster) subscribe() *subscriber {
	sub := &subscriber{
		frames: make(chan particles.Frame, 1),
		failed: make(chan error, 1),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[sub] = struct{}{}
	if b.stop == nil {
		ctx, cancel := context.WithCancel(context.Background())
		b.stop = cancel
		b.gen++
		go b.run(ctx, b.gen)
		b.logger.Debug("stream ticker started", "interval", b.interval)
	}
	return sub
}

// unsubscribe removes a stream and stops the ticker once nobody listens.
func (b *broadcaster) unsubscribe(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
	if len(b.subs) == 0 && b.stop != nil {
		b.stop()
		b.stop = nil
		b.logger.Debug("stream ticker stopped")
	}
}

func (b *broadcaster) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *broadcaster) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if err := b.publish(); err != nil {
				b.logger.Warn("stream ticker stopped by engine error", "error", err)
				b.mu.Lock()
				if b.gen == gen && b.stop != nil {
					b.stop()
					b.stop = nil
				}
				b.mu.Unlock()
				return
			}
		}
	}
}

// publish applies one tick and hands the frame to every subscriber. A slow
// subscriber only ever holds the newest frame. A step error is delivered to
// every subscriber instead.
func (b *broadcaster) publish() error {
	snap, err := b.engine.Step()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		for sub := range b.subs {
			select {
			case sub.failed <- err:
			default:
			}
		}
		return err
	}
	frame := particles.NewFrame(snap)
	for sub := range b.subs {
		select {
		case <-sub.frames:
		default:
		}
		sub.frames <- frame
	}
	return nil
}
