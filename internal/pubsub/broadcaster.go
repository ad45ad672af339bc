package pubsub

import (
	"sync"
	"time"

	"github.com/tabshare/tabshare/internal/metrics"
)

// Stream is one subscriber's handle on a broadcast key. Events arrive on C()
// from the moment of subscription onward; Close detaches the stream and
// releases its buffer. Close is idempotent and safe to race with publishing.
type Stream[T any] struct {
	ch   chan T
	kind string
	b    *broadcaster[T]
}

// C returns the receive channel. It is closed when the stream is closed.
func (s *Stream[T]) C() <-chan T {
	return s.ch
}

// Close detaches the stream from its broadcaster.
func (s *Stream[T]) Close() {
	s.b.remove(s)
}

// broadcaster fans one key's events out to every attached stream.
// All stream attach/detach/send operations happen under mu, so closing a
// stream's channel can never race a send, and each subscriber observes
// events in publish order.
//
// A broadcaster the registry has dropped is marked dead under mu first;
// subscribe and publish refuse dead broadcasters so a caller racing the
// janitor retries against a fresh one instead of attaching to an orphan.
type broadcaster[T any] struct {
	mu      sync.Mutex
	streams map[*Stream[T]]struct{}
	lastUse time.Time
	dead    bool
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{
		streams: make(map[*Stream[T]]struct{}),
		lastUse: time.Now(),
	}
}

// subscribe attaches a new stream. Returns nil if the broadcaster is dead.
func (b *broadcaster[T]) subscribe(buf int, kind string) *Stream[T] {
	b.mu.Lock()
	if b.dead {
		b.mu.Unlock()
		return nil
	}
	s := &Stream[T]{ch: make(chan T, buf), kind: kind, b: b}
	b.streams[s] = struct{}{}
	b.lastUse = time.Now()
	b.mu.Unlock()
	metrics.OpenStreams.WithLabelValues(kind).Inc()
	return s
}

// publish delivers v to every attached stream without ever blocking: a
// subscriber whose buffer is full loses its oldest buffered event instead.
// Returns false if the broadcaster is dead and the event must be re-routed.
func (b *broadcaster[T]) publish(v T, kind string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dead {
		return false
	}
	b.lastUse = time.Now()

	for s := range b.streams {
		select {
		case s.ch <- v:
			continue
		default:
		}
		// Buffer full: drop the oldest, then retry. The consumer may have
		// drained concurrently, so both selects stay non-blocking.
		select {
		case <-s.ch:
			metrics.EventsDropped.WithLabelValues(kind).Inc()
		default:
		}
		select {
		case s.ch <- v:
		default:
		}
	}
	return true
}

func (b *broadcaster[T]) remove(s *Stream[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.streams[s]; ok {
		delete(b.streams, s)
		close(s.ch)
		metrics.OpenStreams.WithLabelValues(s.kind).Dec()
	}
}

func (b *broadcaster[T]) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dead = true
	for s := range b.streams {
		delete(b.streams, s)
		close(s.ch)
		metrics.OpenStreams.WithLabelValues(s.kind).Dec()
	}
}

// retire marks the broadcaster dead if it has no subscribers and has been
// untouched since the cutoff. Once dead it accepts no streams or events, so
// the registry can drop it without stranding a racing subscriber.
func (b *broadcaster[T]) retire(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.streams) == 0 && b.lastUse.Before(cutoff) {
		b.dead = true
		return true
	}
	return false
}
