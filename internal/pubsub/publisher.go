// Package pubsub multicasts group and member state changes to any number of
// subscribers, keyed by group id.
//
// Publishing is fire-and-forget: it never blocks on slow consumers (a full
// subscriber buffer drops that subscriber's oldest event) and never returns an
// error to the publishing caller. Events for the same group id and entity kind
// reach each subscriber in publish order; there is no ordering across keys and
// no replay of history.
package pubsub

import (
	"sync"
	"time"

	"github.com/tabshare/tabshare/internal/metrics"
	"github.com/tabshare/tabshare/internal/models"
)

const (
	kindGroup  = "group"
	kindMember = "member"

	// DefaultBufferSize is the per-subscriber event buffer.
	DefaultBufferSize = 16

	// DefaultIdleTTL is how long a key with zero subscribers survives before
	// the janitor evicts it.
	DefaultIdleTTL = 10 * time.Minute
)

// registry holds one broadcaster per group id for a single entity kind.
// Broadcasters are created lazily on first subscribe or first publish and
// evicted once idle past the TTL.
type registry[T any] struct {
	mu    sync.RWMutex
	kind  string
	byKey map[string]*broadcaster[T]
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{kind: kind, byKey: make(map[string]*broadcaster[T])}
}

func (r *registry[T]) get(key string) *broadcaster[T] {
	r.mu.RLock()
	b, ok := r.byKey[key]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.byKey[key]; ok {
		return b
	}
	b = newBroadcaster[T]()
	r.byKey[key] = b
	return b
}

// subscribe attaches a stream to the key's broadcaster. A broadcaster the
// janitor retired between lookup and attach refuses the stream; re-fetching
// then creates a live replacement, so the loop terminates.
func (r *registry[T]) subscribe(key string, buf int) *Stream[T] {
	for {
		if s := r.get(key).subscribe(buf, r.kind); s != nil {
			return s
		}
	}
}

func (r *registry[T]) publish(key string, v T) {
	for !r.get(key).publish(v, r.kind) {
	}
	metrics.EventsPublished.WithLabelValues(r.kind).Inc()
}

// sweep drops broadcasters idle past the cutoff. retire marks each one dead
// under its own lock before the key is deleted, so no subscriber can attach
// to a broadcaster that publishing will never reach again.
func (r *registry[T]) sweep(cutoff time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, b := range r.byKey {
		if b.retire(cutoff) {
			delete(r.byKey, key)
		}
	}
}

func (r *registry[T]) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, b := range r.byKey {
		b.closeAll()
		delete(r.byKey, key)
	}
}

func (r *registry[T]) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}

// Publisher is the per-group multicast channel registry for group and member
// events. It owns its state explicitly (no package-level maps) and bounds its
// growth by evicting subscriber-less keys after an idle TTL.
type Publisher struct {
	groups  *registry[*models.Group]
	members *registry[*models.GroupMember]

	bufSize int
	ttl     time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBufferSize sets the per-subscriber event buffer.
func WithBufferSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithIdleTTL sets how long a subscriber-less key survives before eviction.
func WithIdleTTL(ttl time.Duration) Option {
	return func(p *Publisher) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// New creates a Publisher and starts its eviction janitor.
func New(opts ...Option) *Publisher {
	p := &Publisher{
		groups:  newRegistry[*models.Group](kindGroup),
		members: newRegistry[*models.GroupMember](kindMember),
		bufSize: DefaultBufferSize,
		ttl:     DefaultIdleTTL,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.janitor()
	return p
}

// GroupStream subscribes to group status changes for one group id.
func (p *Publisher) GroupStream(groupID string) *Stream[*models.Group] {
	return p.groups.subscribe(groupID, p.bufSize)
}

// MemberStream subscribes to member changes for one group id.
func (p *Publisher) MemberStream(groupID string) *Stream[*models.GroupMember] {
	return p.members.subscribe(groupID, p.bufSize)
}

// PublishGroup broadcasts a group change. Dropped silently if nobody listens.
func (p *Publisher) PublishGroup(groupID string, group *models.Group) {
	p.groups.publish(groupID, group)
}

// PublishMember broadcasts a member change. Dropped silently if nobody listens.
func (p *Publisher) PublishMember(groupID string, member *models.GroupMember) {
	p.members.publish(groupID, member)
}

// Keys reports how many group ids currently hold a broadcaster, for tests and
// debugging endpoints.
func (p *Publisher) Keys() int {
	return p.groups.size() + p.members.size()
}

// Close stops the janitor and closes every open stream.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.groups.closeAll()
		p.members.closeAll()
	})
}

func (p *Publisher) janitor() {
	interval := p.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			cutoff := now.Add(-p.ttl)
			p.groups.sweep(cutoff)
			p.members.sweep(cutoff)
		case <-p.done:
			return
		}
	}
}
