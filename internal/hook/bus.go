// Package hook provides the lifecycle pub/sub bus used by the resolver,
// installer, and loader to notify registered handlers of the eight named
// events, layered over watermill's gochannel for channel plumbing while
// keeping handler dispatch direct-call so firing order within one package
// (pre-install < post-install < pre-load < post-load) is preserved.
package hook

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Name identifies one of the eight lifecycle events fired during
// resolution, installation, and loading.
type Name string

const (
	PreResolve      Name = "pre-resolve"
	PostResolve     Name = "post-resolve"
	PreInstall      Name = "pre-install"
	PostInstall     Name = "post-install"
	PreLoad         Name = "pre-load"
	PostLoad        Name = "post-load"
	Ready           Name = "ready"
	PackageDisabled Name = "package-disabled"
)

// Event carries the hook name and whatever payload the firing site
// attaches (typically the package name, or nil for pre-resolve/ready).
type Event struct {
	Name Name
	Data any
}

// Handler receives a fired Event. A handler that panics is logged but
// never halts delivery to the remaining handlers.
type Handler func(Event)

type handlerEntry struct {
	id uint64
	fn Handler
}

// Bus is the lifecycle hook dispatcher. The zero value is not usable;
// construct with New.
type Bus struct {
	mu sync.RWMutex

	pubsub *gochannel.GoChannel

	handlers map[Name][]handlerEntry
	global   []handlerEntry
	nextID   uint64
	closed   bool
}

// New creates a Bus with its own watermill gochannel backing.
func New() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NopLogger{},
		),
		handlers: make(map[Name][]handlerEntry),
	}
}

func (b *Bus) newID() uint64 {
	return atomic.AddUint64(&b.nextID, 1)
}

// On registers fn for the named event, returning an Off function.
//
// Registrations are not deduplicated within a hook name: registering the
// same handler twice delivers each event to it twice. Go gives no reliable identity for a func value short of
// requiring callers to pass a comparable key alongside it — a reflect
// code-pointer comparison looked like the obvious fit, but two closures
// built from the same literal (the common case: registering a templated
// handler per package, per loop iteration, with a different captured
// variable each time, the way internal/loader and internal/pack do)
// share one code pointer and would wrongly collapse to a single
// registration. Firing the same Handler value twice is a caller bug, not
// something this bus silently repairs; On stays append-only and callers
// that truly need idempotent registration should hold onto the Off
// closure themselves instead of relying on a second On to be a no-op.
func (b *Bus) On(name Name, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}
	id := b.newID()
	b.handlers[name] = append(b.handlers[name], handlerEntry{id: id, fn: fn})
	return func() { b.off(name, id) }
}

// OnAny registers fn for every event.
func (b *Bus) OnAny(fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}
	id := b.newID()
	b.global = append(b.global, handlerEntry{id: id, fn: fn})
	return func() { b.offGlobal(id) }
}

func (b *Bus) off(name Name, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.handlers[name]
	for i, e := range entries {
		if e.id == id {
			b.handlers[name] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

func (b *Bus) offGlobal(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.global {
		if e.id == id {
			b.global = append(b.global[:i], b.global[i+1:]...)
			return
		}
	}
}

// Fire invokes every handler registered for name, plus every OnAny
// handler, synchronously and in registration order. A handler panic is
// recovered and logged; it does not stop delivery to the rest.
func (b *Bus) Fire(name Name, data any) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	fns := make([]Handler, 0, len(b.handlers[name])+len(b.global))
	for _, e := range b.handlers[name] {
		fns = append(fns, e.fn)
	}
	for _, e := range b.global {
		fns = append(fns, e.fn)
	}
	b.mu.RUnlock()

	ev := Event{Name: name, Data: data}
	for _, fn := range fns {
		b.invoke(fn, ev)
	}
}

func (b *Bus) invoke(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("hook", string(ev.Name)).Msg("hook handler panicked")
		}
	}()
	fn(ev)
}

// Close releases the underlying watermill resources and clears every
// registered handler.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.handlers = make(map[Name][]handlerEntry)
	b.global = nil
	b.mu.Unlock()
	return b.pubsub.Close()
}

// PubSub exposes the underlying watermill GoChannel for advanced wiring
// (middleware, routing to a distributed backend) without disturbing the
// direct-call dispatch path above.
func (b *Bus) PubSub() *gochannel.GoChannel {
	return b.pubsub
}
