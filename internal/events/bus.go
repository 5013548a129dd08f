package events

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Unsubscribe revokes one registration. Calling it more than once is a no-op.
type Unsubscribe func()

type registration struct {
	fn      func(Event)
	removed atomic.Bool
}

// Bus dispatches events synchronously to listeners in registration order.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Name][]*registration
	log       *zap.Logger
	onEmit    func(Name)
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		listeners: make(map[Name][]*registration),
		log:       log,
	}
}

// OnEmit installs a hook that runs once per emission before listeners.
func (b *Bus) OnEmit(hook func(Name)) {
	b.mu.Lock()
	b.onEmit = hook
	b.mu.Unlock()
}

func (b *Bus) On(name Name, fn func(Event)) Unsubscribe {
	reg := &registration{fn: fn}

	b.mu.Lock()
	b.listeners[name] = append(b.listeners[name], reg)
	b.mu.Unlock()

	return func() {
		if reg.removed.Swap(true) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		regs := b.listeners[name]
		for i, r := range regs {
			if r == reg {
				// Copy so an in-flight Emit keeps iterating its own snapshot.
				next := make([]*registration, 0, len(regs)-1)
				next = append(next, regs[:i]...)
				next = append(next, regs[i+1:]...)
				b.listeners[name] = next
				break
			}
		}
		if len(b.listeners[name]) == 0 {
			delete(b.listeners, name)
		}
	}
}

// Subscribe registers a listener for the event kind E.
func Subscribe[E Event](b *Bus, fn func(E)) Unsubscribe {
	var zero E
	return b.On(zero.Name(), func(ev Event) {
		if e, ok := ev.(E); ok {
			fn(e)
		}
	})
}

// Emit calls every listener registered for ev's name, in order, before
// returning. Listeners run without the bus lock held, so they may subscribe,
// unsubscribe or emit.
func (b *Bus) Emit(ev Event) {
	name := ev.Name()

	b.mu.RLock()
	regs := b.listeners[name]
	hook := b.onEmit
	b.mu.RUnlock()

	if hook != nil {
		hook(name)
	}
	b.log.Debug("emit", zap.String("event", string(name)), zap.Int("listeners", len(regs)))

	for _, reg := range regs {
		if reg.removed.Load() {
			continue
		}
		b.call(name, reg, ev)
	}
}

func (b *Bus) call(name Name, reg *registration, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event listener panicked", zap.String("event", string(name)), zap.Any("panic", r))
		}
	}()
	reg.fn(ev)
}

func (b *Bus) Count(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name])
}
