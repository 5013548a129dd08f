package gameroom

import (
	"context"
	"errors"
	"maps"

	"github.com/DoyleJ11/marathon-draft/internal/metrics"
	"github.com/DoyleJ11/marathon-draft/internal/state"
)

var ErrClosed = errors.New("room closed")

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

// ApplyPatch merges a partial game state. Reply may be nil.
type ApplyPatch struct {
	Patch state.GamePatch
	Reply chan Snapshot
}

func (ApplyPatch) isRoomMsg() {}

// PutResults overlays results onto the stored results. Reply may be nil.
type PutResults struct {
	Results map[string]string
	Reply   chan Snapshot
}

func (PutResults) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Snapshot struct {
	Version int
	State   state.GameState
}

type View struct {
	Version    int
	NumClients int
	State      state.GameState
}

// Room owns the authoritative state of one game. All access goes through
// its inbox.
type Room struct {
	inbox   chan Msg
	state   state.GameState
	version int
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRoom(parent context.Context, initial state.GameState) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:   make(chan Msg, 64), // Small buffer
		state:   initial,
		version: 0,
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				r.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- r.snapshot()

			case Leave:
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}

			case ApplyPatch:
				r.state = state.ApplyGame(r.state, msg.Patch)
				r.commit(msg.Reply)

			case PutResults:
				r.state = state.MergeResults(r.state, msg.Results)
				r.commit(msg.Reply)

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.state.Clone(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) commit(reply chan Snapshot) {
	r.version++
	snap := r.snapshot()
	if reply != nil {
		reply <- Snapshot{Version: snap.Version, State: snap.State.Clone()}
	}
	r.broadcast(snap)
}

// snapshot shares maps with r.state. That is safe because r.state is only
// ever replaced, never mutated in place.
func (r *Room) snapshot() Snapshot {
	return Snapshot{Version: r.version, State: r.state}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more snapshots
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		select {
		case ch <- snap:
			metrics.SnapshotsBroadcast.Inc()
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room has stopped.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) Apply(ctx context.Context, p state.GamePatch) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	return ask(ctx, r, ApplyPatch{Patch: p, Reply: reply}, reply)
}

func (r *Room) AddResults(ctx context.Context, results map[string]string) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	return ask(ctx, r, PutResults{Results: maps.Clone(results), Reply: reply}, reply)
}

func (r *Room) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	return ask(ctx, r, GetState{Reply: reply}, reply)
}

func ask[T any](ctx context.Context, r *Room, msg Msg, reply chan T) (T, error) {
	var zero T
	select {
	case r.inbox <- msg:
	case <-r.Done():
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.Done():
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
