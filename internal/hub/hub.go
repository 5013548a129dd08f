package hub

import (
	"context"
	"errors"

	"github.com/DoyleJ11/marathon-draft/internal/gameroom"
	"github.com/DoyleJ11/marathon-draft/internal/metrics"
	"github.com/DoyleJ11/marathon-draft/internal/state"
)

var ErrStopped = errors.New("hub stopped")

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code  string
	State state.GameState
	Reply chan *gameroom.Room
}

type GetRoom struct {
	Code  string
	Reply chan *gameroom.Room
}

type EnsureRoom struct {
	Code  string
	State state.GameState // only used if creation happens
	Reply chan *gameroom.Room
}

type RemoveRoom struct {
	Code string
}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*gameroom.Room
	ctx    context.Context
	cancel context.CancelFunc
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*gameroom.Room),
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if r := h.rooms[msg.Code]; r != nil {
					msg.Reply <- r
					break
				}
				msg.Reply <- h.create(msg.Code, msg.State)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case EnsureRoom:
				if r := h.rooms[msg.Code]; r != nil {
					msg.Reply <- r
					break
				}
				msg.Reply <- h.create(msg.Code, msg.State)

			case RemoveRoom:
				if r := h.rooms[msg.Code]; r != nil {
					r.Inbox() <- gameroom.Shutdown{}
					delete(h.rooms, msg.Code)
					metrics.ActiveRooms.Dec()
				}

			case ShutdownHub:
				h.cancel()
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) create(code string, initial state.GameState) *gameroom.Room {
	r := gameroom.NewRoom(h.ctx, initial)
	h.rooms[code] = r
	metrics.ActiveRooms.Inc()
	return r
}

// shutdown forgets every room. Rooms run under h.ctx, so cancelling it has
// already stopped them.
func (h *Hub) shutdown() {
	for code := range h.rooms {
		delete(h.rooms, code)
		metrics.ActiveRooms.Dec()
	}
}

// Get returns the room for code, or nil if there is none.
func (h *Hub) Get(ctx context.Context, code string) (*gameroom.Room, error) {
	reply := make(chan *gameroom.Room, 1)
	return h.ask(ctx, GetRoom{Code: code, Reply: reply}, reply)
}

// Ensure returns the room for code, creating an empty one if needed.
func (h *Hub) Ensure(ctx context.Context, code string) (*gameroom.Room, error) {
	reply := make(chan *gameroom.Room, 1)
	return h.ask(ctx, EnsureRoom{Code: code, State: state.NewGameState(), Reply: reply}, reply)
}

func (h *Hub) ask(ctx context.Context, msg HubMsg, reply chan *gameroom.Room) (*gameroom.Room, error) {
	select {
	case h.inbox <- msg:
	case <-h.Done():
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-reply:
		return r, nil
	case <-h.Done():
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
