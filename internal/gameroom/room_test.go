package gameroom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DoyleJ11/marathon-draft/internal/state"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got: %+v", within, s)
	case <-time.After(within):
		// good: no snapshot
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func TestRoom_Patch_BroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRoom(ctx, state.NewGameState())

	clientOut := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: clientOut}

	first := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if len(first.State.Players) != 0 {
		t.Fatalf("after join: expected no players yet, got %+v", first.State.Players)
	}

	r.Inbox() <- ApplyPatch{Patch: state.GamePatch{Players: state.Some([]string{"RUNNER"})}}

	next := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after patch: want version=1, got %d", next.Version)
	}
	if len(next.State.Players) != 1 || next.State.Players[0] != "RUNNER" {
		t.Fatalf("after patch: expected players [RUNNER], got %+v", next.State.Players)
	}

	r.Inbox() <- Shutdown{}
}

func TestRoom_PutResultsMerges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRoom(ctx, state.NewGameState())

	if _, err := r.AddResults(ctx, map[string]string{"1": "2:05:00"}); err != nil {
		t.Fatalf("add results: %v", err)
	}
	snap, err := r.AddResults(ctx, map[string]string{"2": "2:06:00"})
	if err != nil {
		t.Fatalf("add results: %v", err)
	}

	if snap.Version != 2 {
		t.Fatalf("want version=2, got %d", snap.Version)
	}
	if len(snap.State.Results) != 2 || snap.State.Results["1"] != "2:05:00" {
		t.Fatalf("unexpected results %+v", snap.State.Results)
	}
}

func TestRoom_DropSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRoom(ctx, state.NewGameState())

	// Buffer of one is filled by the join snapshot.
	clientOut := make(chan Snapshot, 1)
	r.Inbox() <- Join{ClientID: "c1", Outbox: clientOut}

	r.Inbox() <- ApplyPatch{Patch: state.GamePatch{DraftComplete: state.Some(true)}}

	reply := make(chan View, 1)
	r.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
	if !view.State.DraftComplete {
		t.Fatalf("expected patch to apply even though client was dropped")
	}
}

func TestRoom_LeaveClosesOutbox(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRoom(ctx, state.NewGameState())

	out := make(chan Snapshot, 4)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	r.Inbox() <- Leave{ClientID: "c1"}
	r.Inbox() <- ApplyPatch{Patch: state.GamePatch{DraftComplete: state.Some(true)}}

	recvNoSnapshot(t, out, 200*time.Millisecond)
}

func TestRoom_Shutdown_RejectsRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRoom(ctx, state.NewGameState())

	out := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 500*time.Millisecond)

	r.Inbox() <- Shutdown{}
	recvNoSnapshot(t, out, 200*time.Millisecond)

	<-r.Done()
	if _, err := r.View(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed after shutdown, got %v", err)
	}
}
