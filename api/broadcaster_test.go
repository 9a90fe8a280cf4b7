package api

import (
	"testing"
	"time"
)

func TestBroadcasterDeliversToMatchingSubscription(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("session-1", []EventType{EventTypeState})
	defer b.Unsubscribe(sub)

	b.BroadcastState("session-1", map[string]interface{}{"pc": uint64(0x80000000)})

	select {
	case event := <-sub.Channel:
		if event.SessionID != "session-1" || event.Type != EventTypeState {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast event")
	}
}

func TestBroadcasterFiltersBySession(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("session-A", nil)
	defer b.Unsubscribe(sub)

	b.BroadcastState("session-B", map[string]interface{}{"pc": uint64(0)})

	select {
	case event := <-sub.Channel:
		t.Fatalf("unexpected event delivered across sessions: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcasterFiltersByEventType(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("", []EventType{EventTypeOutput})
	defer b.Unsubscribe(sub)

	b.BroadcastExecutionEvent("session-1", "halted", nil)

	select {
	case event := <-sub.Channel:
		t.Fatalf("unexpected event delivered for unsubscribed type: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcasterCloseUnblocksSubscribers(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe("", nil)

	b.Close()

	select {
	case _, ok := <-sub.Channel:
		if ok {
			t.Fatal("expected channel to be closed, got a value")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close after Broadcaster.Close")
	}
}
