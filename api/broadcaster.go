// Package api's Broadcaster fans step/output/execution events for a running
// emulator session out to every WebSocket client subscribed to it. There is
// no VM "flags" concept here — an RV64I session's observable state is just
// PC, the 32-entry GPR file, and the cycle count, per machine.StepResult.
package api

import (
	"sync"
)

// EventType distinguishes the kinds of events a session can emit.
type EventType string

const (
	// EventTypeState carries a register/PC/cycle snapshot after a step.
	EventTypeState EventType = "state"
	// EventTypeOutput is reserved for a future program-output stream;
	// unused today since ECALL/EBREAK are no-ops (see api/event_writer.go
	// in DESIGN.md's dropped-modules list).
	EventTypeOutput EventType = "output"
	// EventTypeExecution carries lifecycle events: breakpoint hit, halt,
	// runtime fault.
	EventTypeExecution EventType = "event"
)

// BroadcastEvent is one event delivered to a subscribed WebSocket client.
type BroadcastEvent struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"sessionId"`
	Data      map[string]interface{} `json:"data"`
}

// Subscription is one client's filter over the event stream: SessionID
// restricts to a single session ("" means all sessions), EventTypes
// restricts to a set of event kinds (empty means all kinds).
type Subscription struct {
	SessionID  string
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans events out to every subscription whose filter matches,
// via a single goroutine owning the subscription set so Subscribe/
// Unsubscribe/Broadcast never need to contend on it directly.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster starts the fan-out goroutine and returns the Broadcaster
// handle for it.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256), // Buffered to prevent blocking
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}

	go b.run()
	return b
}

// run owns the subscription set for the lifetime of the Broadcaster: every
// mutation and every fan-out read goes through this one goroutine's select
// loop, so Subscribe/Unsubscribe/Broadcast only ever touch channels.
func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if !subscriptionMatches(sub, event) {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
					// Slow client: drop the event rather than stall the
					// broadcaster for every other subscriber.
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// subscriptionMatches reports whether event passes sub's session and event
// type filters.
func subscriptionMatches(sub *Subscription, event BroadcastEvent) bool {
	if sub.SessionID != "" && sub.SessionID != event.SessionID {
		return false
	}
	if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
		return false
	}
	return true
}

// Subscribe registers a new filter over the event stream and returns the
// Subscription whose Channel will receive matching events. sessionID == ""
// subscribes to every session; a nil/empty eventTypes subscribes to every
// event kind.
func (b *Broadcaster) Subscribe(sessionID string, eventTypes []EventType) *Subscription {
	eventTypeMap := make(map[EventType]bool)
	for _, et := range eventTypes {
		eventTypeMap[et] = true
	}

	sub := &Subscription{
		SessionID:  sessionID,
		EventTypes: eventTypeMap,
		Channel:    make(chan BroadcastEvent, 64), // Buffered to handle bursts
	}

	b.register <- sub
	return sub
}

// Unsubscribe deregisters sub; run closes its Channel once it processes the
// request.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast enqueues event for fan-out. If the internal queue is saturated
// (a burst of steps outrunning every subscriber) the event is dropped
// rather than blocking the emulator loop that called it.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// BroadcastState announces a post-step register/PC/cycle snapshot for
// sessionID; data is the caller-built JSON payload (see
// Server.broadcastStep).
func (b *Broadcaster) BroadcastState(sessionID string, data map[string]interface{}) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeState,
		SessionID: sessionID,
		Data:      data,
	})
}

// BroadcastOutput announces bytes produced by the emulated program on the
// named stream. Unreachable today (see EventTypeOutput) but kept so a
// future syscall-emulation layer has somewhere to publish output without
// touching the wire protocol.
func (b *Broadcaster) BroadcastOutput(sessionID, stream, content string) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeOutput,
		SessionID: sessionID,
		Data: map[string]interface{}{
			"stream":  stream,
			"content": content,
		},
	})
}

// BroadcastExecutionEvent announces a session lifecycle event (breakpoint
// hit, halt, runtime fault) with eventName under the "event" key plus
// whatever else the caller puts in details.
func (b *Broadcaster) BroadcastExecutionEvent(sessionID, eventName string, details map[string]interface{}) {
	data := make(map[string]interface{}, len(details)+1)
	data["event"] = eventName
	for k, v := range details {
		data[k] = v
	}

	b.Broadcast(BroadcastEvent{
		Type:      EventTypeExecution,
		SessionID: sessionID,
		Data:      data,
	})
}

// Close stops the fan-out goroutine and closes every live subscription's
// Channel, unblocking any client reading from it.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount reports the number of live subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
