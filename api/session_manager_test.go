package api

import (
	"testing"
)

var addiX1_5 = []byte{0x93, 0x00, 0x50, 0x00} // addi x1, x0, 5

func TestCreateSessionLoadsImageAndAssignsID(t *testing.T) {
	sm := NewSessionManager(nil)

	session, err := sm.CreateSession(addiX1_5, 0)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected non-empty session ID")
	}

	if _, err := session.Machine.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := session.Machine.CPU.Get(1); got != 5 {
		t.Errorf("x1 = %d, want 5", got)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	sm := NewSessionManager(nil)

	if _, err := sm.GetSession("does-not-exist"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDestroySessionRemovesIt(t *testing.T) {
	sm := NewSessionManager(nil)
	session, err := sm.CreateSession(addiX1_5, 0)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := sm.DestroySession(session.ID); err != nil {
		t.Fatalf("DestroySession: %v", err)
	}
	if _, err := sm.GetSession(session.ID); err != ErrSessionNotFound {
		t.Fatalf("expected session gone, got err=%v", err)
	}
}

func TestListAndCountSessions(t *testing.T) {
	sm := NewSessionManager(nil)
	if sm.Count() != 0 {
		t.Fatalf("expected 0 sessions, got %d", sm.Count())
	}

	s1, _ := sm.CreateSession(addiX1_5, 0)
	s2, _ := sm.CreateSession(addiX1_5, 0)

	if sm.Count() != 2 {
		t.Fatalf("expected 2 sessions, got %d", sm.Count())
	}

	ids := sm.ListSessions()
	found := map[string]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[s1.ID] || !found[s2.ID] {
		t.Fatalf("ListSessions missing an ID: %v", ids)
	}
}

func TestSessionStateTransitions(t *testing.T) {
	sm := NewSessionManager(nil)
	session, _ := sm.CreateSession(addiX1_5, 0)

	if state, errMsg := session.State(); state != StateReady || errMsg != "" {
		t.Fatalf("new session state = %q/%q, want ready/empty", state, errMsg)
	}

	session.SetState(StateError, "bus fault")
	state, errMsg := session.State()
	if state != StateError || errMsg != "bus fault" {
		t.Fatalf("state after SetState = %q/%q", state, errMsg)
	}
}
