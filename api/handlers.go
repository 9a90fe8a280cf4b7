package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fmash16/riscv-emulator/machine"
)

// handleCreateSession handles POST /api/v1/session: loads a flat binary
// image into a fresh Machine and returns its session ID.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req.Image, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}.
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	state, lastErr := session.State()
	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: sessionID,
		State:     string(state),
		PC:        session.Machine.CPU.PC,
		Registers: session.Machine.CPU.X,
		Cycles:    session.Machine.Cycles,
		Error:     lastErr,
	})
}

// handleDestroySession handles DELETE /api/v1/session/{id}.
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "session destroyed"})
}

// handleStep handles POST /api/v1/session/{id}/step: executes one
// instruction and broadcasts the resulting state.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	result, stepErr := session.Machine.Step()
	if stepErr != nil {
		s.finishRun(session, stepErr)
		if errors.Is(stepErr, machine.ErrHalt) {
			writeJSON(w, http.StatusOK, s.stepResponse(session, result.Mnemonic))
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("step failed: %v", stepErr))
		return
	}

	session.SetState(StateReady, "")
	s.broadcastStep(session, result.Mnemonic)
	writeJSON(w, http.StatusOK, s.stepResponse(session, result.Mnemonic))
}

// handleRun handles POST /api/v1/session/{id}/run: runs asynchronously until
// halt, a breakpoint, or a fatal error, broadcasting each step and a final
// execution event over the WebSocket stream.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	session.SetState(StateRunning, "")
	session.Debugger.Running = true

	go s.runUntilStop(session)

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "run started"})
}

// runUntilStop steps session.Machine until a breakpoint/watchpoint fires, the
// core halts, or a fatal error occurs, broadcasting every step.
func (s *Server) runUntilStop(session *Session) {
	for session.Debugger.Running {
		if shouldBreak, reason := session.Debugger.ShouldBreak(); shouldBreak {
			session.Debugger.Running = false
			session.SetState(StateReady, "")
			s.broadcastExecutionEvent(session, "breakpoint_hit", session.Machine.CPU.PC, reason)
			return
		}

		result, err := session.Machine.Step()
		if err != nil {
			session.Debugger.Running = false
			s.finishRun(session, err)
			return
		}

		s.broadcastStep(session, result.Mnemonic)
	}
}

// finishRun records the terminal state of a run/step and broadcasts it.
func (s *Server) finishRun(session *Session, err error) {
	if errors.Is(err, machine.ErrHalt) {
		session.SetState(StateHalted, "")
		s.broadcastExecutionEvent(session, "halted", session.Machine.CPU.PC, "")
		return
	}
	session.SetState(StateError, err.Error())
	s.broadcastExecutionEvent(session, "error", session.Machine.CPU.PC, err.Error())
}

// handleStop handles POST /api/v1/session/{id}/stop: requests a running
// session pause after its current instruction.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	session.Debugger.Running = false
	session.SetState(StateReady, "")
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "stopped"})
}

// handleReset handles POST /api/v1/session/{id}/reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	session.Machine.CPU.Reset()
	session.SetState(StateReady, "")
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "machine reset"})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers.
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, StepEvent{
		PC:        session.Machine.CPU.PC,
		Registers: session.Machine.CPU.X,
		Cycles:    session.Machine.Cycles,
	})
}

// handleGetMemory handles GET /api/v1/session/{id}/memory?address=&length=.
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address parameter")
		return
	}

	length, err := strconv.ParseUint(query.Get("length"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid length parameter")
		return
	}

	const maxMemoryRead = 1 << 20
	if length > maxMemoryRead {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("length too large (max %d bytes)", maxMemoryRead))
		return
	}

	data := make([]byte, length)
	for i := range data {
		b, loadErr := session.Machine.Bus.Load(address+uint64(i), 8)
		if loadErr != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read memory: %v", loadErr))
			return
		}
		data[i] = byte(b)
	}

	writeJSON(w, http.StatusOK, MemoryResponse{Address: address, Data: data})
}

// handleBreakpoint handles POST/DELETE /api/v1/session/{id}/breakpoint.
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch r.Method {
	case http.MethodPost:
		bp := session.Debugger.Breakpoints.AddBreakpoint(req.Address, false, req.Condition)
		writeJSON(w, http.StatusOK, BreakpointInfo{ID: bp.ID, Address: bp.Address, Enabled: bp.Enabled, HitCount: bp.HitCount})
	case http.MethodDelete:
		if err := session.Debugger.Breakpoints.DeleteBreakpointAt(req.Address); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "breakpoint removed"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints.
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	bps := session.Debugger.Breakpoints.GetAllBreakpoints()
	infos := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		infos[i] = BreakpointInfo{ID: bp.ID, Address: bp.Address, Enabled: bp.Enabled, HitCount: bp.HitCount}
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: infos})
}

// parseHexOrDec parses a string as hexadecimal (0x prefix) or decimal.
func parseHexOrDec(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	if len(s) > 2 && s[:2] == "0x" {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func (s *Server) stepResponse(session *Session, mnemonic string) StepEvent {
	return StepEvent{
		PC:        session.Machine.CPU.PC,
		Registers: session.Machine.CPU.X,
		Cycles:    session.Machine.Cycles,
		Mnemonic:  mnemonic,
	}
}

func (s *Server) broadcastStep(session *Session, mnemonic string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastState(session.ID, map[string]interface{}{
		"pc":        session.Machine.CPU.PC,
		"registers": session.Machine.CPU.X,
		"cycles":    session.Machine.Cycles,
		"mnemonic":  mnemonic,
	})
}

func (s *Server) broadcastExecutionEvent(session *Session, event string, address uint64, message string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastExecutionEvent(session.ID, event, map[string]interface{}{
		"address": address,
		"message": message,
	})
}
