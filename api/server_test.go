package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}

func TestCreateSessionAndStep(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := postJSON(t, ts, "/api/v1/session", SessionCreateRequest{Image: addiX1_5})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created SessionCreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.SessionID)

	stepResp := postJSON(t, ts, "/api/v1/session/"+created.SessionID+"/step", nil)
	defer stepResp.Body.Close()
	require.Equal(t, http.StatusOK, stepResp.StatusCode)

	var step StepEvent
	require.NoError(t, json.NewDecoder(stepResp.Body).Decode(&step))
	require.EqualValues(t, 5, step.Registers[1])
}

func TestRunToHalt(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	// addi x1, x0, 5 ; halt (all-zero word)
	image := append([]byte{}, addiX1_5...)
	image = append(image, 0x00, 0x00, 0x00, 0x00)

	resp := postJSON(t, ts, "/api/v1/session", SessionCreateRequest{Image: image})
	defer resp.Body.Close()
	var created SessionCreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	runResp := postJSON(t, ts, "/api/v1/session/"+created.SessionID+"/run", nil)
	defer runResp.Body.Close()
	require.Equal(t, http.StatusOK, runResp.StatusCode)

	session, err := s.sessions.GetSession(created.SessionID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state, _ := session.State()
		return state == StateHalted
	}, time.Second, 5*time.Millisecond)

	require.EqualValues(t, 5, session.Machine.CPU.Get(1))
}

func TestBreakpointCreateAndList(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := postJSON(t, ts, "/api/v1/session", SessionCreateRequest{Image: addiX1_5})
	defer resp.Body.Close()
	var created SessionCreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	bpResp := postJSON(t, ts, "/api/v1/session/"+created.SessionID+"/breakpoint", BreakpointRequest{Address: 0x80000004})
	defer bpResp.Body.Close()
	require.Equal(t, http.StatusOK, bpResp.StatusCode)

	listResp, err := http.Get(ts.URL + "/api/v1/session/" + created.SessionID + "/breakpoints")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list BreakpointsResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list.Breakpoints, 1)
	require.EqualValues(t, 0x80000004, list.Breakpoints[0].Address)
}

func TestGetSessionNotFoundReturns404(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/session/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
