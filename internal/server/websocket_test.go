package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/franckalain/lymegrove/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type wsReply struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func dialWS(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msgType string, data any) wsReply {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": msgType, "data": data}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var reply wsReply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocketScan(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ts := httptest.NewServer(h.srv)
	defer ts.Close()

	conn := dialWS(t, ts, "")

	reply := roundTrip(t, conn, "scan", map[string]string{
		"image":       base64.StdEncoding.EncodeToString([]byte("fake jpeg")),
		"filename":    "leaf.jpg",
		"contentType": "image/jpeg",
	})
	require.Equal(t, "scan_result", reply.Type, reply.Message)

	var env models.ScanEnvelope
	require.NoError(t, json.Unmarshal(reply.Data, &env))
	assert.Equal(t, "leaf.jpg", env.Filename)
	assert.Equal(t, models.StatusHealthy, env.Result.Status)

	reply = roundTrip(t, conn, "scan", map[string]string{"image": "%%%"})
	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, "Invalid image format", reply.Message)

	reply = roundTrip(t, conn, "scan", map[string]string{"image": ""})
	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, "No image provided", reply.Message)
}

func TestWebSocketMessageErrors(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ts := httptest.NewServer(h.srv)
	defer ts.Close()

	conn := dialWS(t, ts, "")

	reply := roundTrip(t, conn, "confirm_scan", nil)
	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, "Unknown message type", reply.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var malformed wsReply
	require.NoError(t, conn.ReadJSON(&malformed))
	assert.Equal(t, "Invalid message format", malformed.Message)

	reply = roundTrip(t, conn, "get_history", nil)
	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, "Unauthorized", reply.Message)
}

func TestWebSocketHistory(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ts := httptest.NewServer(h.srv)
	defer ts.Close()

	signed, err := h.tokens.Issue("alice")
	require.NoError(t, err)
	conn := dialWS(t, ts, signed)

	reply := roundTrip(t, conn, "scan", map[string]string{
		"image":    base64.StdEncoding.EncodeToString([]byte("fake jpeg")),
		"filename": "mine.jpg",
	})
	require.Equal(t, "scan_result", reply.Type, reply.Message)

	reply = roundTrip(t, conn, "get_history", map[string]int{"limit": 5})
	require.Equal(t, "history", reply.Type, reply.Message)

	var history scanListResponse
	require.NoError(t, json.Unmarshal(reply.Data, &history))
	assert.Equal(t, 1, history.Total)
	require.Len(t, history.Scans, 1)
	assert.Equal(t, "mine.jpg", history.Scans[0].Filename)
}

func TestWebSocketFeedback(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ts := httptest.NewServer(h.srv)
	defer ts.Close()

	conn := dialWS(t, ts, "")

	reply := roundTrip(t, conn, "feedback", map[string]any{
		"scanId":       "abc123def",
		"isAccurate":   true,
		"feedbackType": "accurate",
	})
	require.Equal(t, "feedback_saved", reply.Type, reply.Message)

	var rec models.FeedbackRecord
	require.NoError(t, json.Unmarshal(reply.Data, &rec))
	assert.Equal(t, "abc123def", rec.ScanID)
	assert.True(t, rec.IsAccurate)
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ts := httptest.NewServer(h.srv)
	defer ts.Close()

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=forged"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeShutsDownCleanly(t *testing.T) {
	h := newHarness(t, harnessConfig{opts: []Option{WithShutdownTimeout(2 * time.Second)}})
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.srv.Serve(ctx, ln) }()

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	reply := roundTrip(t, conn, "unknown", nil)
	assert.Equal(t, "error", reply.Type)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// The open websocket is closed by the server.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
