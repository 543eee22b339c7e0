package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/franckalain/lymegrove/internal/feedback"
	"github.com/franckalain/lymegrove/internal/ml"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wsScanRequest struct {
	Image       string `json:"image"` // base64
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type wsHistoryRequest struct {
	Limit int `json:"limit"`
}

// handleWebSocket serves the streaming variant of the REST API. The
// connection is authenticated once, at upgrade, from the token query parameter.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var uid string
	if raw := r.URL.Query().Get("token"); raw != "" {
		var err error
		if uid, err = s.tokens.Verify(raw); err != nil {
			s.handleErr(w, r, AuthError(err), "")
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	clientID := uuid.New().String()
	s.clients.Store(clientID, conn)
	defer s.clients.Delete(clientID)

	log := s.logger.With(zap.String("client_id", clientID))
	log.Debug("websocket client connected", zap.Bool("authenticated", uid != ""))

	ctx := withUserID(r.Context(), uid)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("error reading message", zap.Error(err))
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Type == "" {
			s.sendError(conn, "Invalid message format")
			continue
		}

		s.handleWebSocketMessage(ctx, conn, msg)
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn *websocket.Conn, msg wsMessage) {
	switch msg.Type {
	case "scan":
		s.handleWSScan(ctx, conn, msg.Data)
	case "get_history":
		s.handleWSHistory(ctx, conn, msg.Data)
	case "feedback":
		s.handleWSFeedback(ctx, conn, msg.Data)
	default:
		s.sendError(conn, "Unknown message type")
	}
}

func (s *Server) handleWSScan(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req wsScanRequest
	if err := decodeData(data, &req); err != nil {
		s.sendError(conn, "Invalid image data")
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		s.sendError(conn, "Invalid image format")
		return
	}

	img := ml.Image{Data: imageData, ContentType: req.ContentType, Filename: req.Filename}
	env, err := s.scans.Analyze(ctx, img, UserIDFromContext(ctx))
	if err != nil {
		s.sendAPIError(conn, err, "Analysis failed")
		return
	}
	s.sendMessage(conn, "scan_result", env)
}

func (s *Server) handleWSHistory(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	uid := UserIDFromContext(ctx)
	if uid == "" {
		s.sendError(conn, "Unauthorized")
		return
	}

	var req wsHistoryRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			s.sendError(conn, "Invalid message format")
			return
		}
	}
	limit := defaultHistoryLimit
	if req.Limit > 0 {
		limit = min(req.Limit, maxHistoryLimit)
	}

	scans, err := s.store.ListScans(ctx, uid, limit)
	if err != nil {
		s.sendAPIError(conn, err, "Failed to retrieve history")
		return
	}
	total, err := s.store.CountScans(ctx, uid)
	if err != nil {
		s.sendAPIError(conn, err, "Failed to retrieve history")
		return
	}
	s.sendMessage(conn, "history", scanListResponse{Scans: scans, Total: total})
}

func (s *Server) handleWSFeedback(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var sub feedback.Submission
	if err := decodeData(data, &sub); err != nil {
		s.sendError(conn, "Invalid message format")
		return
	}

	rec, err := s.feedback.Record(ctx, sub)
	if err != nil {
		s.sendAPIError(conn, err, "Failed to submit feedback")
		return
	}
	s.sendMessage(conn, "feedback_saved", rec)
}

func decodeData(data json.RawMessage, out any) error {
	if len(data) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(data, out)
}

func (s *Server) sendMessage(conn *websocket.Conn, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}

	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("error sending message", zap.String("type", messageType), zap.Error(err))
	}
}

// sendAPIError reports err with the same message the REST API would use.
func (s *Server) sendAPIError(conn *websocket.Conn, err error, fallback string) {
	apiErr := classify(err, fallback)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("websocket request failed", zap.Error(err))
	}
	s.sendError(conn, apiErr.Msg)
}

func (s *Server) sendError(conn *websocket.Conn, message string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}

	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("error sending error message", zap.Error(err))
	}
}

func (s *Server) closeClients() {
	s.clients.Range(func(key, value any) bool {
		if conn, ok := value.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})
}
