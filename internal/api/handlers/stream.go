package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/folio/internal/engine"
	"github.com/wonny/folio/pkg/logger"
)

const (
	writeWait = 10 * time.Second
	readWait  = 30 * time.Second
)

// StreamMessage is one websocket frame sent to the client
type StreamMessage struct {
	Type   string         `json:"type"` // progress | result | error
	Event  *engine.Event  `json:"event,omitempty"`
	Result *ValueResponse `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// StreamHandler runs a computation over a websocket and streams its progress
// ⭐ SSOT: 진행 상황 스트리밍은 여기서만
type StreamHandler struct {
	engine   *engine.Engine
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(eng *engine.Engine, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		engine: eng,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles one computation per connection: the client sends a ValueRequest,
// the server answers with progress frames and a final result or error frame.
// The computation is cancelled as soon as the client goes away.
// GET /ws/portfolio
func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxBodyBytes)
	if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
		h.logger.WithError(err).Debug("WebSocket read deadline failed")
		return
	}

	var body ValueRequest
	if err := conn.ReadJSON(&body); err != nil {
		h.send(conn, StreamMessage{Type: "error", Error: "invalid request body: " + err.Error()})
		return
	}

	req, err := body.ToEngine()
	if err != nil {
		h.send(conn, StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	// 업그레이드 이후 r.Context()는 클라이언트 종료를 알리지 않음
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go h.watchClose(conn, cancel)

	res, err := h.engine.ComputeWithProgress(ctx, req, func(ev engine.Event) {
		if err := h.send(conn, StreamMessage{Type: "progress", Event: &ev}); err != nil {
			cancel()
		}
	})
	if err != nil {
		h.send(conn, StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	resp := NewValueResponse(res)
	if err := h.send(conn, StreamMessage{Type: "result", Result: &resp}); err != nil {
		return
	}

	if err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait)); err != nil {
		h.logger.WithError(err).Debug("WebSocket close frame failed")
	}
}

// watchClose is the connection's only reader once the request is in.
// Any read error (close frame, dropped TCP, conn.Close) cancels the computation.
func (h *StreamHandler) watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		h.logger.WithError(err).Debug("WebSocket read deadline failed")
		return
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) send(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.WithError(err).WithField("type", msg.Type).Debug("WebSocket write deadline failed")
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.WithError(err).WithField("type", msg.Type).Debug("WebSocket write failed")
		return err
	}
	return nil
}
