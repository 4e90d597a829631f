package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/flashflow-ai/flashflow/internal/assist"
)

// streamRequest is the first message the client sends after the upgrade.
type streamRequest struct {
	Text      string `json:"text"`
	Tone      string `json:"tone"`
	SessionID string `json:"sessionId,omitempty"`
}

// streamEvent is one server-to-client message on the rewrite stream.
type streamEvent struct {
	Chunk string `json:"chunk,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleRewriteStream upgrades to a WebSocket, reads one rewrite request and
// streams the rewritten text back chunk by chunk, ending with a done event.
func (s *Server) handleRewriteStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		// Accept has already written its own error response.
		slog.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream finished")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var req streamRequest
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		conn.Close(websocket.StatusPolicyViolation, "expected a rewrite request")
		return
	}

	chunks, err := s.assistFor(req.SessionID).RewriteStream(ctx, req.Text, req.Tone)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, assist.ErrBusy) {
			msg = "a rewrite is already in progress"
		}
		_ = wsjson.Write(ctx, conn, streamEvent{Error: msg})
		return
	}

	for chunk := range chunks {
		if chunk.FinishReason == "error" {
			_ = wsjson.Write(ctx, conn, streamEvent{Error: "rewrite stream failed"})
			return
		}
		if chunk.Text == "" {
			continue
		}
		if err := wsjson.Write(ctx, conn, streamEvent{Chunk: chunk.Text}); err != nil {
			slog.Debug("rewrite stream client gone", "err", err)
			return
		}
	}

	_ = wsjson.Write(ctx, conn, streamEvent{Done: true})
}
