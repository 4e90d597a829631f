package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flashflow-ai/flashflow/internal/assist"
	"github.com/flashflow-ai/flashflow/internal/auth"
	"github.com/flashflow-ai/flashflow/internal/engine"
	"github.com/flashflow-ai/flashflow/pkg/richtext"
	"github.com/flashflow-ai/flashflow/pkg/types"
)

// sessionBody is the JSON shape of a session in responses.
type sessionBody struct {
	ID          string             `json:"id"`
	State       string             `json:"state"`
	Text        string             `json:"text"`
	Document    richtext.Document  `json:"document"`
	Suggestions []types.Suggestion `json:"suggestions"`
}

func sessionResponse(s *Session) sessionBody {
	var body sessionBody
	s.WithLock(func(e *engine.Engine) {
		body = sessionBody{
			ID:          s.ID.String(),
			State:       string(e.State()),
			Text:        e.PlainText(),
			Document:    e.Document(),
			Suggestions: e.Suggestions(),
		}
	})
	return body
}

// session resolves the {id} URL parameter to a live session. Writes the
// error response and returns nil when the id is malformed or unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed session id"})
		return nil
	}
	sess, ok := s.Sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "session not found"})
		return nil
	}
	return sess
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
			return
		}
	}

	userID, _ := auth.UserID(r.Context())
	sess := s.Sessions.Create(userID, req.Text)
	writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed session id"})
		return
	}
	if !s.Sessions.Delete(id) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetContent replaces the session document with new text. Any pending
// analysis is discarded.
func (s *Server) handleSetContent(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	sess.WithLock(func(e *engine.Engine) {
		e.SetContent(richtext.FromText(req.Text))
	})
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

// handleAnalyze runs the analysis flow on the session document and installs
// the resulting suggestions.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var text string
	sess.WithLock(func(e *engine.Engine) {
		text = e.PlainText()
	})

	suggestions, err := sess.Assist.Analyze(r.Context(), text)
	if err != nil {
		writeError(w, err)
		return
	}

	sess.WithLock(func(e *engine.Engine) {
		e.SetAnalysis(suggestions)
	})
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		ID          string `json:"id"`
		Replacement string `json:"replacement,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "suggestion id required"})
		return
	}

	var acceptErr error
	sess.WithLock(func(e *engine.Engine) {
		replacement := req.Replacement
		if replacement == "" {
			for _, sg := range e.Suggestions() {
				if sg.ID == req.ID {
					replacement = sg.Suggestion
					break
				}
			}
		}
		acceptErr = e.Accept(req.ID, replacement)
	})
	if acceptErr != nil {
		writeError(w, acceptErr)
		return
	}

	if s.Metrics != nil {
		s.Metrics.RecordApplied(r.Context(), "single", 1)
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

// handleAcceptAll applies the listed suggestions, or every pending one when
// the list is empty. The response reports how many were applied and how many
// were skipped because their text was no longer present.
func (s *Server) handleAcceptAll(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		IDs []string `json:"ids,omitempty"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
			return
		}
	}

	var applied, requested int
	sess.WithLock(func(e *engine.Engine) {
		ids := req.IDs
		if len(ids) == 0 {
			for _, sg := range e.Suggestions() {
				ids = append(ids, sg.ID)
			}
		}
		requested = len(ids)
		applied = e.AcceptAll(ids)
	})

	if s.Metrics != nil {
		s.Metrics.RecordApplied(r.Context(), "bulk", int64(applied))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": applied,
		"skipped": requested - applied,
		"session": sessionResponse(sess),
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "suggestion id required"})
		return
	}

	sess.WithLock(func(e *engine.Engine) {
		e.Reject(req.ID)
	})
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

// assistFor returns the session-scoped assistant when the request names a
// session, so its busy state applies; otherwise the shared service.
func (s *Server) assistFor(sessionID string) *assist.Service {
	if sessionID != "" {
		if id, err := uuid.Parse(sessionID); err == nil {
			if sess, ok := s.Sessions.Get(id); ok {
				return sess.Assist
			}
		}
	}
	return s.Assist
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		Tone      string `json:"tone"`
		SessionID string `json:"sessionId,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}
	if req.Tone == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "tone required"})
		return
	}

	rewritten, err := s.assistFor(req.SessionID).Rewrite(r.Context(), req.Text, req.Tone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rewrittenText": rewritten})
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		Voice     string `json:"voice,omitempty"`
		SessionID string `json:"sessionId,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	dataURI, err := s.assistFor(req.SessionID).Synthesize(r.Context(), req.Text, req.Voice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"audioDataUri": dataURI})
}
