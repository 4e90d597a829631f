package server

import (
	"net/http"

	"github.com/flashflow-ai/flashflow/internal/auth"
	"github.com/flashflow-ai/flashflow/pkg/profile"
)

// authResult is the JSON shape of a successful sign-in.
type authResult struct {
	Token        string        `json:"token"`
	User         *profile.User `json:"user"`
	NeedsProfile bool          `json:"needsProfile"`
}

// requireAuth writes a 503 when no account store is configured. Returns true
// when the request can proceed.
func (s *Server) requireAuth(w http.ResponseWriter) bool {
	if s.Auth == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "accounts are not configured"})
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w) {
		return
	}

	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		Name        string `json:"name"`
		Mobile      string `json:"mobile,omitempty"`
		DateOfBirth string `json:"dateOfBirth,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	res, err := s.Auth.Register(r.Context(), auth.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Mobile:      req.Mobile,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResult{Token: res.Token, User: res.User})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	res, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResult{Token: res.Token, User: res.User})
}

func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w) {
		return
	}

	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := decodeJSON(r, &req); err != nil || req.IDToken == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "idToken required"})
		return
	}

	res, err := s.Auth.GoogleSignIn(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResult{Token: res.Token, User: res.User, NeedsProfile: res.NeedsProfile})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated"})
		return
	}

	u, err := s.Store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated"})
		return
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Mobile      *string `json:"mobile,omitempty"`
		DateOfBirth *string `json:"dateOfBirth,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	u, err := s.Store.UpdateProfile(r.Context(), id, profile.Update{
		Name:        req.Name,
		Mobile:      req.Mobile,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
