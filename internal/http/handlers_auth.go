package http

import (
	"net/http"
	"strings"

	"tourbook/internal/core"
	"tourbook/internal/log"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type sessionResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func viewOf(u *core.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Name) == "" {
		respondError(w, r, badRequest("email and name are required"))
		return
	}

	user, token, err := s.auth.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "User registered",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpSignup)

	respondJSON(w, http.StatusCreated, sessionResponse{Token: token, User: viewOf(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "User logged in",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpLogin)

	respondJSON(w, http.StatusOK, sessionResponse{Token: token, User: viewOf(user)})
}

// handleChangePassword rotates the caller's password. Every outstanding
// token, including the one used for this request, stops working; clients
// must log in again.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		respondError(w, r, err)
		return
	}

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Password changed, sessions revoked",
		log.FieldUserID, user.ID)

	respondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, viewOf(user))
}
