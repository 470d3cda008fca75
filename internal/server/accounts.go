package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/comigor/friendbot-go/internal/api"
	"github.com/comigor/friendbot-go/internal/auth"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/metrics"
	"github.com/comigor/friendbot-go/internal/session"
	"github.com/comigor/friendbot-go/internal/storage"
)

func toAPIUser(u *storage.User) api.User {
	return api.User{
		ID:                    u.ID,
		Username:              u.Username,
		Email:                 u.Email,
		CreatedAt:             u.CreatedAt,
		LastLogin:             u.LastLogin,
		PreferredFriendGender: u.Preference,
	}
}

func conflictMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, storage.ErrUsernameTaken):
		return "Username already exists!", true
	case errors.Is(err, storage.ErrEmailTaken):
		return "Email already exists!", true
	}
	return "", false
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in api.RegisterRequest
	if !decode(w, r, &in, "Missing required fields!") {
		return
	}
	in.Username, in.Email = strings.TrimSpace(in.Username), strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields!")
		return
	}
	pref := session.PreferenceNeutral
	if in.PreferredFriendGender != "" {
		p, err := session.ParsePreference(in.PreferredFriendGender)
		if err != nil {
			writeError(w, http.StatusBadRequest, invalidPreference)
			return
		}
		pref = p
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		logger.L.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed!")
		return
	}
	u := &storage.User{Username: in.Username, Email: in.Email, PasswordHash: hash, Preference: string(pref)}
	if err := s.db.CreateUser(r.Context(), u); err != nil {
		metrics.AuthEvent("register", false)
		if msg, ok := conflictMessage(err); ok {
			writeError(w, http.StatusConflict, msg)
			return
		}
		logger.L.Error("failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed!")
		return
	}
	metrics.AuthEvent("register", true)
	logger.L.Info("user registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: "User registered successfully!"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in api.LoginRequest
	if !decode(w, r, &in, "Missing username or password!") {
		return
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing username or password!")
		return
	}

	u, err := s.db.UserByUsername(r.Context(), strings.TrimSpace(in.Username))
	if errors.Is(err, storage.ErrNotFound) {
		metrics.AuthEvent("login", false)
		writeError(w, http.StatusNotFound, "User not found!")
		return
	}
	if err != nil {
		logger.L.Error("failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed!")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		metrics.AuthEvent("login", false)
		writeError(w, http.StatusUnauthorized, "Invalid password!")
		return
	}

	tok, err := s.auth.Issue(u.ID)
	if err != nil {
		logger.L.Error("failed to sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed!")
		return
	}
	now := time.Now().UTC()
	if err := s.db.TouchLogin(r.Context(), u.ID, now); err != nil {
		logger.L.Warn("failed to record login", "user_id", u.ID, "error", err)
	} else {
		u.LastLogin = &now
	}
	metrics.AuthEvent("login", true)
	writeJSON(w, http.StatusOK, api.LoginResponse{Message: "Login successful!", Token: tok, User: toAPIUser(u)})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.ProfileResponse{User: toAPIUser(currentUser(r))})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in api.ProfileUpdateRequest
	if !decode(w, r, &in, "No data provided!") {
		return
	}
	u := *currentUser(r)
	if v := strings.TrimSpace(in.Username); v != "" {
		u.Username = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		u.Email = v
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			logger.L.Error("failed to hash password", "error", err)
			writeError(w, http.StatusInternalServerError, "Profile update failed!")
			return
		}
		u.PasswordHash = hash
	}
	if in.PreferredFriendGender != "" {
		p, err := session.ParsePreference(in.PreferredFriendGender)
		if err != nil {
			writeError(w, http.StatusBadRequest, invalidPreference)
			return
		}
		u.Preference = string(p)
	}

	if err := s.db.UpdateUser(r.Context(), &u); err != nil {
		if msg, ok := conflictMessage(err); ok {
			writeError(w, http.StatusConflict, msg)
			return
		}
		logger.L.Error("failed to update user", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Profile update failed!")
		return
	}
	writeJSON(w, http.StatusOK, api.ProfileResponse{Message: "Profile updated successfully!", User: toAPIUser(&u)})
}
