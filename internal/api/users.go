package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trandq/home-electronics-core/internal/auth"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

// userProfile is the account shape returned to clients. Email is
// read-only after registration.
type userProfile struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

func profileOf(u *auth.User) userProfile {
	return userProfile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
	}
}

// registerRequest carries a password twice so typos surface at signup
// instead of at first login.
type registerRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Password2   string `json:"password2"`
}

// handleRegister creates a new user account.
// POST /api/users/register/
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !auth.IsValidEmail(req.Email) {
		writeValidationError(w, "a valid email is required")
		return
	}
	if req.Name == "" {
		writeValidationError(w, "name is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeValidationError(w, "password must be at least 8 characters")
		return
	}
	if req.Password != req.Password2 {
		writeValidationError(w, "password fields didn't match")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err)
		writeInternalError(w, "failed to register user")
		return
	}

	user := &auth.User{
		Email:        req.Email,
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeConflict(w, "an account with this email already exists")
			return
		}
		s.logger.Error("user creation failed", "error", err)
		writeInternalError(w, "failed to register user")
		return
	}

	s.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully.",
	})
}

// handleMe returns the authenticated user's profile.
// GET /api/users/me/
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), userIDFrom(r))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("profile lookup failed", "error", err)
		writeInternalError(w, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profileOf(user))
}

// updateMeRequest allows changing name and phone number. Email and ID
// stay fixed.
type updateMeRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

// handleUpdateMe partially updates the authenticated user's profile.
// PATCH /api/users/me/
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.users.GetByID(r.Context(), userIDFrom(r))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("profile lookup failed", "error", err)
		writeInternalError(w, "failed to load profile")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			writeValidationError(w, "name cannot be empty")
			return
		}
		user.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		s.logger.Error("profile update failed", "error", err)
		writeInternalError(w, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, profileOf(user))
}
