package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trandq/home-electronics-core/internal/auth"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// handleToken exchanges credentials for an access/refresh token pair.
// POST /api/token/
//
// Wrong email and wrong password produce the same reply so the endpoint
// cannot be used to probe which accounts exist.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeValidationError(w, "email and password are required")
		return
	}

	user, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeUnauthorized(w, "no active account found with the given credentials")
			return
		}
		s.logger.Error("login lookup failed", "error", err)
		writeInternalError(w, "failed to process login")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to process login")
		return
	}
	if !ok || !user.IsActive {
		writeUnauthorized(w, "no active account found with the given credentials")
		return
	}

	access, refresh, err := s.issueTokenPair(user.ID)
	if err != nil {
		s.logger.Error("token generation failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to issue tokens")
		return
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, tokenResponse{Access: access, Refresh: refresh})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// handleTokenRefresh exchanges a refresh token for a fresh access token.
// POST /api/token/refresh/
//
// The user is re-checked against storage so a deactivated or deleted
// account cannot keep minting access tokens for the rest of the refresh
// token's lifetime.
func (s *Server) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Refresh == "" {
		writeValidationError(w, "refresh token is required")
		return
	}

	claims, err := auth.ParseToken(req.Refresh, s.cfg.Auth.JWTSecret, auth.TokenTypeRefresh)
	if err != nil {
		writeUnauthorized(w, "invalid or expired refresh token")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		writeUnauthorized(w, "invalid or expired refresh token")
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil || !user.IsActive {
		writeUnauthorized(w, "invalid or expired refresh token")
		return
	}

	access, err := auth.GenerateAccessToken(user.ID, s.cfg.Auth.JWTSecret, s.cfg.Auth.AccessTokenTTL)
	if err != nil {
		s.logger.Error("token generation failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

// issueTokenPair mints a fresh access and refresh token for a user.
func (s *Server) issueTokenPair(userID int64) (access, refresh string, err error) {
	access, err = auth.GenerateAccessToken(userID, s.cfg.Auth.JWTSecret, s.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = auth.GenerateRefreshToken(userID, s.cfg.Auth.JWTSecret, s.cfg.Auth.RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
