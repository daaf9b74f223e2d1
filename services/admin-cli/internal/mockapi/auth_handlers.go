package mockapi

import (
	"net/http"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/services/admin-cli/internal/api"
)

// handleLogin обрабатывает вход по email и паролю
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.validator.ValidateRequiredFields(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}, []string{"email", "password"}); err != nil {
		writeError(w, validationFailure(err))
		return
	}

	s.mu.Lock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Info("неудачная попытка входа", logger.String("email", req.Email))
		writeError(w, errors.New(errors.ErrUnauthorized, "Invalid email or password"))
		return
	}

	access, refresh, err := s.tokens.GeneratePair(user)
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrInternal, "Failed to issue tokens"))
		return
	}
	if err := s.trackSession(refresh); err != nil {
		writeError(w, errors.Wrap(err, errors.ErrInternal, "Failed to issue tokens"))
		return
	}

	writeData(w, http.StatusOK, api.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.User,
	})
}

// handleRefresh обменивает refresh токен на новый access токен
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, errors.New(errors.ErrUnauthorized, "Invalid refresh token"))
		return
	}

	s.mu.Lock()
	active := s.sessions[claims.ID]
	user, known := s.users[claims.Email]
	s.mu.Unlock()
	if !active || !known {
		writeError(w, errors.New(errors.ErrUnauthorized, "Refresh token revoked"))
		return
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrInternal, "Failed to issue tokens"))
		return
	}

	resp := api.RefreshResponse{AccessToken: access}
	if s.cfg.RotateRefreshTokens {
		_, refresh, err := s.tokens.GeneratePair(user)
		if err != nil {
			writeError(w, errors.Wrap(err, errors.ErrInternal, "Failed to issue tokens"))
			return
		}
		if err := s.trackSession(refresh); err != nil {
			writeError(w, errors.Wrap(err, errors.ErrInternal, "Failed to issue tokens"))
			return
		}
		s.mu.Lock()
		delete(s.sessions, claims.ID)
		s.mu.Unlock()
		resp.RefreshToken = refresh
	}

	writeData(w, http.StatusOK, resp)
}

// trackSession запоминает выданный refresh токен
func (s *Server) trackSession(refresh string) error {
	claims, err := s.tokens.ValidateRefreshToken(refresh)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[claims.ID] = true
	s.mu.Unlock()
	return nil
}

// handleMe возвращает текущего пользователя
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	s.mu.Lock()
	user, ok := s.users[claims.Email]
	s.mu.Unlock()
	if !ok {
		writeError(w, errors.New(errors.ErrUnauthorized, "User not found"))
		return
	}
	writeData(w, http.StatusOK, user.User)
}

// handleLogout отзывает refresh токен
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	if req.RefreshToken != "" {
		if claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken); err == nil {
			s.mu.Lock()
			delete(s.sessions, claims.ID)
			s.mu.Unlock()
		}
	}
	writeData(w, http.StatusOK, nil)
}

// handleUsers возвращает пользователей панели
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]api.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.User)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeData(w, http.StatusOK, users)
}
