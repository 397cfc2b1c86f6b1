package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/auth"
	"github.com/benyetra/yetai-backend/internal/users"
)

// register cria a conta, emite o token e retorna o perfil.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email required")
		return
	}
	if len(req.Username) < 3 {
		writeError(w, http.StatusBadRequest, "username must be at least 3 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u := &users.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Tier:         users.TierFree,
	}
	id, err := s.Users.Create(r.Context(), u)
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.Log.Error("user create", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create account")
		return
	}

	// bankroll demo é criado junto com a conta
	if _, err := s.Wallet.GetOrCreate(r.Context(), id); err != nil {
		s.Log.Warn("initial wallet create", zap.String("userId", id), zap.Error(err))
	}

	created, err := s.Users.GetByID(r.Context(), id)
	if err != nil {
		s.Log.Error("user reload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load account")
		return
	}

	token, err := s.JWT.Generate(id, created.Tier, created.IsAdmin)
	if err != nil {
		s.Log.Error("token generate", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(created)})
}

// login valida credenciais e emite o token. Conta oculta não entra.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := s.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		s.Log.Error("user lookup", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if u.IsHidden {
		// conta oculta mantém os dados mas não autentica
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := s.JWT.Generate(u.ID, u.Tier, u.IsAdmin)
	if err != nil {
		s.Log.Error("token generate", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(u)})
}

// me retorna o perfil do usuário autenticado.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	u, err := s.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		s.Log.Error("user lookup", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load account")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// updateMe altera campos de perfil; campos omitidos ficam como estão.
func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req updateMeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := s.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load account")
		return
	}

	firstName, lastName, teams := u.FirstName, u.LastName, u.FavoriteTeams
	if req.FirstName != nil {
		firstName = *req.FirstName
	}
	if req.LastName != nil {
		lastName = *req.LastName
	}
	if req.FavoriteTeams != nil {
		teams = *req.FavoriteTeams
	}

	if err := s.Users.UpdateProfile(r.Context(), claims.UserID, firstName, lastName, teams); err != nil {
		s.Log.Error("profile update", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not update profile")
		return
	}

	updated, err := s.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load account")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}
