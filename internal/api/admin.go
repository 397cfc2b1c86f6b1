package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/users"
)

// adminListUsers lista todos os usuários, inclusive ocultos.
func (s *Server) adminListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.Users.List(r.Context())
	if err != nil {
		s.Log.Error("admin list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list users")
		return
	}

	out := make([]userResponse, 0, len(list))
	for i := range list {
		out = append(out, toUserResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// adminSetVisibility esconde/reexibe uma conta. Conta oculta não autentica.
func (s *Server) adminSetVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hidden bool `json:"hidden"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.Users.SetHidden(r.Context(), id, req.Hidden); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("set visibility", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "hidden": req.Hidden})
}

// adminSetTier troca o tier de assinatura de um usuário.
func (s *Server) adminSetTier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier string `json:"tier"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !users.ValidTier(req.Tier) {
		writeError(w, http.StatusBadRequest, "tier must be free, pro or elite")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.Users.SetTier(r.Context(), id, req.Tier); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("set tier", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "tier": req.Tier})
}
