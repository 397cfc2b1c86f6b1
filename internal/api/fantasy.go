package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/fantasy"
)

// linkFantasyAccount vincula uma conta Sleeper e dispara a primeira sync.
func (s *Server) linkFantasyAccount(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req linkAccountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	a, err := s.Syncer.Link(r.Context(), claims.UserID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, fantasy.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, fantasy.ErrAlreadyLinked):
			writeError(w, http.StatusConflict, err.Error())
		default:
			s.Log.Error("link fantasy account", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not link account")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toFantasyAccountResponse(a))
}

// listFantasyAccounts lista as contas vinculadas.
func (s *Server) listFantasyAccounts(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	accounts, err := s.Fantasy.ListAccounts(r.Context(), claims.UserID)
	if err != nil {
		s.Log.Error("list fantasy accounts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list accounts")
		return
	}

	out := make([]fantasyAccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toFantasyAccountResponse(&accounts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// unlinkFantasyAccount remove o vínculo; ligas/elencos caem em cascata.
func (s *Server) unlinkFantasyAccount(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if err := s.Fantasy.DeleteAccount(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, fantasy.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("unlink fantasy account", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not unlink account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listFantasyLeagues retorna as ligas sincronizadas do usuário.
func (s *Server) listFantasyLeagues(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	leagues, err := s.Fantasy.ListLeaguesByUser(r.Context(), claims.UserID)
	if err != nil {
		s.Log.Error("list fantasy leagues", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list leagues")
		return
	}

	out := make([]fantasyLeagueResponse, 0, len(leagues))
	for _, l := range leagues {
		out = append(out, fantasyLeagueResponse{
			ID:           l.ID,
			Name:         l.Name,
			Season:       l.Season,
			TotalRosters: l.TotalRosters,
			UpdatedAt:    l.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// listFantasyRosters retorna os elencos de uma liga em ordem de classificação.
func (s *Server) listFantasyRosters(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	leagueID := chi.URLParam(r, "id")

	// garante que a liga é do usuário antes de expor os elencos
	l, err := s.Fantasy.GetLeagueForUser(r.Context(), claims.UserID, leagueID)
	if err != nil {
		if errors.Is(err, fantasy.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("get fantasy league", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load league")
		return
	}

	rosters, err := s.Fantasy.ListRosters(r.Context(), l.ID)
	if err != nil {
		s.Log.Error("list fantasy rosters", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list rosters")
		return
	}

	out := make([]fantasyRosterResponse, 0, len(rosters))
	for _, ro := range rosters {
		players := ro.Players
		if players == nil {
			players = []string{}
		}
		out = append(out, fantasyRosterResponse{
			ExternalRosterID: ro.ExternalRosterID,
			OwnerName:        ro.OwnerName,
			Wins:             ro.Wins,
			Losses:           ro.Losses,
			Ties:             ro.Ties,
			PointsFor:        ro.PointsFor,
			Players:          players,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// syncFantasyLeague re-sincroniza uma liga sob demanda.
func (s *Server) syncFantasyLeague(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if err := s.Syncer.SyncLeague(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, fantasy.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("sync fantasy league", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not sync league")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}
