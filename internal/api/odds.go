package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/oddsfeed"
)

// listSports expõe o catálogo de esportes ativos do poller.
func (s *Server) listSports(w http.ResponseWriter, r *http.Request) {
	out := make([]sportResponse, 0)
	for _, sp := range s.Catalog.Active() {
		out = append(out, sportResponse{
			Key:     sp.Key,
			Title:   sp.Title,
			Markets: sp.Markets,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// listOdds lista os próximos jogos de um esporte com as linhas correntes.
// Cache-first por jogo; miss cai pro banco e reaquece o snapshot.
func (s *Server) listOdds(w http.ResponseWriter, r *http.Request) {
	sportKey := chi.URLParam(r, "sport")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	upcoming, err := s.Games.ListUpcoming(r.Context(), sportKey, limit)
	if err != nil {
		s.Log.Error("list upcoming games", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list games")
		return
	}

	// primeiro tenta o snapshot; os que faltarem saem do banco numa query só
	byGame := make(map[string][]oddsfeed.Line, len(upcoming))
	var misses []string
	for i := range upcoming {
		lines, ok, err := s.Snap.Get(r.Context(), upcoming[i].ID)
		if err != nil || !ok {
			misses = append(misses, upcoming[i].ID)
			continue
		}
		byGame[upcoming[i].ID] = lines
	}

	if len(misses) > 0 {
		fromDB, err := s.Lines.ListForGames(r.Context(), misses)
		if err != nil {
			s.Log.Error("list lines", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not list odds")
			return
		}
		for gameID, lines := range fromDB {
			if err := s.Snap.Set(r.Context(), gameID, lines); err != nil {
				s.Log.Warn("snapshot refill", zap.String("gameId", gameID), zap.Error(err))
			}
			byGame[gameID] = lines
		}
	}

	out := make([]gameResponse, 0, len(upcoming))
	for i := range upcoming {
		out = append(out, toGameResponse(&upcoming[i], byGame[upcoming[i].ID]))
	}
	writeJSON(w, http.StatusOK, out)
}

// getGame retorna um jogo com placar e linhas (cache-first).
func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	g, err := s.Games.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, games.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("get game", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load game")
		return
	}

	lines, ok, err := s.Snap.Get(r.Context(), id)
	if err != nil || !ok {
		lines, err = s.Lines.ListByGame(r.Context(), id)
		if err != nil {
			s.Log.Error("list lines", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not load odds")
			return
		}
		if err := s.Snap.Set(r.Context(), id, lines); err != nil {
			s.Log.Warn("snapshot refill", zap.String("gameId", id), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, toGameResponse(g, lines))
}
