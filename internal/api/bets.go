package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/wallet"
)

// placeBet executa o fluxo completo de aposta simples.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req placeBetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	b, err := s.Bets.Place(r.Context(), claims.UserID, bets.PlaceBetInput{
		GameID:     req.GameID,
		Market:     req.Market,
		Selection:  req.Selection,
		Point:      req.Point,
		Odds:       req.Odds,
		StakeCents: req.StakeCents,
	})
	if err != nil {
		s.writeBetError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBetResponse(b))
}

// placeParlay valida e registra um parlay.
func (s *Server) placeParlay(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req placeParlayRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	legs := make([]bets.ParlayLegInput, 0, len(req.Legs))
	for _, l := range req.Legs {
		legs = append(legs, bets.ParlayLegInput{
			GameID:    l.GameID,
			Market:    l.Market,
			Selection: l.Selection,
			Point:     l.Point,
			Odds:      l.Odds,
		})
	}

	parlay, plegs, err := s.Bets.PlaceParlay(r.Context(), claims.UserID, req.StakeCents, legs)
	if err != nil {
		s.writeBetError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toParlayResponse(parlay, plegs))
}

// writeBetError mapeia os erros do fluxo de aposta para HTTP.
func (s *Server) writeBetError(w http.ResponseWriter, err error) {
	var drift *bets.OddsDriftError
	switch {
	case errors.As(err, &drift):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":        "odds changed",
			"market":       drift.Market,
			"current_odds": drift.CurrentOdds,
		})
	case errors.Is(err, bets.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, games.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, bets.ErrGameFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, wallet.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.Log.Error("place bet", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not place bet")
	}
}

// listBets pagina as apostas do usuário, com filtro opcional de status.
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	status := r.URL.Query().Get("status")
	if status != "" && status != bets.StatusPending && status != bets.StatusWon &&
		status != bets.StatusLost && status != bets.StatusPushed {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := s.BetRead.ListByUser(r.Context(), claims.UserID, status, limit, offset)
	if err != nil {
		s.Log.Error("list bets", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list bets")
		return
	}

	out := make([]betResponse, 0, len(list))
	for i := range list {
		out = append(out, toBetResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// getBet retorna uma aposta do próprio usuário; de terceiros é 404.
func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	b, err := s.BetRead.GetForUser(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, bets.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("get bet", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load bet")
		return
	}
	writeJSON(w, http.StatusOK, toBetResponse(b))
}

// getParlay retorna um parlay do usuário com as pernas.
func (s *Server) getParlay(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	p, legs, err := s.BetRead.GetParlayForUser(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, bets.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("get parlay", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load parlay")
		return
	}
	writeJSON(w, http.StatusOK, toParlayResponse(p, legs))
}

// betStats agrega o desempenho do usuário.
func (s *Server) betStats(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	stats, err := s.BetRead.StatsByUser(r.Context(), claims.UserID)
	if err != nil {
		s.Log.Error("bet stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// deleteBet existe pra contratar o comportamento: aposta é imutável depois
// de registrada, só a liquidação muda o status.
func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if _, err := s.BetRead.GetForUser(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, bets.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load bet")
		return
	}
	writeError(w, http.StatusConflict, "bets are immutable once placed")
}
