package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/picks"
	"github.com/benyetra/yetai-backend/internal/users"
)

// listPicks retorna os palpites curados visíveis pro tier do usuário.
func (s *Server) listPicks(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := s.Picks.ListVisible(r.Context(), claims.Tier, limit)
	if err != nil {
		s.Log.Error("list picks", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list picks")
		return
	}

	out := make([]pickResponse, 0, len(list))
	for i := range list {
		out = append(out, toPickResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// adminCreatePick publica um novo palpite curado.
func (s *Server) adminCreatePick(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req createPickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Title == "" || req.SportKey == "" || req.Selection == "" {
		writeError(w, http.StatusBadRequest, "title, sport_key and selection are required")
		return
	}
	if !bets.ValidMarket(req.Market) {
		writeError(w, http.StatusBadRequest, "unknown market")
		return
	}
	if !bets.ValidAmericanOdds(req.Odds) {
		writeError(w, http.StatusBadRequest, bets.ErrInvalidOdds.Error())
		return
	}
	if req.Confidence < 0 || req.Confidence > 100 {
		writeError(w, http.StatusBadRequest, "confidence must be between 0 and 100")
		return
	}
	if req.TierRequirement == "" {
		req.TierRequirement = users.TierFree
	}
	if !users.ValidTier(req.TierRequirement) {
		writeError(w, http.StatusBadRequest, "unknown tier requirement")
		return
	}

	pick := &picks.Pick{
		SportKey:        req.SportKey,
		GameID:          req.GameID,
		Title:           req.Title,
		Description:     req.Description,
		Market:          req.Market,
		Selection:       req.Selection,
		Point:           req.Point,
		Odds:            req.Odds,
		Confidence:      req.Confidence,
		TierRequirement: req.TierRequirement,
		CreatedBy:       claims.UserID,
	}
	id, err := s.Picks.Create(r.Context(), pick)
	if err != nil {
		s.Log.Error("create pick", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create pick")
		return
	}

	created, err := s.Picks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load pick")
		return
	}
	writeJSON(w, http.StatusCreated, toPickResponse(created))
}

// adminSettlePick liquida manualmente um pick (won|lost|pushed).
func (s *Server) adminSettlePick(w http.ResponseWriter, r *http.Request) {
	var req settlePickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Status != bets.StatusWon && req.Status != bets.StatusLost && req.Status != bets.StatusPushed {
		writeError(w, http.StatusBadRequest, "status must be won, lost or pushed")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.Picks.Settle(r.Context(), id, req.Status, req.Note); err != nil {
		switch {
		case errors.Is(err, picks.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, picks.ErrAlreadySettled):
			writeError(w, http.StatusConflict, err.Error())
		default:
			s.Log.Error("settle pick", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not settle pick")
		}
		return
	}

	updated, err := s.Picks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load pick")
		return
	}
	writeJSON(w, http.StatusOK, toPickResponse(updated))
}

// adminDeletePick faz soft delete do pick.
func (s *Server) adminDeletePick(w http.ResponseWriter, r *http.Request) {
	if err := s.Picks.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, picks.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Log.Error("delete pick", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not delete pick")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
