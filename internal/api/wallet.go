package api

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// getWallet retorna saldo e extrato recente, criando a carteira se preciso.
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	wal, err := s.Wallet.GetOrCreate(r.Context(), claims.UserID)
	if err != nil {
		s.Log.Error("wallet get", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load wallet")
		return
	}

	ledger, err := s.Wallet.ListLedger(r.Context(), claims.UserID, 50)
	if err != nil {
		s.Log.Error("wallet ledger", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load ledger")
		return
	}

	writeJSON(w, http.StatusOK, toWalletResponse(wal, ledger))
}

// deposit credita o bankroll simulado.
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req depositRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	if _, err := s.Wallet.GetOrCreate(r.Context(), claims.UserID); err != nil {
		s.Log.Error("wallet get", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load wallet")
		return
	}

	balance, err := s.Wallet.Deposit(r.Context(), claims.UserID, req.AmountCents, uuid.NewString())
	if err != nil {
		s.Log.Error("wallet deposit", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not deposit")
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{BalanceCents: balance})
}
