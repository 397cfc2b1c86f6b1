package wallet

import "time"

// Wallet é o bankroll simulado de um usuário, em centavos.
type Wallet struct {
	ID           string
	UserID       string
	BalanceCents int64
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Operações registradas no ledger.
const (
	OpCredit  = "CREDIT"  // depósito / saldo inicial
	OpReserve = "RESERVE" // bloqueio do stake ao apostar
	OpDebit   = "DEBIT"   // stake consumido (aposta perdida)
	OpRefund  = "REFUND"  // stake devolvido (push)
	OpPayout  = "PAYOUT"  // stake + prêmio (aposta ganha)
)

// LedgerEntry é uma linha do extrato da carteira.
type LedgerEntry struct {
	ID            int64
	WalletID      string
	OperationType string
	AmountCents   int64
	Description   string
	RelatedBetID  *string
	CreatedAt     time.Time
}
