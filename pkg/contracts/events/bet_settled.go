package events

import "time"

// Evento emitido pelo settlement-worker após liquidar uma aposta.
type BetSettled struct {
	BetID             string    `json:"bet_id"`
	UserID            string    `json:"user_id"`
	GameID            string    `json:"game_id"`
	Result            string    `json:"result"` // "won" | "lost" | "pushed"
	StakeCents        int64     `json:"stake_cents"`
	ResultAmountCents int64     `json:"result_amount_cents"` // crédito na carteira (0 em derrota)
	Ts                time.Time `json:"ts"`
}
