package events

type BetPlaced struct {
	BetID       string   `json:"bet_id"`
	UserID      string   `json:"user_id"`
	GameID      string   `json:"game_id"`
	Market      string   `json:"market"`
	Selection   string   `json:"selection"`
	Point       *float64 `json:"point,omitempty"`
	StakeCents  int64    `json:"stake_cents"`
	Odds        int      `json:"odds"` // odds americanas no momento da aposta
	ParlayID    string   `json:"parlay_id,omitempty"`
	ReservedRef string   `json:"reserved_ref"` // external_ref usado na reserva da carteira (betID)
	TsUnixMs    int64    `json:"ts_unix_ms"`
}
