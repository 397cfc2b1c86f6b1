package bets

import "time"

// Status de uma aposta. Transições só acontecem na liquidação:
// pending -> won | lost | pushed, sem volta.
const (
	StatusPending = "pending"
	StatusWon     = "won"
	StatusLost    = "lost"
	StatusPushed  = "pushed"
)

// Mercados aceitos.
const (
	MarketMoneyline = "moneyline"
	MarketSpread    = "spread"
	MarketTotal     = "total"
)

// Seleções do mercado de total. Nos demais mercados a seleção é o nome do time.
const (
	SelectionOver  = "over"
	SelectionUnder = "under"
)

// ValidMarket informa se o mercado é um dos três aceitos.
func ValidMarket(m string) bool {
	return m == MarketMoneyline || m == MarketSpread || m == MarketTotal
}

// Bet é uma aposta simples (ou uma perna de parlay, quando ParlayID != nil).
// Odds e point são congelados no momento da aposta.
type Bet struct {
	ID                   string
	UserID               string
	GameID               string
	Market               string
	Selection            string
	Point                *float64
	Odds                 int // odds americanas
	StakeCents           int64
	PotentialPayoutCents int64
	Status               string
	ResultAmountCents    *int64
	ParlayID             *string
	PlacedAt             time.Time
	SettledAt            *time.Time
}

// Parlay agrupa pernas apostadas juntas; paga só se nenhuma perna perder.
type Parlay struct {
	ID                   string
	UserID               string
	StakeCents           int64
	CombinedOdds         int // odds americanas combinadas
	PotentialPayoutCents int64
	Status               string
	ResultAmountCents    *int64
	PlacedAt             time.Time
	SettledAt            *time.Time
}

// Stats agrega o desempenho do apostador.
type Stats struct {
	TotalBets         int     `json:"total_bets"`
	PendingBets       int     `json:"pending_bets"`
	WonBets           int     `json:"won_bets"`
	LostBets          int     `json:"lost_bets"`
	PushedBets        int     `json:"pushed_bets"`
	TotalWageredCents int64   `json:"total_wagered_cents"`
	TotalWonCents     int64   `json:"total_won_cents"`
	TotalLostCents    int64   `json:"total_lost_cents"`
	NetProfitCents    int64   `json:"net_profit_cents"`
	WinRate           float64 `json:"win_rate"` // won / (won + lost)
}
