package events

import "time"

// Preço de um mercado em odds americanas. Point carrega a linha
// (spread/total); nil para moneyline.
type Price struct {
	Home  int      `json:"home"`
	Away  int      `json:"away"`
	Point *float64 `json:"point,omitempty"`
}

// Evento publicado no tópico "odds_updates" a cada linha atualizada pelo poller.
type OddsUpdate struct {
	GameID    string    `json:"game_id"`
	SportKey  string    `json:"sport_key"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Market    string    `json:"market"` // "moneyline" | "spread" | "total"
	Bookmaker string    `json:"bookmaker"`
	Price     Price     `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"` // ex: "the-odds-api"
}
