package events

import "time"

// Evento emitido pelo odds-poller quando um jogo transiciona para "final".
// Emitido no máximo uma vez por jogo (guardado pela transição de status).
type GameFinal struct {
	GameID     string    `json:"game_id"`
	SportKey   string    `json:"sport_key"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	FinishedAt time.Time `json:"finished_at"`
}
