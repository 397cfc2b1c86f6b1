package games

import "time"

// Status de um jogo. Transição para final é monotônica.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
)

// Game é o evento esportivo persistido, com id do provedor de odds.
type Game struct {
	ID           string
	SportKey     string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	HomeScore    *int
	AwayScore    *int
	Status       string
	UpdatedAt    time.Time
}

// Final informa se o jogo terminou com ambos os placares presentes.
func (g *Game) Final() bool {
	return g.Status == StatusFinal && g.HomeScore != nil && g.AwayScore != nil
}
