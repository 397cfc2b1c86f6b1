package picks

import "time"

// Pick é um palpite curado publicado pela casa (yetai_bets).
// TierRequirement controla quem enxerga: free vê só free, pro/elite veem tudo.
type Pick struct {
	ID              string
	SportKey        string
	GameID          *string
	Title           string
	Description     string
	Market          string
	Selection       string
	Point           *float64
	Odds            int
	Confidence      int // 0-100
	TierRequirement string
	Status          string
	ResultNote      string
	CreatedBy       string
	CreatedAt       time.Time
	SettledAt       *time.Time
}
