package topics

const (
	// Odds
	OddsUpdates = "odds_updates"

	// Games
	GameFinal = "game_final"

	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// DLQs
	BetSettledDLQ = "bet_settled_dlq"
)
