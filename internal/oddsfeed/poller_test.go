package oddsfeed

import "testing"

func testAPIGame() *APIGame {
	return &APIGame{
		ID:       "g1",
		SportKey: "americanfootball_nfl",
		HomeTeam: "Kansas City Chiefs",
		AwayTeam: "Buffalo Bills",
	}
}

func TestMapLineMoneyline(t *testing.T) {
	mk := APIMarket{Key: "h2h", Outcomes: []APIOutcome{
		{Name: "Kansas City Chiefs", Price: -150},
		{Name: "Buffalo Bills", Price: 130},
	}}
	l, ok := mapLine(testAPIGame(), "draftkings", mk)
	if !ok {
		t.Fatal("mapLine returned !ok")
	}
	if l.Market != MarketMoneyline || l.HomePrice != -150 || l.AwayPrice != 130 {
		t.Errorf("unexpected line: %+v", l)
	}
	if l.Point != nil {
		t.Errorf("moneyline line has point %v", *l.Point)
	}
}

func TestMapLineSpread(t *testing.T) {
	pt := -6.5
	opp := 6.5
	mk := APIMarket{Key: "spreads", Outcomes: []APIOutcome{
		{Name: "Kansas City Chiefs", Price: -110, Point: &pt},
		{Name: "Buffalo Bills", Price: -110, Point: &opp},
	}}
	l, ok := mapLine(testAPIGame(), "fanduel", mk)
	if !ok {
		t.Fatal("mapLine returned !ok")
	}
	// o point gravado é o handicap da casa
	if l.Market != MarketSpread || l.Point == nil || *l.Point != -6.5 {
		t.Errorf("unexpected line: %+v", l)
	}
}

func TestMapLineTotal(t *testing.T) {
	pt := 47.5
	mk := APIMarket{Key: "totals", Outcomes: []APIOutcome{
		{Name: "Over", Price: -105, Point: &pt},
		{Name: "Under", Price: -115, Point: &pt},
	}}
	l, ok := mapLine(testAPIGame(), "draftkings", mk)
	if !ok {
		t.Fatal("mapLine returned !ok")
	}
	// convenção: over em HomePrice, under em AwayPrice
	if l.HomePrice != -105 || l.AwayPrice != -115 || *l.Point != 47.5 {
		t.Errorf("unexpected line: %+v", l)
	}
}

func TestMapLineIncomplete(t *testing.T) {
	// mercado desconhecido
	if _, ok := mapLine(testAPIGame(), "dk", APIMarket{Key: "player_props"}); ok {
		t.Error("unknown market should be skipped")
	}

	// h2h com um lado só
	mk := APIMarket{Key: "h2h", Outcomes: []APIOutcome{
		{Name: "Kansas City Chiefs", Price: -150},
	}}
	if _, ok := mapLine(testAPIGame(), "dk", mk); ok {
		t.Error("one-sided h2h should be skipped")
	}

	// spread sem point
	mk = APIMarket{Key: "spreads", Outcomes: []APIOutcome{
		{Name: "Kansas City Chiefs", Price: -110},
		{Name: "Buffalo Bills", Price: -110},
	}}
	if _, ok := mapLine(testAPIGame(), "dk", mk); ok {
		t.Error("spread without point should be skipped")
	}
}

func TestExtractScores(t *testing.T) {
	sc := &APIScore{
		HomeTeam: "Boston Celtics",
		AwayTeam: "Miami Heat",
		Scores: []APIScoreEntry{
			{Name: "Boston Celtics", Score: "112"},
			{Name: "Miami Heat", Score: "104"},
		},
	}
	home, away, ok := extractScores(sc)
	if !ok {
		t.Fatal("extractScores returned !ok")
	}
	if *home != 112 || *away != 104 {
		t.Errorf("got %d/%d, want 112/104", *home, *away)
	}
}

func TestExtractScoresIncomplete(t *testing.T) {
	// feed sem placar do visitante
	sc := &APIScore{
		HomeTeam: "Boston Celtics",
		AwayTeam: "Miami Heat",
		Scores: []APIScoreEntry{
			{Name: "Boston Celtics", Score: "112"},
		},
	}
	if _, _, ok := extractScores(sc); ok {
		t.Error("missing away score should return !ok")
	}

	// placar não numérico
	sc.Scores = append(sc.Scores, APIScoreEntry{Name: "Miami Heat", Score: "n/a"})
	if _, _, ok := extractScores(sc); ok {
		t.Error("non-numeric score should return !ok")
	}
}
