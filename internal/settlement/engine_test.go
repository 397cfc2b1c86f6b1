package settlement

import (
	"errors"
	"testing"

	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/games"
)

func finalGame(home, away int) *games.Game {
	return &games.Game{
		ID:        "g1",
		HomeTeam:  "Kansas City Chiefs",
		AwayTeam:  "Buffalo Bills",
		HomeScore: &home,
		AwayScore: &away,
		Status:    games.StatusFinal,
	}
}

func fp(v float64) *float64 { return &v }

func TestGradeMoneyline(t *testing.T) {
	cases := []struct {
		name       string
		selection  string
		home, away int
		want       string
	}{
		{"home wins", "Kansas City Chiefs", 27, 20, bets.StatusWon},
		{"home loses", "Kansas City Chiefs", 20, 27, bets.StatusLost},
		{"away wins", "Buffalo Bills", 20, 27, bets.StatusWon},
		{"tie pushes", "Kansas City Chiefs", 21, 21, bets.StatusPushed},
		{"case-insensitive selection", "KANSAS CITY CHIEFS", 27, 20, bets.StatusWon},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &bets.Bet{Market: bets.MarketMoneyline, Selection: tc.selection}
			got, err := Grade(b, finalGame(tc.home, tc.away))
			if err != nil {
				t.Fatalf("Grade: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGradeMoneylineNormalizesTeamNames(t *testing.T) {
	home, away := 2, 1
	g := &games.Game{
		HomeTeam:  "São Paulo",
		AwayTeam:  "Grêmio",
		HomeScore: &home,
		AwayScore: &away,
		Status:    games.StatusFinal,
	}
	b := &bets.Bet{Market: bets.MarketMoneyline, Selection: "sao paulo"}
	got, err := Grade(b, g)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if got != bets.StatusWon {
		t.Errorf("got %s, want won", got)
	}
}

func TestGradeSpread(t *testing.T) {
	cases := []struct {
		name       string
		selection  string
		point      float64
		home, away int
		want       string
	}{
		// favorito -6.5: precisa vencer por 7+
		{"favorite covers", "Kansas City Chiefs", -6.5, 30, 20, bets.StatusWon},
		{"favorite fails to cover", "Kansas City Chiefs", -6.5, 24, 20, bets.StatusLost},
		// azarão +6.5: pode perder por até 6
		{"underdog covers losing", "Buffalo Bills", 6.5, 24, 20, bets.StatusWon},
		{"underdog blown out", "Buffalo Bills", 6.5, 31, 20, bets.StatusLost},
		// linha inteira pode empatar
		{"whole line pushes", "Kansas City Chiefs", -7, 27, 20, bets.StatusPushed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &bets.Bet{Market: bets.MarketSpread, Selection: tc.selection, Point: fp(tc.point)}
			got, err := Grade(b, finalGame(tc.home, tc.away))
			if err != nil {
				t.Fatalf("Grade: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGradeTotal(t *testing.T) {
	cases := []struct {
		name       string
		selection  string
		point      float64
		home, away int
		want       string
	}{
		{"over hits", bets.SelectionOver, 47.5, 27, 24, bets.StatusWon},
		{"over misses", bets.SelectionOver, 47.5, 20, 17, bets.StatusLost},
		{"under hits", bets.SelectionUnder, 47.5, 20, 17, bets.StatusWon},
		{"under misses", bets.SelectionUnder, 47.5, 27, 24, bets.StatusLost},
		{"exact total pushes over", bets.SelectionOver, 47, 27, 20, bets.StatusPushed},
		{"exact total pushes under", bets.SelectionUnder, 47, 27, 20, bets.StatusPushed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &bets.Bet{Market: bets.MarketTotal, Selection: tc.selection, Point: fp(tc.point)}
			got, err := Grade(b, finalGame(tc.home, tc.away))
			if err != nil {
				t.Fatalf("Grade: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGradeRefusesMissingScores(t *testing.T) {
	g := &games.Game{HomeTeam: "A", AwayTeam: "B", Status: games.StatusFinal}
	b := &bets.Bet{Market: bets.MarketMoneyline, Selection: "A"}
	if _, err := Grade(b, g); !errors.Is(err, ErrScoresMissing) {
		t.Errorf("expected ErrScoresMissing, got %v", err)
	}

	// jogo ainda em andamento também não liquida
	h, a := 10, 7
	g2 := &games.Game{HomeTeam: "A", AwayTeam: "B", HomeScore: &h, AwayScore: &a, Status: games.StatusInProgress}
	if _, err := Grade(b, g2); !errors.Is(err, ErrScoresMissing) {
		t.Errorf("expected ErrScoresMissing for in_progress, got %v", err)
	}
}

func TestGradeUnknownSelection(t *testing.T) {
	b := &bets.Bet{Market: bets.MarketMoneyline, Selection: "Denver Broncos"}
	if _, err := Grade(b, finalGame(20, 10)); !errors.Is(err, ErrSelectionUnknown) {
		t.Errorf("expected ErrSelectionUnknown, got %v", err)
	}
}

func TestGradeSpreadRequiresPoint(t *testing.T) {
	b := &bets.Bet{Market: bets.MarketSpread, Selection: "Kansas City Chiefs"}
	if _, err := Grade(b, finalGame(20, 10)); !errors.Is(err, ErrPointMissing) {
		t.Errorf("expected ErrPointMissing, got %v", err)
	}
}

func TestResultAmount(t *testing.T) {
	b := &bets.Bet{StakeCents: 10_00, PotentialPayoutCents: 25_00}
	if got := ResultAmount(b, bets.StatusWon); got != 25_00 {
		t.Errorf("won: got %d", got)
	}
	if got := ResultAmount(b, bets.StatusPushed); got != 10_00 {
		t.Errorf("pushed: got %d", got)
	}
	if got := ResultAmount(b, bets.StatusLost); got != 0 {
		t.Errorf("lost: got %d", got)
	}
}

func TestGradeParlay(t *testing.T) {
	leg := func(status string) bets.Bet { return bets.Bet{Status: status} }

	// perna pendente segura o parlay
	if _, _, done := GradeParlay([]bets.Bet{leg(bets.StatusWon), leg(bets.StatusPending)}); done {
		t.Error("parlay with pending leg should not be done")
	}

	// qualquer derrota perde, mesmo com perna pendente já irrelevante? não:
	// derrota decide na hora
	status, _, done := GradeParlay([]bets.Bet{leg(bets.StatusWon), leg(bets.StatusLost)})
	if !done || status != bets.StatusLost {
		t.Errorf("got %s done=%v, want lost", status, done)
	}

	status, pushed, done := GradeParlay([]bets.Bet{leg(bets.StatusWon), leg(bets.StatusPushed)})
	if !done || status != bets.StatusWon {
		t.Errorf("got %s done=%v, want won", status, done)
	}
	if !pushed[1] {
		t.Error("leg 1 should be marked pushed")
	}

	status, _, done = GradeParlay([]bets.Bet{leg(bets.StatusPushed), leg(bets.StatusPushed)})
	if !done || status != bets.StatusPushed {
		t.Errorf("got %s done=%v, want pushed", status, done)
	}
}

func TestParlayResultAmount(t *testing.T) {
	p := &bets.Parlay{StakeCents: 100_00}
	legs := []bets.Bet{
		{Odds: 100, Status: bets.StatusWon},     // 2.0
		{Odds: -100, Status: bets.StatusPushed}, // neutralizada
	}

	got := ParlayResultAmount(p, legs, bets.StatusWon, map[int]bool{1: true})
	if got != 200_00 {
		t.Errorf("won with pushed leg: got %d, want 20000", got)
	}

	if got := ParlayResultAmount(p, legs, bets.StatusPushed, nil); got != 100_00 {
		t.Errorf("pushed: got %d", got)
	}
	if got := ParlayResultAmount(p, legs, bets.StatusLost, nil); got != 0 {
		t.Errorf("lost: got %d", got)
	}
}
