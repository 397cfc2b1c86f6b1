// Package settlement lê apostas pendentes de jogos encerrados e aplica as
// regras de liquidação dos três mercados.
package settlement

import (
	"errors"
	"fmt"

	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/teams"
)

var (
	// ErrScoresMissing: jogo final sem placar completo. Nunca liquidamos
	// no escuro; a aposta fica pendente até o feed corrigir.
	ErrScoresMissing = errors.New("final game is missing scores")

	// ErrSelectionUnknown: a seleção não casa com nenhum dos dois times.
	ErrSelectionUnknown = errors.New("selection matches neither team")

	// ErrPointMissing: spread/total sem linha gravada.
	ErrPointMissing = errors.New("market requires a point")
)

// eps absorve ruído de float em linhas como 47.5.
const eps = 1e-9

// Grade aplica a regra do mercado da aposta sobre o placar final e devolve
// won, lost ou pushed. Não toca em banco nem carteira.
func Grade(b *bets.Bet, g *games.Game) (string, error) {
	if !g.Final() {
		return "", ErrScoresMissing
	}
	home := float64(*g.HomeScore)
	away := float64(*g.AwayScore)

	switch b.Market {
	case bets.MarketMoneyline:
		sel, opp, err := sideScores(b.Selection, g, home, away)
		if err != nil {
			return "", err
		}
		return compare(sel, opp), nil

	case bets.MarketSpread:
		if b.Point == nil {
			return "", ErrPointMissing
		}
		sel, opp, err := sideScores(b.Selection, g, home, away)
		if err != nil {
			return "", err
		}
		// o point congelado na aposta é o handicap do time selecionado
		return compare(sel+*b.Point, opp), nil

	case bets.MarketTotal:
		if b.Point == nil {
			return "", ErrPointMissing
		}
		total := home + away
		switch b.Selection {
		case bets.SelectionOver:
			return compare(total, *b.Point), nil
		case bets.SelectionUnder:
			return compare(*b.Point, total), nil
		default:
			return "", fmt.Errorf("%w: %q", ErrSelectionUnknown, b.Selection)
		}

	default:
		return "", fmt.Errorf("unknown market %q", b.Market)
	}
}

// ResultAmount devolve o crédito na carteira para cada desfecho:
// prêmio total na vitória, stake de volta no push, zero na derrota.
func ResultAmount(b *bets.Bet, outcome string) int64 {
	switch outcome {
	case bets.StatusWon:
		return b.PotentialPayoutCents
	case bets.StatusPushed:
		return b.StakeCents
	default:
		return 0
	}
}

// sideScores resolve (placar do selecionado, placar do oponente) casando a
// seleção com os nomes normalizados dos times.
func sideScores(selection string, g *games.Game, home, away float64) (sel, opp float64, err error) {
	switch {
	case teams.Equal(selection, g.HomeTeam):
		return home, away, nil
	case teams.Equal(selection, g.AwayTeam):
		return away, home, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q vs %s/%s", ErrSelectionUnknown, selection, g.HomeTeam, g.AwayTeam)
	}
}

// compare traduz a diferença em desfecho, com tolerância pra float.
func compare(a, b float64) string {
	switch {
	case a-b > eps:
		return bets.StatusWon
	case b-a > eps:
		return bets.StatusLost
	default:
		return bets.StatusPushed
	}
}

// GradeParlay resolve o status de um parlay a partir das pernas liquidadas.
// done=false enquanto houver perna pendente. Regras: qualquer derrota perde;
// todas pushed empurra; senão ganha com as pernas pushed precificadas a 1.0.
func GradeParlay(legs []bets.Bet) (status string, pushedLegs map[int]bool, done bool) {
	pushedLegs = make(map[int]bool)
	allPushed := true
	for i := range legs {
		switch legs[i].Status {
		case bets.StatusPending:
			return "", nil, false
		case bets.StatusLost:
			return bets.StatusLost, nil, true
		case bets.StatusPushed:
			pushedLegs[i] = true
		case bets.StatusWon:
			allPushed = false
		}
	}
	if allPushed {
		return bets.StatusPushed, pushedLegs, true
	}
	return bets.StatusWon, pushedLegs, true
}

// ParlayResultAmount calcula o crédito do parlay liquidado.
func ParlayResultAmount(p *bets.Parlay, legs []bets.Bet, status string, pushedLegs map[int]bool) int64 {
	switch status {
	case bets.StatusWon:
		odds := make([]int, len(legs))
		for i := range legs {
			odds[i] = legs[i].Odds
		}
		return bets.ParlayPayout(p.StakeCents, odds, pushedLegs)
	case bets.StatusPushed:
		return p.StakeCents
	default:
		return 0
	}
}
