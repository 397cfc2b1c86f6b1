package bets

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("bet not found")

// Postgres implementa a persistência de apostas e parlays.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const betColumns = `id, user_id, game_id, market, selection, point, odds, stake_cents,
	potential_payout_cents, status, result_amount_cents, parlay_id, placed_at, settled_at`

func scanBet(row interface{ Scan(...any) error }) (*Bet, error) {
	var b Bet
	err := row.Scan(&b.ID, &b.UserID, &b.GameID, &b.Market, &b.Selection, &b.Point,
		&b.Odds, &b.StakeCents, &b.PotentialPayoutCents, &b.Status,
		&b.ResultAmountCents, &b.ParlayID, &b.PlacedAt, &b.SettledAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreatePending insere uma aposta simples com status pending.
// O id vem do serviço: ele é o external_ref da reserva na carteira.
func (p *Postgres) CreatePending(ctx context.Context, b *Bet) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, game_id, market, selection, point, odds, stake_cents, potential_payout_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending')`,
		b.ID, b.UserID, b.GameID, b.Market, b.Selection, b.Point, b.Odds,
		b.StakeCents, b.PotentialPayoutCents,
	)
	return err
}

// DeleteUnsettled remove uma aposta ainda pending. Compensação usada quando
// a reserva de saldo falha depois do insert; nunca exposto na API.
func (p *Postgres) DeleteUnsettled(ctx context.Context, betID string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM bets WHERE id=$1 AND status='pending'`, betID)
	return err
}

// CreateParlay insere o parlay e suas pernas numa única transação.
func (p *Postgres) CreateParlay(ctx context.Context, parlay *Parlay, legs []Bet) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO parlays (id, user_id, stake_cents, combined_odds, potential_payout_cents, status)
		VALUES ($1,$2,$3,$4,$5,'pending')`,
		parlay.ID, parlay.UserID, parlay.StakeCents, parlay.CombinedOdds,
		parlay.PotentialPayoutCents); err != nil {
		return err
	}

	for i := range legs {
		b := &legs[i]
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bets (id, user_id, game_id, market, selection, point, odds, stake_cents, potential_payout_cents, status, parlay_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending',$10)`,
			b.ID, b.UserID, b.GameID, b.Market, b.Selection, b.Point, b.Odds,
			b.StakeCents, b.PotentialPayoutCents, parlay.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteUnsettledParlay remove um parlay pending e suas pernas (compensação).
func (p *Postgres) DeleteUnsettledParlay(ctx context.Context, parlayID string) error {
	// pernas caem por ON DELETE CASCADE
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM parlays WHERE id=$1 AND status='pending'`, parlayID)
	return err
}

// GetForUser busca uma aposta do próprio usuário. Aposta de outro usuário
// é ErrNotFound, nunca 403: não vazamos existência.
func (p *Postgres) GetForUser(ctx context.Context, userID, betID string) (*Bet, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE id=$1 AND user_id=$2`, betID, userID)
	b, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// ListByUser pagina as apostas do usuário, mais recentes primeiro.
// status vazio lista todas.
func (p *Postgres) ListByUser(ctx context.Context, userID, status string, limit, offset int) ([]Bet, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets
		WHERE user_id=$1 AND ($2 = '' OR status=$2)
		ORDER BY placed_at DESC
		LIMIT $3 OFFSET $4`, userID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// GetParlayForUser busca um parlay do próprio usuário com suas pernas.
func (p *Postgres) GetParlayForUser(ctx context.Context, userID, parlayID string) (*Parlay, []Bet, error) {
	var pl Parlay
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, stake_cents, combined_odds, potential_payout_cents, status, result_amount_cents, placed_at, settled_at
		FROM parlays WHERE id=$1 AND user_id=$2`, parlayID, userID).
		Scan(&pl.ID, &pl.UserID, &pl.StakeCents, &pl.CombinedOdds,
			&pl.PotentialPayoutCents, &pl.Status, &pl.ResultAmountCents,
			&pl.PlacedAt, &pl.SettledAt)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE parlay_id=$1 ORDER BY placed_at`, parlayID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var legs []Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, nil, err
		}
		legs = append(legs, *b)
	}
	return &pl, legs, rows.Err()
}

// StatsByUser agrega o desempenho do usuário direto no banco.
func (p *Postgres) StatsByUser(ctx context.Context, userID string) (*Stats, error) {
	var s Stats
	err := p.db.QueryRowContext(ctx, `
		SELECT
		  COUNT(*),
		  COUNT(*) FILTER (WHERE status='pending'),
		  COUNT(*) FILTER (WHERE status='won'),
		  COUNT(*) FILTER (WHERE status='lost'),
		  COUNT(*) FILTER (WHERE status='pushed'),
		  COALESCE(SUM(stake_cents), 0),
		  COALESCE(SUM(result_amount_cents) FILTER (WHERE status='won'), 0),
		  COALESCE(SUM(stake_cents) FILTER (WHERE status='lost'), 0)
		FROM bets WHERE user_id=$1 AND parlay_id IS NULL`, userID).
		Scan(&s.TotalBets, &s.PendingBets, &s.WonBets, &s.LostBets, &s.PushedBets,
			&s.TotalWageredCents, &s.TotalWonCents, &s.TotalLostCents)
	if err != nil {
		return nil, err
	}

	// Lucro: prêmios recebidos menos stake das vencedoras e das perdidas.
	var wonStake int64
	if err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(stake_cents), 0) FROM bets
		WHERE user_id=$1 AND parlay_id IS NULL AND status='won'`, userID).
		Scan(&wonStake); err != nil {
		return nil, err
	}
	s.NetProfitCents = s.TotalWonCents - wonStake - s.TotalLostCents

	if settled := s.WonBets + s.LostBets; settled > 0 {
		s.WinRate = float64(s.WonBets) / float64(settled)
	}
	return &s, nil
}
