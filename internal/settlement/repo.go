package settlement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/games"
)

var ErrNotFound = errors.New("not found")

// Postgres concentra as queries do worker de liquidação.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// PendingBet é uma aposta pendente junto do jogo final correspondente.
type PendingBet struct {
	Bet  bets.Bet
	Game games.Game
}

const pendingJoin = `
	SELECT b.id, b.user_id, b.game_id, b.market, b.selection, b.point, b.odds,
	       b.stake_cents, b.potential_payout_cents, b.status, b.result_amount_cents,
	       b.parlay_id, b.placed_at, b.settled_at,
	       g.id, g.sport_key, g.home_team, g.away_team, g.commence_time,
	       g.home_score, g.away_score, g.status, g.updated_at
	FROM bets b
	JOIN games g ON g.id = b.game_id
	WHERE b.status = 'pending' AND g.status = 'final'`

func scanPending(rows *sql.Rows) ([]PendingBet, error) {
	var out []PendingBet
	for rows.Next() {
		var pb PendingBet
		b, g := &pb.Bet, &pb.Game
		if err := rows.Scan(&b.ID, &b.UserID, &b.GameID, &b.Market, &b.Selection,
			&b.Point, &b.Odds, &b.StakeCents, &b.PotentialPayoutCents, &b.Status,
			&b.ResultAmountCents, &b.ParlayID, &b.PlacedAt, &b.SettledAt,
			&g.ID, &g.SportKey, &g.HomeTeam, &g.AwayTeam, &g.CommenceTime,
			&g.HomeScore, &g.AwayScore, &g.Status, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, pb)
	}
	return out, rows.Err()
}

// ListSettleable retorna apostas pendentes de jogos já encerrados (sweep).
func (p *Postgres) ListSettleable(ctx context.Context, limit int) ([]PendingBet, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	rows, err := p.db.QueryContext(ctx,
		pendingJoin+` ORDER BY b.placed_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPending(rows)
}

// ListSettleableByGame é o caminho rápido disparado pelo evento game_final.
func (p *Postgres) ListSettleableByGame(ctx context.Context, gameID string) ([]PendingBet, error) {
	rows, err := p.db.QueryContext(ctx,
		pendingJoin+` AND b.game_id = $1 ORDER BY b.placed_at`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPending(rows)
}

// SettleBet aplica o desfecho numa transação com lock de linha.
// applied=false quando a aposta já saiu de pending (outro worker chegou
// antes); a dupla liquidação é impossível por construção.
func (p *Postgres) SettleBet(ctx context.Context, betID, newStatus string, resultCents int64, detail string) (applied bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var current string
	if err = tx.QueryRowContext(ctx,
		`SELECT status FROM bets WHERE id=$1 FOR UPDATE`, betID).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return false, ErrNotFound
		}
		return false, err
	}
	if current != bets.StatusPending {
		return false, tx.Commit()
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE bets SET status=$1, result_amount_cents=$2, settled_at=NOW()
		WHERE id=$3`, newStatus, resultCents, betID); err != nil {
		return false, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bet_settlements (bet_id, old_status, new_status, detail)
		VALUES ($1,'pending',$2,$3)`, betID, newStatus, detail); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// GetParlayWithLegs carrega um parlay e todas as pernas (qualquer dono).
func (p *Postgres) GetParlayWithLegs(ctx context.Context, parlayID string) (*bets.Parlay, []bets.Bet, error) {
	var pl bets.Parlay
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, stake_cents, combined_odds, potential_payout_cents, status, result_amount_cents, placed_at, settled_at
		FROM parlays WHERE id=$1`, parlayID).
		Scan(&pl.ID, &pl.UserID, &pl.StakeCents, &pl.CombinedOdds,
			&pl.PotentialPayoutCents, &pl.Status, &pl.ResultAmountCents,
			&pl.PlacedAt, &pl.SettledAt)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, game_id, market, selection, point, odds, stake_cents,
		       potential_payout_cents, status, result_amount_cents, parlay_id, placed_at, settled_at
		FROM bets WHERE parlay_id=$1 ORDER BY placed_at`, parlayID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var legs []bets.Bet
	for rows.Next() {
		var b bets.Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.GameID, &b.Market, &b.Selection,
			&b.Point, &b.Odds, &b.StakeCents, &b.PotentialPayoutCents, &b.Status,
			&b.ResultAmountCents, &b.ParlayID, &b.PlacedAt, &b.SettledAt); err != nil {
			return nil, nil, err
		}
		legs = append(legs, b)
	}
	return &pl, legs, rows.Err()
}

// SettleParlay fecha o parlay com o mesmo guard de status do SettleBet.
func (p *Postgres) SettleParlay(ctx context.Context, parlayID, newStatus string, resultCents int64) (applied bool, err error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE parlays SET status=$1, result_amount_cents=$2, settled_at=NOW()
		WHERE id=$3 AND status='pending'`, newStatus, resultCents, parlayID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
