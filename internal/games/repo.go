package games

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("game not found")

// Postgres implementa a persistência de jogos.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Upsert insere ou atualiza os dados cadastrais de um jogo (sem placar).
func (p *Postgres) Upsert(ctx context.Context, g *Game) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO games (id, sport_key, home_team, away_team, commence_time, status, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		ON CONFLICT (id) DO UPDATE SET
		  sport_key     = EXCLUDED.sport_key,
		  home_team     = EXCLUDED.home_team,
		  away_team     = EXCLUDED.away_team,
		  commence_time = EXCLUDED.commence_time,
		  updated_at    = NOW()`,
		g.ID, g.SportKey, g.HomeTeam, g.AwayTeam, g.CommenceTime, g.Status,
	)
	return err
}

// ApplyScore grava placar e status vindos do feed de resultados.
// Retorna becameFinal=true somente na transição para final, para que o
// poller emita game_final exatamente uma vez. A transição é monotônica:
// um jogo final nunca regride.
func (p *Postgres) ApplyScore(ctx context.Context, id string, homeScore, awayScore *int, status string) (becameFinal bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var current string
	if err = tx.QueryRowContext(ctx,
		`SELECT status FROM games WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return false, ErrNotFound
		}
		return false, err
	}

	if current == StatusFinal {
		return false, tx.Commit() // nada a fazer, jogo já encerrado
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE games SET home_score=$1, away_score=$2, status=$3, updated_at=NOW()
		WHERE id=$4`,
		homeScore, awayScore, status, id); err != nil {
		return false, err
	}

	becameFinal = status == StatusFinal
	return becameFinal, tx.Commit()
}

// GetByID busca um jogo.
func (p *Postgres) GetByID(ctx context.Context, id string) (*Game, error) {
	var g Game
	err := p.db.QueryRowContext(ctx, `
		SELECT id, sport_key, home_team, away_team, commence_time, home_score, away_score, status, updated_at
		FROM games WHERE id=$1`, id).
		Scan(&g.ID, &g.SportKey, &g.HomeTeam, &g.AwayTeam, &g.CommenceTime,
			&g.HomeScore, &g.AwayScore, &g.Status, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListUpcoming retorna jogos não finalizados de um esporte, mais próximos primeiro.
func (p *Postgres) ListUpcoming(ctx context.Context, sportKey string, limit int) ([]Game, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, sport_key, home_team, away_team, commence_time, home_score, away_score, status, updated_at
		FROM games
		WHERE sport_key=$1 AND status <> 'final'
		ORDER BY commence_time
		LIMIT $2`, sportKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.SportKey, &g.HomeTeam, &g.AwayTeam, &g.CommenceTime,
			&g.HomeScore, &g.AwayScore, &g.Status, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
