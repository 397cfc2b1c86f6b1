package oddsfeed

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Mercados aceitos no schema.
const (
	MarketMoneyline = "moneyline"
	MarketSpread    = "spread"
	MarketTotal     = "total"
)

// Line é a linha corrente de um mercado em uma casa.
// Para total, HomePrice/AwayPrice carregam over/under, nessa ordem.
// Point é a linha do spread (do time da casa) ou do total; nil em moneyline.
type Line struct {
	GameID    string    `json:"game_id"`
	Market    string    `json:"market"`
	Bookmaker string    `json:"bookmaker"`
	HomePrice int       `json:"home_price"`
	AwayPrice int       `json:"away_price"`
	Point     *float64  `json:"point,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Postgres implementa a persistência das linhas de odds
// (corrente em odds_current, trilha em odds_history).
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// UpsertCurrent grava a linha corrente de (jogo, mercado, casa).
func (p *Postgres) UpsertCurrent(ctx context.Context, l *Line) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO odds_current (game_id, market, bookmaker, home_price, away_price, point, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		ON CONFLICT (game_id, market, bookmaker) DO UPDATE SET
		  home_price = EXCLUDED.home_price,
		  away_price = EXCLUDED.away_price,
		  point      = EXCLUDED.point,
		  updated_at = NOW()`,
		l.GameID, l.Market, l.Bookmaker, l.HomePrice, l.AwayPrice, l.Point,
	)
	return err
}

// InsertHistory registra a linha no histórico.
func (p *Postgres) InsertHistory(ctx context.Context, l *Line) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO odds_history (game_id, market, bookmaker, home_price, away_price, point)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.GameID, l.Market, l.Bookmaker, l.HomePrice, l.AwayPrice, l.Point,
	)
	return err
}

// ListByGame retorna todas as linhas correntes de um jogo.
func (p *Postgres) ListByGame(ctx context.Context, gameID string) ([]Line, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT game_id, market, bookmaker, home_price, away_price, point, updated_at
		FROM odds_current WHERE game_id=$1
		ORDER BY market, bookmaker`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLines(rows)
}

// ListForGames retorna as linhas correntes de vários jogos de uma vez,
// agrupadas por jogo (evita N+1 na listagem de odds por esporte).
func (p *Postgres) ListForGames(ctx context.Context, gameIDs []string) (map[string][]Line, error) {
	if len(gameIDs) == 0 {
		return map[string][]Line{}, nil
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT game_id, market, bookmaker, home_price, away_price, point, updated_at
		FROM odds_current WHERE game_id = ANY($1)
		ORDER BY game_id, market, bookmaker`, pq.Array(gameIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines, err := scanLines(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Line, len(gameIDs))
	for _, l := range lines {
		out[l.GameID] = append(out[l.GameID], l)
	}
	return out, nil
}

func scanLines(rows *sql.Rows) ([]Line, error) {
	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.GameID, &l.Market, &l.Bookmaker, &l.HomePrice,
			&l.AwayPrice, &l.Point, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
