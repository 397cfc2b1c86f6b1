package picks

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/benyetra/yetai-backend/internal/users"
)

var (
	ErrNotFound       = errors.New("pick not found")
	ErrAlreadySettled = errors.New("pick already settled")
)

// Postgres implementa a persistência dos picks curados.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const pickColumns = `id, sport_key, game_id, title, description, market, selection, point,
	odds, confidence, tier_requirement, status, result_note, created_by, created_at, settled_at`

func scanPick(row interface{ Scan(...any) error }) (*Pick, error) {
	var p Pick
	err := row.Scan(&p.ID, &p.SportKey, &p.GameID, &p.Title, &p.Description,
		&p.Market, &p.Selection, &p.Point, &p.Odds, &p.Confidence,
		&p.TierRequirement, &p.Status, &p.ResultNote, &p.CreatedBy,
		&p.CreatedAt, &p.SettledAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create insere um pick novo com status pending.
func (p *Postgres) Create(ctx context.Context, pick *Pick) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO yetai_bets (id, sport_key, game_id, title, description, market, selection, point, odds, confidence, tier_requirement, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		id, pick.SportKey, pick.GameID, pick.Title, pick.Description, pick.Market,
		pick.Selection, pick.Point, pick.Odds, pick.Confidence,
		pick.TierRequirement, pick.CreatedBy,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListVisible retorna os picks não deletados visíveis pro tier do usuário,
// mais recentes primeiro. Free só enxerga picks free.
func (p *Postgres) ListVisible(ctx context.Context, tier string, limit int) ([]Pick, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT ` + pickColumns + ` FROM yetai_bets
		WHERE deleted_at IS NULL`
	args := []any{limit}
	if tier == users.TierFree {
		query += ` AND tier_requirement = 'free'`
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pick
	for rows.Next() {
		pk, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pk)
	}
	return out, rows.Err()
}

// GetByID busca um pick não deletado.
func (p *Postgres) GetByID(ctx context.Context, id string) (*Pick, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+pickColumns+` FROM yetai_bets WHERE id=$1 AND deleted_at IS NULL`, id)
	pk, err := scanPick(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return pk, err
}

// Settle marca o resultado de um pick. Só pending pode ser liquidado;
// a transição é única, igual à das apostas.
func (p *Postgres) Settle(ctx context.Context, id, status, note string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE yetai_bets SET status=$1, result_note=$2, settled_at=NOW()
		WHERE id=$3 AND deleted_at IS NULL AND status='pending'`,
		status, note, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distingue inexistente de já liquidado
		if _, gerr := p.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return ErrAlreadySettled
	}
	return nil
}

// SoftDelete esconde um pick sem apagar o histórico.
func (p *Postgres) SoftDelete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE yetai_bets SET deleted_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSettleable retorna picks pending cujo jogo vinculado terminou com placar.
func (p *Postgres) ListSettleable(ctx context.Context, limit int) ([]Pick, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+prefixedPickColumns+` FROM yetai_bets y
		JOIN games g ON g.id = y.game_id
		WHERE y.deleted_at IS NULL AND y.status='pending'
		  AND g.status='final' AND g.home_score IS NOT NULL AND g.away_score IS NOT NULL
		ORDER BY y.created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pick
	for rows.Next() {
		pk, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pk)
	}
	return out, rows.Err()
}

const prefixedPickColumns = `y.id, y.sport_key, y.game_id, y.title, y.description, y.market, y.selection, y.point,
	y.odds, y.confidence, y.tier_requirement, y.status, y.result_note, y.created_by, y.created_at, y.settled_at`
