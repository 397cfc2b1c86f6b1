package fantasy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyLinked = errors.New("account already linked")
)

// Postgres implementa a persistência das entidades de fantasy.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreateAccount vincula a conta externa ao usuário.
func (p *Postgres) CreateAccount(ctx context.Context, a *Account) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO fantasy_accounts (id, user_id, platform, external_user_id, external_username)
		VALUES ($1,$2,$3,$4,$5)`,
		id, a.UserID, a.Platform, a.ExternalUserID, a.ExternalUsername)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrAlreadyLinked
		}
		return "", err
	}
	return id, nil
}

// ListAccounts retorna as contas vinculadas do usuário.
func (p *Postgres) ListAccounts(ctx context.Context, userID string) ([]Account, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, platform, external_user_id, external_username, created_at
		FROM fantasy_accounts WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Platform, &a.ExternalUserID,
			&a.ExternalUsername, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAccountForUser busca uma conta do próprio usuário.
func (p *Postgres) GetAccountForUser(ctx context.Context, userID, accountID string) (*Account, error) {
	var a Account
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, platform, external_user_id, external_username, created_at
		FROM fantasy_accounts WHERE id=$1 AND user_id=$2`, accountID, userID).
		Scan(&a.ID, &a.UserID, &a.Platform, &a.ExternalUserID, &a.ExternalUsername, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAccount desvincula a conta; ligas e elencos caem em cascata.
func (p *Postgres) DeleteAccount(ctx context.Context, userID, accountID string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM fantasy_accounts WHERE id=$1 AND user_id=$2`, accountID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertLeague grava/atualiza uma liga sincronizada e devolve o id interno.
func (p *Postgres) UpsertLeague(ctx context.Context, l *League) (string, error) {
	var id string
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO fantasy_leagues (id, account_id, external_id, name, season, total_rosters)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (account_id, external_id) DO UPDATE SET
		  name          = EXCLUDED.name,
		  season        = EXCLUDED.season,
		  total_rosters = EXCLUDED.total_rosters,
		  updated_at    = NOW()
		RETURNING id`,
		uuid.NewString(), l.AccountID, l.ExternalID, l.Name, l.Season, l.TotalRosters).
		Scan(&id)
	return id, err
}

// ListLeaguesByUser retorna as ligas de todas as contas do usuário.
func (p *Postgres) ListLeaguesByUser(ctx context.Context, userID string) ([]League, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT l.id, l.account_id, l.external_id, l.name, l.season, l.total_rosters, l.created_at, l.updated_at
		FROM fantasy_leagues l
		JOIN fantasy_accounts a ON a.id = l.account_id
		WHERE a.user_id=$1
		ORDER BY l.season DESC, l.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []League
	for rows.Next() {
		var l League
		if err := rows.Scan(&l.ID, &l.AccountID, &l.ExternalID, &l.Name, &l.Season,
			&l.TotalRosters, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetLeagueForUser busca uma liga garantindo que pertence ao usuário.
func (p *Postgres) GetLeagueForUser(ctx context.Context, userID, leagueID string) (*League, error) {
	var l League
	err := p.db.QueryRowContext(ctx, `
		SELECT l.id, l.account_id, l.external_id, l.name, l.season, l.total_rosters, l.created_at, l.updated_at
		FROM fantasy_leagues l
		JOIN fantasy_accounts a ON a.id = l.account_id
		WHERE l.id=$1 AND a.user_id=$2`, leagueID, userID).
		Scan(&l.ID, &l.AccountID, &l.ExternalID, &l.Name, &l.Season,
			&l.TotalRosters, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpsertRoster grava/atualiza um elenco da liga.
func (p *Postgres) UpsertRoster(ctx context.Context, r *Roster) error {
	players, err := json.Marshal(r.Players)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO fantasy_rosters (id, league_id, external_roster_id, owner_external_id, owner_name, wins, losses, ties, points_for, players)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (league_id, external_roster_id) DO UPDATE SET
		  owner_external_id = EXCLUDED.owner_external_id,
		  owner_name        = EXCLUDED.owner_name,
		  wins              = EXCLUDED.wins,
		  losses            = EXCLUDED.losses,
		  ties              = EXCLUDED.ties,
		  points_for        = EXCLUDED.points_for,
		  players           = EXCLUDED.players,
		  updated_at        = NOW()`,
		uuid.NewString(), r.LeagueID, r.ExternalRosterID, r.OwnerExternalID,
		r.OwnerName, r.Wins, r.Losses, r.Ties, r.PointsFor, players)
	return err
}

// ListRosters retorna os elencos em ordem de classificação
// (vitórias, depois pontos).
func (p *Postgres) ListRosters(ctx context.Context, leagueID string) ([]Roster, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, league_id, external_roster_id, owner_external_id, owner_name, wins, losses, ties, points_for, players, updated_at
		FROM fantasy_rosters WHERE league_id=$1
		ORDER BY wins DESC, points_for DESC`, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Roster
	for rows.Next() {
		var r Roster
		var players []byte
		if err := rows.Scan(&r.ID, &r.LeagueID, &r.ExternalRosterID, &r.OwnerExternalID,
			&r.OwnerName, &r.Wins, &r.Losses, &r.Ties, &r.PointsFor, &players, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &r.Players); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
