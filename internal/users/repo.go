package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("email or username already registered")
)

// Postgres implementa a persistência de usuários.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const userColumns = `id, email, username, password_hash, first_name, last_name,
	subscription_tier, is_admin, is_hidden, favorite_teams, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var teams pq.StringArray
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FirstName,
		&u.LastName, &u.Tier, &u.IsAdmin, &u.IsHidden, &teams, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.FavoriteTeams = []string(teams)
	return &u, nil
}

// Create insere um novo usuário. Email e username são normalizados para
// minúsculas; violação de unicidade vira ErrDuplicate.
func (p *Postgres) Create(ctx context.Context, u *User) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, subscription_tier, favorite_teams)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, strings.ToLower(u.Email), strings.ToLower(u.Username), u.PasswordHash,
		u.FirstName, u.LastName, u.Tier, pq.StringArray(u.FavoriteTeams),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}

// GetByEmail busca por email (case-insensitive).
func (p *Postgres) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=$1`, strings.ToLower(email))
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// GetByID busca por id.
func (p *Postgres) GetByID(ctx context.Context, id string) (*User, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// UpdateProfile altera nome e times favoritos.
func (p *Postgres) UpdateProfile(ctx context.Context, id, firstName, lastName string, favoriteTeams []string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users SET first_name=$1, last_name=$2, favorite_teams=$3, updated_at=NOW()
		WHERE id=$4`,
		firstName, lastName, pq.StringArray(favoriteTeams), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List retorna todos os usuários, inclusive ocultos (uso administrativo).
func (p *Postgres) List(ctx context.Context) ([]User, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// SetHidden alterna a flag de conta oculta.
func (p *Postgres) SetHidden(ctx context.Context, id string, hidden bool) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET is_hidden=$1, updated_at=NOW() WHERE id=$2`, hidden, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTier troca o tier de assinatura.
func (p *Postgres) SetTier(ctx context.Context, id, tier string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET subscription_tier=$1, updated_at=NOW() WHERE id=$2`, tier, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
