package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// Postgres implementa as operações de bankroll.
// InitialBalanceCents é creditado na criação da carteira (bankroll demo).
type Postgres struct {
	db                  *sql.DB
	InitialBalanceCents int64
}

func NewPostgres(db *sql.DB, initialBalanceCents int64) *Postgres {
	return &Postgres{db: db, InitialBalanceCents: initialBalanceCents}
}

// GetOrCreate retorna a carteira do usuário, criando-a com o saldo inicial
// se não existir. Usa transação para garantir atomicidade.
func (p *Postgres) GetOrCreate(ctx context.Context, userID string) (*Wallet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, balance_cents, version, created_at, updated_at
		FROM wallets WHERE user_id=$1`, userID).
		Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.Version, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		w = Wallet{ID: uuid.NewString(), UserID: userID, BalanceCents: p.InitialBalanceCents, Version: 1}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,$3,1)`,
			w.ID, userID, w.BalanceCents); err != nil {
			return nil, err
		}
		if w.BalanceCents > 0 {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description)
				 VALUES($1,$2,$3,'initial bankroll')`,
				w.ID, OpCredit, w.BalanceCents); err != nil {
				return nil, err
			}
		}
	} else if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Deposit incrementa o saldo e registra a operação no ledger.
// Garante lock pessimista na linha da carteira.
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if err = tx.QueryRowContext(ctx, `
		UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1, updated_at = NOW()
		WHERE id=$2 RETURNING balance_cents`, amount, id).Scan(&newBalance); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description)
		VALUES($1,$2,$3,$4)`,
		id, OpCredit, amount, "deposit:"+externalRef); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Reserve bloqueia o stake de uma aposta, debitando o saldo.
// Idempotente por (wallet_id, external_ref): repetir retorna a mesma reserva.
func (p *Postgres) Reserve(ctx context.Context, userID string, amount int64, externalRef string) (reservationID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	if err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&walletID, &balance); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", err
	}

	// Idempotência: reserva já existente para o mesmo external_ref
	var exists string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM wallet_reservations WHERE wallet_id=$1 AND external_ref=$2`,
		walletID, externalRef).Scan(&exists)
	if err == nil {
		return exists, nil
	} else if err != sql.ErrNoRows {
		return "", err
	}

	if balance < amount {
		return "", ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1, updated_at = NOW()
		WHERE id=$2`, amount, walletID); err != nil {
		return "", err
	}

	reservationID = uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_reservations(id, wallet_id, external_ref, amount_cents, status)
		VALUES($1,$2,$3,$4,'PENDING')`,
		reservationID, walletID, externalRef, amount); err != nil {
		return "", err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description, related_bet_id)
		VALUES($1,$2,$3,$4,$5)`,
		walletID, OpReserve, amount, "stake:"+externalRef, externalRef); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}

	return reservationID, nil
}

// Commit consome uma reserva (aposta perdida): marca COMMITTED e registra o
// débito definitivo. Idempotente: reserva já tratada não faz nada.
func (p *Postgres) Commit(ctx context.Context, userID, externalRef string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	resID, walletID, amount, status, err := lockReservation(ctx, tx, userID, externalRef)
	if err != nil {
		return err
	}
	if status != "PENDING" {
		return nil
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallet_reservations SET status='COMMITTED', updated_at=NOW() WHERE id=$1`, resID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description, related_bet_id)
		VALUES($1,$2,$3,$4,$5)`,
		walletID, OpDebit, amount, "lost:"+externalRef, externalRef); err != nil {
		return err
	}

	return tx.Commit()
}

// Refund devolve o stake de uma reserva PENDING (push). Idempotente.
func (p *Postgres) Refund(ctx context.Context, userID, externalRef string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	resID, walletID, amount, status, err := lockReservation(ctx, tx, userID, externalRef)
	if err != nil {
		return err
	}
	if status != "PENDING" {
		return nil
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1, updated_at = NOW()
		WHERE id=$2`, amount, walletID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallet_reservations SET status='REFUNDED', updated_at=NOW() WHERE id=$1`, resID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description, related_bet_id)
		VALUES($1,$2,$3,$4,$5)`,
		walletID, OpRefund, amount, "push:"+externalRef, externalRef); err != nil {
		return err
	}

	return tx.Commit()
}

// Payout liquida uma aposta ganha: consome a reserva e credita o retorno
// total (stake + prêmio). Idempotente pela reserva.
func (p *Postgres) Payout(ctx context.Context, userID, externalRef string, payoutCents int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	resID, walletID, _, status, err := lockReservation(ctx, tx, userID, externalRef)
	if err != nil {
		return err
	}
	if status != "PENDING" {
		return nil
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallet_reservations SET status='COMMITTED', updated_at=NOW() WHERE id=$1`, resID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1, updated_at = NOW()
		WHERE id=$2`, payoutCents, walletID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description, related_bet_id)
		VALUES($1,$2,$3,$4,$5)`,
		walletID, OpPayout, payoutCents, "won:"+externalRef, externalRef); err != nil {
		return err
	}

	return tx.Commit()
}

// ListLedger retorna o extrato mais recente da carteira do usuário.
func (p *Postgres) ListLedger(ctx context.Context, userID string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT l.id, l.wallet_id, l.operation_type, l.amount_cents, l.description, l.related_bet_id, l.created_at
		FROM wallet_ledger l
		JOIN wallets w ON w.id = l.wallet_id
		WHERE w.user_id = $1
		ORDER BY l.id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.WalletID, &e.OperationType, &e.AmountCents,
			&e.Description, &e.RelatedBetID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// lockReservation carrega e trava a reserva de um usuário por external_ref.
func lockReservation(ctx context.Context, tx *sql.Tx, userID, externalRef string) (resID, walletID string, amount int64, status string, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT wr.id, wr.wallet_id, wr.amount_cents, wr.status
		FROM wallet_reservations wr
		JOIN wallets w ON w.id = wr.wallet_id
		WHERE w.user_id=$1 AND wr.external_ref=$2
		FOR UPDATE OF wr`, userID, externalRef).
		Scan(&resID, &walletID, &amount, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			err = ErrNotFound
		}
		return "", "", 0, "", err
	}
	return resID, walletID, amount, status, nil
}
