package db

import "database/sql"

// schema contém o DDL completo do backend. Executado na subida de cada
// serviço; todo statement é idempotente (IF NOT EXISTS).
// IMPORTANTE: users e games precisam existir antes de bets/wallets (FKs).
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              UUID PRIMARY KEY,
    email           TEXT NOT NULL UNIQUE,
    username        TEXT NOT NULL UNIQUE,
    password_hash   TEXT NOT NULL,
    first_name      TEXT NOT NULL DEFAULT '',
    last_name       TEXT NOT NULL DEFAULT '',
    subscription_tier TEXT NOT NULL DEFAULT 'free'
        CHECK (subscription_tier IN ('free','pro','elite')),
    is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
    is_hidden       BOOLEAN NOT NULL DEFAULT FALSE,
    favorite_teams  TEXT[] NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS wallets (
    id            UUID PRIMARY KEY,
    user_id       UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    balance_cents BIGINT NOT NULL DEFAULT 0,
    version       BIGINT NOT NULL DEFAULT 1,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS wallet_ledger (
    id             BIGSERIAL PRIMARY KEY,
    wallet_id      UUID NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
    operation_type TEXT NOT NULL
        CHECK (operation_type IN ('CREDIT','RESERVE','DEBIT','REFUND','PAYOUT')),
    amount_cents   BIGINT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    related_bet_id UUID,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS wallet_reservations (
    id           UUID PRIMARY KEY,
    wallet_id    UUID NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
    external_ref TEXT NOT NULL,
    amount_cents BIGINT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'PENDING'
        CHECK (status IN ('PENDING','COMMITTED','REFUNDED')),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (wallet_id, external_ref)
);

CREATE TABLE IF NOT EXISTS games (
    id            TEXT PRIMARY KEY,
    sport_key     TEXT NOT NULL,
    home_team     TEXT NOT NULL,
    away_team     TEXT NOT NULL,
    commence_time TIMESTAMPTZ NOT NULL,
    home_score    INTEGER,
    away_score    INTEGER,
    status        TEXT NOT NULL DEFAULT 'scheduled'
        CHECK (status IN ('scheduled','in_progress','final')),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS odds_current (
    game_id    TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    market     TEXT NOT NULL CHECK (market IN ('moneyline','spread','total')),
    bookmaker  TEXT NOT NULL,
    home_price INTEGER NOT NULL,
    away_price INTEGER NOT NULL,
    point      DOUBLE PRECISION,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (game_id, market, bookmaker)
);

CREATE TABLE IF NOT EXISTS odds_history (
    id          BIGSERIAL PRIMARY KEY,
    game_id     TEXT NOT NULL,
    market      TEXT NOT NULL,
    bookmaker   TEXT NOT NULL,
    home_price  INTEGER NOT NULL,
    away_price  INTEGER NOT NULL,
    point       DOUBLE PRECISION,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS parlays (
    id                     UUID PRIMARY KEY,
    user_id                UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    stake_cents            BIGINT NOT NULL,
    combined_odds          INTEGER NOT NULL,
    potential_payout_cents BIGINT NOT NULL,
    status                 TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending','won','lost','pushed')),
    result_amount_cents    BIGINT,
    placed_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    settled_at             TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS bets (
    id                     UUID PRIMARY KEY,
    user_id                UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    game_id                TEXT NOT NULL REFERENCES games(id),
    market                 TEXT NOT NULL CHECK (market IN ('moneyline','spread','total')),
    selection              TEXT NOT NULL,
    point                  DOUBLE PRECISION,
    odds                   INTEGER NOT NULL,
    -- perna de parlay não carrega stake próprio, o stake mora no parlay
    stake_cents            BIGINT NOT NULL CHECK (stake_cents > 0 OR parlay_id IS NOT NULL),
    potential_payout_cents BIGINT NOT NULL,
    status                 TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending','won','lost','pushed')),
    result_amount_cents    BIGINT,
    parlay_id              UUID REFERENCES parlays(id) ON DELETE CASCADE,
    placed_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    settled_at             TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS bet_settlements (
    id         BIGSERIAL PRIMARY KEY,
    bet_id     UUID NOT NULL REFERENCES bets(id) ON DELETE CASCADE,
    old_status TEXT NOT NULL,
    new_status TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS yetai_bets (
    id               UUID PRIMARY KEY,
    sport_key        TEXT NOT NULL,
    game_id          TEXT REFERENCES games(id),
    title            TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    market           TEXT NOT NULL CHECK (market IN ('moneyline','spread','total')),
    selection        TEXT NOT NULL,
    point            DOUBLE PRECISION,
    odds             INTEGER NOT NULL,
    confidence       INTEGER NOT NULL CHECK (confidence BETWEEN 0 AND 100),
    tier_requirement TEXT NOT NULL DEFAULT 'free'
        CHECK (tier_requirement IN ('free','pro','elite')),
    status           TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending','won','lost','pushed')),
    result_note      TEXT NOT NULL DEFAULT '',
    created_by       UUID NOT NULL REFERENCES users(id),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    settled_at       TIMESTAMPTZ,
    deleted_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS fantasy_accounts (
    id                UUID PRIMARY KEY,
    user_id           UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    platform          TEXT NOT NULL DEFAULT 'sleeper',
    external_user_id  TEXT NOT NULL,
    external_username TEXT NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, platform, external_user_id)
);

CREATE TABLE IF NOT EXISTS fantasy_leagues (
    id            UUID PRIMARY KEY,
    account_id    UUID NOT NULL REFERENCES fantasy_accounts(id) ON DELETE CASCADE,
    external_id   TEXT NOT NULL,
    name          TEXT NOT NULL,
    season        TEXT NOT NULL,
    total_rosters INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (account_id, external_id)
);

CREATE TABLE IF NOT EXISTS fantasy_rosters (
    id                 UUID PRIMARY KEY,
    league_id          UUID NOT NULL REFERENCES fantasy_leagues(id) ON DELETE CASCADE,
    external_roster_id INTEGER NOT NULL,
    owner_external_id  TEXT NOT NULL DEFAULT '',
    owner_name         TEXT NOT NULL DEFAULT '',
    wins               INTEGER NOT NULL DEFAULT 0,
    losses             INTEGER NOT NULL DEFAULT 0,
    ties               INTEGER NOT NULL DEFAULT 0,
    points_for         DOUBLE PRECISION NOT NULL DEFAULT 0,
    players            JSONB NOT NULL DEFAULT '[]',
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (league_id, external_roster_id)
);

CREATE INDEX IF NOT EXISTS idx_bets_user_id ON bets(user_id);
CREATE INDEX IF NOT EXISTS idx_bets_game_id ON bets(game_id);
CREATE INDEX IF NOT EXISTS idx_bets_pending ON bets(status) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS idx_odds_history_game ON odds_history(game_id);
CREATE INDEX IF NOT EXISTS idx_wallet_ledger_wallet ON wallet_ledger(wallet_id);
CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
CREATE INDEX IF NOT EXISTS idx_yetai_bets_active ON yetai_bets(created_at) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_fantasy_leagues_account ON fantasy_leagues(account_id);
CREATE INDEX IF NOT EXISTS idx_fantasy_rosters_league ON fantasy_rosters(league_id);
`

// Migrate aplica o schema no banco.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
