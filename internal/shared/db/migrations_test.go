package db

import (
	"strings"
	"testing"
)

// O serviço de apostas insere pernas de parlay com stake_cents=0 (o stake
// mora na linha do parlay). O check de bets precisa aceitar essas linhas e
// continuar rejeitando aposta simples sem stake.
func TestSchemaAcceptsParlayLegWithoutStake(t *testing.T) {
	start := strings.Index(schema, "CREATE TABLE IF NOT EXISTS bets (")
	if start < 0 {
		t.Fatal("bets table missing from schema")
	}
	ddl := schema[start:]
	ddl = ddl[:strings.Index(ddl, ";")]

	if !strings.Contains(ddl, "CHECK (stake_cents > 0 OR parlay_id IS NOT NULL)") {
		t.Errorf("bets stake check must allow zero-stake parlay legs, got:\n%s", ddl)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if strings.HasPrefix(stmt, "CREATE TABLE") && !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("non-idempotent statement:\n%s", stmt)
		}
	}
}
