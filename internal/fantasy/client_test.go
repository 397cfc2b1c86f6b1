package fantasy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClientUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/user/benyetra" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"user_id": "12345", "username": "benyetra", "display_name": "Ben"}`))
	})

	u, err := c.User(context.Background(), "benyetra")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u.UserID != "12345" || u.Username != "benyetra" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestClientUserNotFound(t *testing.T) {
	// a Sleeper responde 200 com corpo "null" pra usuário inexistente
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})
	if _, err := c.User(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestClientRosters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/league/L1/rosters" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`[{
			"roster_id": 3,
			"owner_id": "12345",
			"players": ["4046", "6794"],
			"settings": {"wins": 9, "losses": 4, "ties": 0, "fpts": 1520, "fpts_decimal": 42}
		}]`))
	})

	rosters, err := c.Rosters(context.Background(), "L1")
	if err != nil {
		t.Fatalf("Rosters: %v", err)
	}
	if len(rosters) != 1 {
		t.Fatalf("rosters = %d, want 1", len(rosters))
	}
	r := rosters[0]
	if r.RosterID != 3 || r.Settings.Wins != 9 {
		t.Errorf("unexpected roster: %+v", r)
	}
	if got := r.PointsFor(); got != 1520.42 {
		t.Errorf("PointsFor = %v, want 1520.42", got)
	}
}

func TestClientLeagueUsers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"user_id": "1", "username": "alpha", "display_name": "Alpha Team"},
			{"user_id": "2", "username": "beta", "display_name": ""}
		]`))
	})

	owners, err := c.LeagueUsers(context.Background(), "L1")
	if err != nil {
		t.Fatalf("LeagueUsers: %v", err)
	}
	if owners["1"] != "Alpha Team" {
		t.Errorf("owners[1] = %q", owners["1"])
	}
	// sem display_name cai pro username
	if owners["2"] != "beta" {
		t.Errorf("owners[2] = %q", owners["2"])
	}
}
