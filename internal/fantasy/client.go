package fantasy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrUserNotFound: o username não existe na Sleeper.
var ErrUserNotFound = errors.New("sleeper user not found")

// Client consome a API pública da Sleeper (sem autenticação, só rate limit).
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configura o client.
type ClientOption func(*Client)

// WithBaseURL troca a URL base (testes).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient troca o http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// NewClient cria o client da Sleeper. A documentação pede no máximo
// 1000 chamadas/min; ficamos bem abaixo.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SleeperUser é a conta na plataforma.
type SleeperUser struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// SleeperLeague é uma liga de um usuário em uma temporada.
type SleeperLeague struct {
	LeagueID     string `json:"league_id"`
	Name         string `json:"name"`
	Season       string `json:"season"`
	TotalRosters int    `json:"total_rosters"`
	Status       string `json:"status"`
}

// SleeperRoster é um elenco dentro da liga, com o record da temporada.
type SleeperRoster struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
	Settings struct {
		Wins        int `json:"wins"`
		Losses      int `json:"losses"`
		Ties        int `json:"ties"`
		Fpts        int `json:"fpts"`
		FptsDecimal int `json:"fpts_decimal"`
	} `json:"settings"`
}

// PointsFor monta a pontuação da temporada (a API separa inteiro e decimal).
func (r *SleeperRoster) PointsFor() float64 {
	return float64(r.Settings.Fpts) + float64(r.Settings.FptsDecimal)/100
}

// User resolve um username para a conta Sleeper.
// A API devolve "null" com 200 quando o usuário não existe.
func (c *Client) User(ctx context.Context, username string) (*SleeperUser, error) {
	var out *SleeperUser
	if err := c.get(ctx, "/v1/user/"+url.PathEscape(username), &out); err != nil {
		return nil, err
	}
	if out == nil || out.UserID == "" {
		return nil, ErrUserNotFound
	}
	return out, nil
}

// Leagues lista as ligas NFL de um usuário na temporada.
func (c *Client) Leagues(ctx context.Context, userID, season string) ([]SleeperLeague, error) {
	var out []SleeperLeague
	if err := c.get(ctx, "/v1/user/"+url.PathEscape(userID)+"/leagues/nfl/"+url.PathEscape(season), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rosters lista os elencos de uma liga.
func (c *Client) Rosters(ctx context.Context, leagueID string) ([]SleeperRoster, error) {
	var out []SleeperRoster
	if err := c.get(ctx, "/v1/league/"+url.PathEscape(leagueID)+"/rosters", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LeagueUsers mapeia owner_id -> display_name dos membros da liga.
func (c *Client) LeagueUsers(ctx context.Context, leagueID string) (map[string]string, error) {
	var raw []SleeperUser
	if err := c.get(ctx, "/v1/league/"+url.PathEscape(leagueID)+"/users", &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for _, u := range raw {
		name := u.DisplayName
		if name == "" {
			name = u.Username
		}
		out[u.UserID] = name
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sleeper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sleeper %s: http %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode sleeper response: %w", err)
	}
	return nil
}
