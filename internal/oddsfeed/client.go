package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Limite do plano gratuito do The Odds API
	defaultRateLimit = 1.0 // requests por segundo
	defaultBurst     = 2
)

// Client consome o The Odds API (v4): esportes, odds e placares.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu        sync.Mutex
	remaining int // x-requests-remaining da última resposta
	used      int // x-requests-used
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

// WithRateLimit ajusta o rate limit do client.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient cria o client do provedor de odds.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		remaining: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sport é um esporte disponível no provedor.
type Sport struct {
	Key    string `json:"key"`
	Group  string `json:"group"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// APIOutcome é um resultado dentro de um mercado do provedor.
type APIOutcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// APIMarket é um mercado do provedor ("h2h", "spreads", "totals").
type APIMarket struct {
	Key      string       `json:"key"`
	Outcomes []APIOutcome `json:"outcomes"`
}

// APIBookmaker agrupa os mercados de uma casa.
type APIBookmaker struct {
	Key        string      `json:"key"`
	Title      string      `json:"title"`
	LastUpdate time.Time   `json:"last_update"`
	Markets    []APIMarket `json:"markets"`
}

// APIGame é um jogo com odds por casa.
type APIGame struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	CommenceTime time.Time      `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []APIBookmaker `json:"bookmakers"`
}

// APIScoreEntry é o placar de um time no feed de resultados.
type APIScoreEntry struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// APIScore é um jogo no feed de resultados.
type APIScore struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	CommenceTime time.Time       `json:"commence_time"`
	Completed    bool            `json:"completed"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Scores       []APIScoreEntry `json:"scores"`
	LastUpdate   *time.Time      `json:"last_update"`
}

// Sports lista os esportes ativos do provedor.
func (c *Client) Sports(ctx context.Context) ([]Sport, error) {
	var out []Sport
	if err := c.get(ctx, "/v4/sports", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Odds busca os jogos e linhas atuais de um esporte.
// markets usa as chaves do provedor ("h2h,spreads,totals").
func (c *Client) Odds(ctx context.Context, sportKey string, markets []string) ([]APIGame, error) {
	q := url.Values{}
	q.Set("regions", "us")
	q.Set("markets", strings.Join(markets, ","))
	q.Set("oddsFormat", "american")

	var out []APIGame
	if err := c.get(ctx, "/v4/sports/"+sportKey+"/odds", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Scores busca placares dos últimos daysFrom dias (inclui jogos ao vivo).
func (c *Client) Scores(ctx context.Context, sportKey string, daysFrom int) ([]APIScore, error) {
	q := url.Values{}
	if daysFrom > 0 {
		q.Set("daysFrom", strconv.Itoa(daysFrom))
	}

	var out []APIScore
	if err := c.get(ctx, "/v4/sports/"+sportKey+"/scores", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remaining retorna a cota restante reportada pelo provedor (-1 se desconhecida).
func (c *Client) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// get executa um GET autenticado respeitando o rate limit.
func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("odds api request: %w", err)
	}
	defer resp.Body.Close()

	c.trackQuota(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("odds api %s: http %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode odds api response: %w", err)
	}
	return nil
}

// trackQuota guarda os headers de cota do provedor.
func (c *Client) trackQuota(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v := resp.Header.Get("x-requests-remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.remaining = n
		}
	}
	if v := resp.Header.Get("x-requests-used"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.used = n
		}
	}
}
