package api

import (
	"time"

	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/fantasy"
	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/oddsfeed"
	"github.com/benyetra/yetai-backend/internal/picks"
	"github.com/benyetra/yetai-backend/internal/users"
	"github.com/benyetra/yetai-backend/internal/wallet"
)

// ---- auth / users ----

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMeRequest struct {
	FirstName     *string   `json:"first_name"`
	LastName      *string   `json:"last_name"`
	FavoriteTeams *[]string `json:"favorite_teams"`
}

type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Tier          string    `json:"subscription_tier"`
	IsAdmin       bool      `json:"is_admin"`
	IsHidden      bool      `json:"is_hidden,omitempty"`
	FavoriteTeams []string  `json:"favorite_teams"`
	CreatedAt     time.Time `json:"created_at"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *users.User) userResponse {
	teams := u.FavoriteTeams
	if teams == nil {
		teams = []string{}
	}
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Tier:          u.Tier,
		IsAdmin:       u.IsAdmin,
		IsHidden:      u.IsHidden,
		FavoriteTeams: teams,
		CreatedAt:     u.CreatedAt,
	}
}

// ---- wallet ----

type depositRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type ledgerEntryResponse struct {
	Operation   string    `json:"operation"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type walletResponse struct {
	BalanceCents int64                 `json:"balance_cents"`
	Ledger       []ledgerEntryResponse `json:"ledger,omitempty"`
}

func toWalletResponse(w *wallet.Wallet, ledger []wallet.LedgerEntry) walletResponse {
	out := walletResponse{BalanceCents: w.BalanceCents}
	for _, e := range ledger {
		out.Ledger = append(out.Ledger, ledgerEntryResponse{
			Operation:   e.OperationType,
			AmountCents: e.AmountCents,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

// ---- bets ----

type placeBetRequest struct {
	GameID     string   `json:"game_id"`
	Market     string   `json:"market"`
	Selection  string   `json:"selection"`
	Point      *float64 `json:"point"`
	Odds       int      `json:"odds"`
	StakeCents int64    `json:"stake_cents"`
}

type parlayLegRequest struct {
	GameID    string   `json:"game_id"`
	Market    string   `json:"market"`
	Selection string   `json:"selection"`
	Point     *float64 `json:"point"`
	Odds      int      `json:"odds"`
}

type placeParlayRequest struct {
	StakeCents int64              `json:"stake_cents"`
	Legs       []parlayLegRequest `json:"legs"`
}

type betResponse struct {
	ID                   string     `json:"id"`
	GameID               string     `json:"game_id"`
	Market               string     `json:"market"`
	Selection            string     `json:"selection"`
	Point                *float64   `json:"point,omitempty"`
	Odds                 int        `json:"odds"`
	StakeCents           int64      `json:"stake_cents"`
	PotentialPayoutCents int64      `json:"potential_payout_cents"`
	Status               string     `json:"status"`
	ResultAmountCents    *int64     `json:"result_amount_cents,omitempty"`
	ParlayID             *string    `json:"parlay_id,omitempty"`
	PlacedAt             time.Time  `json:"placed_at"`
	SettledAt            *time.Time `json:"settled_at,omitempty"`
}

func toBetResponse(b *bets.Bet) betResponse {
	return betResponse{
		ID:                   b.ID,
		GameID:               b.GameID,
		Market:               b.Market,
		Selection:            b.Selection,
		Point:                b.Point,
		Odds:                 b.Odds,
		StakeCents:           b.StakeCents,
		PotentialPayoutCents: b.PotentialPayoutCents,
		Status:               b.Status,
		ResultAmountCents:    b.ResultAmountCents,
		ParlayID:             b.ParlayID,
		PlacedAt:             b.PlacedAt,
		SettledAt:            b.SettledAt,
	}
}

type parlayResponse struct {
	ID                   string        `json:"id"`
	StakeCents           int64         `json:"stake_cents"`
	CombinedOdds         int           `json:"combined_odds"`
	PotentialPayoutCents int64         `json:"potential_payout_cents"`
	Status               string        `json:"status"`
	ResultAmountCents    *int64        `json:"result_amount_cents,omitempty"`
	PlacedAt             time.Time     `json:"placed_at"`
	SettledAt            *time.Time    `json:"settled_at,omitempty"`
	Legs                 []betResponse `json:"legs"`
}

func toParlayResponse(p *bets.Parlay, legs []bets.Bet) parlayResponse {
	out := parlayResponse{
		ID:                   p.ID,
		StakeCents:           p.StakeCents,
		CombinedOdds:         p.CombinedOdds,
		PotentialPayoutCents: p.PotentialPayoutCents,
		Status:               p.Status,
		ResultAmountCents:    p.ResultAmountCents,
		PlacedAt:             p.PlacedAt,
		SettledAt:            p.SettledAt,
		Legs:                 []betResponse{},
	}
	for i := range legs {
		out.Legs = append(out.Legs, toBetResponse(&legs[i]))
	}
	return out
}

// ---- odds / games ----

type lineResponse struct {
	Market    string    `json:"market"`
	Bookmaker string    `json:"bookmaker"`
	HomePrice int       `json:"home_price"`
	AwayPrice int       `json:"away_price"`
	Point     *float64  `json:"point,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type gameResponse struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	CommenceTime time.Time      `json:"commence_time"`
	HomeScore    *int           `json:"home_score,omitempty"`
	AwayScore    *int           `json:"away_score,omitempty"`
	Status       string         `json:"status"`
	Lines        []lineResponse `json:"lines"`
}

func toGameResponse(g *games.Game, lines []oddsfeed.Line) gameResponse {
	out := gameResponse{
		ID:           g.ID,
		SportKey:     g.SportKey,
		HomeTeam:     g.HomeTeam,
		AwayTeam:     g.AwayTeam,
		CommenceTime: g.CommenceTime,
		HomeScore:    g.HomeScore,
		AwayScore:    g.AwayScore,
		Status:       g.Status,
		Lines:        []lineResponse{},
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, lineResponse{
			Market:    l.Market,
			Bookmaker: l.Bookmaker,
			HomePrice: l.HomePrice,
			AwayPrice: l.AwayPrice,
			Point:     l.Point,
			UpdatedAt: l.UpdatedAt,
		})
	}
	return out
}

type sportResponse struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []string `json:"markets"`
}

// ---- picks ----

type createPickRequest struct {
	SportKey        string   `json:"sport_key"`
	GameID          *string  `json:"game_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Market          string   `json:"market"`
	Selection       string   `json:"selection"`
	Point           *float64 `json:"point"`
	Odds            int      `json:"odds"`
	Confidence      int      `json:"confidence"`
	TierRequirement string   `json:"tier_requirement"`
}

type settlePickRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type pickResponse struct {
	ID              string     `json:"id"`
	SportKey        string     `json:"sport_key"`
	GameID          *string    `json:"game_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Market          string     `json:"market"`
	Selection       string     `json:"selection"`
	Point           *float64   `json:"point,omitempty"`
	Odds            int        `json:"odds"`
	Confidence      int        `json:"confidence"`
	TierRequirement string     `json:"tier_requirement"`
	Status          string     `json:"status"`
	ResultNote      string     `json:"result_note,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
}

func toPickResponse(p *picks.Pick) pickResponse {
	return pickResponse{
		ID:              p.ID,
		SportKey:        p.SportKey,
		GameID:          p.GameID,
		Title:           p.Title,
		Description:     p.Description,
		Market:          p.Market,
		Selection:       p.Selection,
		Point:           p.Point,
		Odds:            p.Odds,
		Confidence:      p.Confidence,
		TierRequirement: p.TierRequirement,
		Status:          p.Status,
		ResultNote:      p.ResultNote,
		CreatedAt:       p.CreatedAt,
		SettledAt:       p.SettledAt,
	}
}

// ---- fantasy ----

type linkAccountRequest struct {
	Username string `json:"username"`
}

type fantasyAccountResponse struct {
	ID               string    `json:"id"`
	Platform         string    `json:"platform"`
	ExternalUserID   string    `json:"external_user_id"`
	ExternalUsername string    `json:"external_username"`
	CreatedAt        time.Time `json:"created_at"`
}

func toFantasyAccountResponse(a *fantasy.Account) fantasyAccountResponse {
	return fantasyAccountResponse{
		ID:               a.ID,
		Platform:         a.Platform,
		ExternalUserID:   a.ExternalUserID,
		ExternalUsername: a.ExternalUsername,
		CreatedAt:        a.CreatedAt,
	}
}

type fantasyLeagueResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Season       string    `json:"season"`
	TotalRosters int       `json:"total_rosters"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type fantasyRosterResponse struct {
	ExternalRosterID int      `json:"roster_id"`
	OwnerName        string   `json:"owner_name"`
	Wins             int      `json:"wins"`
	Losses           int      `json:"losses"`
	Ties             int      `json:"ties"`
	PointsFor        float64  `json:"points_for"`
	Players          []string `json:"players"`
}
