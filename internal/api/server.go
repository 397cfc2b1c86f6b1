// Package api expõe a superfície REST + WebSocket do backend: auth, apostas,
// odds, carteira, picks curados, fantasy e administração.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/auth"
	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/fantasy"
	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/oddsfeed"
	"github.com/benyetra/yetai-backend/internal/picks"
	"github.com/benyetra/yetai-backend/internal/users"
	"github.com/benyetra/yetai-backend/internal/wallet"
)

type userStore interface {
	Create(ctx context.Context, u *users.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	GetByID(ctx context.Context, id string) (*users.User, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName string, favoriteTeams []string) error
	List(ctx context.Context) ([]users.User, error)
	SetHidden(ctx context.Context, id string, hidden bool) error
	SetTier(ctx context.Context, id, tier string) error
}

type walletStore interface {
	GetOrCreate(ctx context.Context, userID string) (*wallet.Wallet, error)
	Deposit(ctx context.Context, userID string, amount int64, externalRef string) (int64, error)
	ListLedger(ctx context.Context, userID string, limit int) ([]wallet.LedgerEntry, error)
}

type betService interface {
	Place(ctx context.Context, userID string, in bets.PlaceBetInput) (*bets.Bet, error)
	PlaceParlay(ctx context.Context, userID string, stakeCents int64, legs []bets.ParlayLegInput) (*bets.Parlay, []bets.Bet, error)
}

type betReader interface {
	GetForUser(ctx context.Context, userID, betID string) (*bets.Bet, error)
	ListByUser(ctx context.Context, userID, status string, limit, offset int) ([]bets.Bet, error)
	GetParlayForUser(ctx context.Context, userID, parlayID string) (*bets.Parlay, []bets.Bet, error)
	StatsByUser(ctx context.Context, userID string) (*bets.Stats, error)
}

type gameReader interface {
	GetByID(ctx context.Context, id string) (*games.Game, error)
	ListUpcoming(ctx context.Context, sportKey string, limit int) ([]games.Game, error)
}

type lineReader interface {
	ListByGame(ctx context.Context, gameID string) ([]oddsfeed.Line, error)
	ListForGames(ctx context.Context, gameIDs []string) (map[string][]oddsfeed.Line, error)
}

type snapshotStore interface {
	Get(ctx context.Context, gameID string) ([]oddsfeed.Line, bool, error)
	Set(ctx context.Context, gameID string, lines []oddsfeed.Line) error
}

type pickStore interface {
	Create(ctx context.Context, p *picks.Pick) (string, error)
	ListVisible(ctx context.Context, tier string, limit int) ([]picks.Pick, error)
	GetByID(ctx context.Context, id string) (*picks.Pick, error)
	Settle(ctx context.Context, id, status, note string) error
	SoftDelete(ctx context.Context, id string) error
}

type fantasyStore interface {
	ListAccounts(ctx context.Context, userID string) ([]fantasy.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID string) error
	ListLeaguesByUser(ctx context.Context, userID string) ([]fantasy.League, error)
	GetLeagueForUser(ctx context.Context, userID, leagueID string) (*fantasy.League, error)
	ListRosters(ctx context.Context, leagueID string) ([]fantasy.Roster, error)
}

type fantasySyncer interface {
	Link(ctx context.Context, userID, username string) (*fantasy.Account, error)
	SyncLeague(ctx context.Context, userID, leagueID string) error
}

// Server junta todas as dependências da API pública.
type Server struct {
	Log     *zap.Logger
	JWT     *auth.JWTManager
	Users   userStore
	Wallet  walletStore
	Bets    betService
	BetRead betReader
	Games   gameReader
	Lines   lineReader
	Snap    snapshotStore
	Picks   pickStore
	Fantasy fantasyStore
	Syncer  fantasySyncer
	Catalog *oddsfeed.Catalog
	Hub     *Hub
}

// Router monta as rotas com os middlewares de CORS, log e auth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(withCORS)
	r.Use(requestLogger(s.Log))

	r.Route("/api", func(r chi.Router) {
		// públicas
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Get("/odds/sports", s.listSports)
		r.Get("/odds/{sport}", s.listOdds)
		r.Get("/games/{id}", s.getGame)
		if s.Hub != nil {
			r.Get("/ws/odds", s.Hub.HandleWS)
		}

		// autenticadas
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.me)
			r.Patch("/auth/me", s.updateMe)

			r.Get("/wallet", s.getWallet)
			r.Post("/wallet/deposit", s.deposit)

			r.Post("/bets", s.placeBet)
			r.Post("/bets/parlay", s.placeParlay)
			r.Get("/bets", s.listBets)
			r.Get("/bets/stats", s.betStats)
			r.Get("/bets/{id}", s.getBet)
			r.Delete("/bets/{id}", s.deleteBet)
			r.Get("/parlays/{id}", s.getParlay)

			r.Get("/yetai-bets", s.listPicks)

			r.Post("/fantasy/accounts", s.linkFantasyAccount)
			r.Get("/fantasy/accounts", s.listFantasyAccounts)
			r.Delete("/fantasy/accounts/{id}", s.unlinkFantasyAccount)
			r.Get("/fantasy/leagues", s.listFantasyLeagues)
			r.Get("/fantasy/leagues/{id}/rosters", s.listFantasyRosters)
			r.Post("/fantasy/leagues/{id}/sync", s.syncFantasyLeague)

			// administrativas
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/admin/users", s.adminListUsers)
				r.Patch("/admin/users/{id}/visibility", s.adminSetVisibility)
				r.Patch("/admin/users/{id}/tier", s.adminSetTier)

				r.Post("/admin/yetai-bets", s.adminCreatePick)
				r.Patch("/admin/yetai-bets/{id}/settle", s.adminSettlePick)
				r.Delete("/admin/yetai-bets/{id}", s.adminDeletePick)
			})
		})
	})

	return r
}
