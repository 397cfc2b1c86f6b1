package bets

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/oddsfeed"
	"github.com/benyetra/yetai-backend/internal/wallet"
	"github.com/benyetra/yetai-backend/pkg/contracts/events"
)

type fakeBetStore struct {
	created        []*Bet
	deleted        []string
	parlays        []*Parlay
	deletedParlays []string
}

func (f *fakeBetStore) CreatePending(_ context.Context, b *Bet) error {
	f.created = append(f.created, b)
	return nil
}

func (f *fakeBetStore) DeleteUnsettled(_ context.Context, betID string) error {
	f.deleted = append(f.deleted, betID)
	return nil
}

func (f *fakeBetStore) CreateParlay(_ context.Context, p *Parlay, legs []Bet) error {
	f.parlays = append(f.parlays, p)
	return nil
}

func (f *fakeBetStore) DeleteUnsettledParlay(_ context.Context, parlayID string) error {
	f.deletedParlays = append(f.deletedParlays, parlayID)
	return nil
}

type fakeGameStore struct {
	games map[string]*games.Game
}

func (f *fakeGameStore) GetByID(_ context.Context, id string) (*games.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, games.ErrNotFound
	}
	return g, nil
}

type fakeWalletStore struct {
	reserveErr error
	reserved   []string // external refs
}

func (f *fakeWalletStore) GetOrCreate(_ context.Context, userID string) (*wallet.Wallet, error) {
	return &wallet.Wallet{ID: "w1", UserID: userID, BalanceCents: 1000_00}, nil
}

func (f *fakeWalletStore) Reserve(_ context.Context, _ string, _ int64, externalRef string) (string, error) {
	if f.reserveErr != nil {
		return "", f.reserveErr
	}
	f.reserved = append(f.reserved, externalRef)
	return "res-" + externalRef, nil
}

type fakePrices struct {
	lines []oddsfeed.Line
	ok    bool
}

func (f *fakePrices) Get(_ context.Context, _ string) ([]oddsfeed.Line, bool, error) {
	return f.lines, f.ok, nil
}

type fakePublisher struct {
	placed []events.BetPlaced
}

func (f *fakePublisher) PublishBetPlaced(_ context.Context, e events.BetPlaced) error {
	f.placed = append(f.placed, e)
	return nil
}

func scheduledGame(id string) *games.Game {
	return &games.Game{
		ID:       id,
		HomeTeam: "Kansas City Chiefs",
		AwayTeam: "Buffalo Bills",
		Status:   games.StatusScheduled,
	}
}

func newTestService(store *fakeBetStore, gs *fakeGameStore, ws *fakeWalletStore, prices *fakePrices, pub *fakePublisher) *Service {
	return &Service{
		Log:      zap.NewNop(),
		Repo:     store,
		Games:    gs,
		Wallet:   ws,
		Prices:   prices,
		Publ:     pub,
		DriftBps: 500,
	}
}

func TestPlaceSuccess(t *testing.T) {
	store := &fakeBetStore{}
	ws := &fakeWalletStore{}
	pub := &fakePublisher{}
	svc := newTestService(store, &fakeGameStore{games: map[string]*games.Game{"g1": scheduledGame("g1")}}, ws, &fakePrices{}, pub)

	b, err := svc.Place(context.Background(), "u1", PlaceBetInput{
		GameID:     "g1",
		Market:     MarketMoneyline,
		Selection:  "Kansas City Chiefs",
		Odds:       150,
		StakeCents: 100_00,
	})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if b.Status != StatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.PotentialPayoutCents != 250_00 {
		t.Errorf("payout = %d, want 25000", b.PotentialPayoutCents)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d bets, want 1", len(store.created))
	}
	if len(ws.reserved) != 1 || ws.reserved[0] != b.ID {
		t.Errorf("reserve external_ref = %v, want [%s]", ws.reserved, b.ID)
	}
	if len(pub.placed) != 1 || pub.placed[0].BetID != b.ID {
		t.Errorf("bet_placed not published for %s", b.ID)
	}
	if pub.placed[0].ReservedRef != b.ID {
		t.Errorf("reserved_ref = %s, want %s", pub.placed[0].ReservedRef, b.ID)
	}
}

func TestPlaceInsufficientFundsCompensates(t *testing.T) {
	store := &fakeBetStore{}
	ws := &fakeWalletStore{reserveErr: wallet.ErrInsufficientFunds}
	svc := newTestService(store, &fakeGameStore{games: map[string]*games.Game{"g1": scheduledGame("g1")}}, ws, &fakePrices{}, &fakePublisher{})

	_, err := svc.Place(context.Background(), "u1", PlaceBetInput{
		GameID:     "g1",
		Market:     MarketMoneyline,
		Selection:  "Buffalo Bills",
		Odds:       -110,
		StakeCents: 100_00,
	})
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	// a aposta órfã tem que ser removida
	if len(store.created) != 1 || len(store.deleted) != 1 {
		t.Fatalf("created=%d deleted=%d, want 1/1", len(store.created), len(store.deleted))
	}
	if store.deleted[0] != store.created[0].ID {
		t.Errorf("deleted %s, want %s", store.deleted[0], store.created[0].ID)
	}
}

func TestPlaceRejectsOddsDrift(t *testing.T) {
	prices := &fakePrices{
		ok: true,
		lines: []oddsfeed.Line{
			{GameID: "g1", Market: MarketMoneyline, Bookmaker: "draftkings", HomePrice: -200, AwayPrice: 170},
		},
	}
	svc := newTestService(&fakeBetStore{}, &fakeGameStore{games: map[string]*games.Game{"g1": scheduledGame("g1")}}, &fakeWalletStore{}, prices, &fakePublisher{})

	// cliente mandou +150, linha corrente em casa é -200: deriva enorme
	_, err := svc.Place(context.Background(), "u1", PlaceBetInput{
		GameID:     "g1",
		Market:     MarketMoneyline,
		Selection:  "Kansas City Chiefs",
		Odds:       150,
		StakeCents: 50_00,
	})
	var drift *OddsDriftError
	if !errors.As(err, &drift) {
		t.Fatalf("expected OddsDriftError, got %v", err)
	}
	if drift.CurrentOdds != -200 {
		t.Errorf("CurrentOdds = %d, want -200", drift.CurrentOdds)
	}
}

func TestPlaceToleratesSmallDrift(t *testing.T) {
	prices := &fakePrices{
		ok: true,
		lines: []oddsfeed.Line{
			// -110 (1.909) vs -112 (1.893): ~86 bps, dentro dos 500
			{GameID: "g1", Market: MarketMoneyline, Bookmaker: "fanduel", HomePrice: -112, AwayPrice: 102},
		},
	}
	svc := newTestService(&fakeBetStore{}, &fakeGameStore{games: map[string]*games.Game{"g1": scheduledGame("g1")}}, &fakeWalletStore{}, prices, &fakePublisher{})

	_, err := svc.Place(context.Background(), "u1", PlaceBetInput{
		GameID:     "g1",
		Market:     MarketMoneyline,
		Selection:  "Kansas City Chiefs",
		Odds:       -110,
		StakeCents: 50_00,
	})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
}

func TestPlaceValidation(t *testing.T) {
	gs := &fakeGameStore{games: map[string]*games.Game{"g1": scheduledGame("g1")}}

	inProgress := scheduledGame("g2")
	inProgress.Status = games.StatusInProgress
	gs.games["g2"] = inProgress

	svc := newTestService(&fakeBetStore{}, gs, &fakeWalletStore{}, &fakePrices{}, &fakePublisher{})

	pt := 6.5
	cases := []struct {
		name string
		in   PlaceBetInput
		want error
	}{
		{"unknown market", PlaceBetInput{GameID: "g1", Market: "prop", Selection: "x", Odds: 100, StakeCents: 100}, ErrValidation},
		{"zero stake", PlaceBetInput{GameID: "g1", Market: MarketMoneyline, Selection: "Buffalo Bills", Odds: 100}, ErrValidation},
		{"bad odds", PlaceBetInput{GameID: "g1", Market: MarketMoneyline, Selection: "Buffalo Bills", Odds: 50, StakeCents: 100}, ErrValidation},
		{"missing game", PlaceBetInput{GameID: "nope", Market: MarketMoneyline, Selection: "Buffalo Bills", Odds: 100, StakeCents: 100}, games.ErrNotFound},
		{"started game", PlaceBetInput{GameID: "g2", Market: MarketMoneyline, Selection: "Buffalo Bills", Odds: 100, StakeCents: 100}, ErrGameFinished},
		{"wrong team", PlaceBetInput{GameID: "g1", Market: MarketMoneyline, Selection: "Miami Dolphins", Odds: 100, StakeCents: 100}, ErrValidation},
		{"spread without point", PlaceBetInput{GameID: "g1", Market: MarketSpread, Selection: "Buffalo Bills", Odds: 100, StakeCents: 100}, ErrValidation},
		{"total bad selection", PlaceBetInput{GameID: "g1", Market: MarketTotal, Selection: "Buffalo Bills", Point: &pt, Odds: 100, StakeCents: 100}, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Place(context.Background(), "u1", tc.in); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPlaceMoneylineClearsPoint(t *testing.T) {
	store := &fakeBetStore{}
	svc := newTestService(store, &fakeGameStore{games: map[string]*games.Game{"g1": scheduledGame("g1")}}, &fakeWalletStore{}, &fakePrices{}, &fakePublisher{})

	pt := 3.5
	b, err := svc.Place(context.Background(), "u1", PlaceBetInput{
		GameID:     "g1",
		Market:     MarketMoneyline,
		Selection:  "Buffalo Bills",
		Point:      &pt,
		Odds:       120,
		StakeCents: 10_00,
	})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if b.Point != nil {
		t.Errorf("moneyline bet kept point %v", *b.Point)
	}
}

func TestPlaceParlay(t *testing.T) {
	gs := &fakeGameStore{games: map[string]*games.Game{
		"g1": scheduledGame("g1"),
		"g2": scheduledGame("g2"),
	}}
	store := &fakeBetStore{}
	ws := &fakeWalletStore{}
	pub := &fakePublisher{}
	svc := newTestService(store, gs, ws, &fakePrices{}, pub)

	legs := []ParlayLegInput{
		{GameID: "g1", Market: MarketMoneyline, Selection: "Kansas City Chiefs", Odds: 100},
		{GameID: "g2", Market: MarketMoneyline, Selection: "Buffalo Bills", Odds: 100},
	}
	p, created, err := svc.PlaceParlay(context.Background(), "u1", 50_00, legs)
	if err != nil {
		t.Fatalf("PlaceParlay: %v", err)
	}
	if p.CombinedOdds != 300 {
		t.Errorf("combined odds = %d, want 300", p.CombinedOdds)
	}
	if p.PotentialPayoutCents != 200_00 {
		t.Errorf("payout = %d, want 20000", p.PotentialPayoutCents)
	}
	if len(created) != 2 {
		t.Fatalf("legs = %d, want 2", len(created))
	}
	for _, leg := range created {
		if leg.StakeCents != 0 {
			t.Errorf("leg stake = %d, want 0", leg.StakeCents)
		}
	}
	if len(ws.reserved) != 1 || ws.reserved[0] != p.ID {
		t.Errorf("reserve external_ref = %v, want [%s]", ws.reserved, p.ID)
	}
	if len(pub.placed) != 2 {
		t.Fatalf("published %d bet_placed, want 2", len(pub.placed))
	}
	for _, e := range pub.placed {
		// o evento carrega a reserva que de fato existe: a do parlay
		if e.ReservedRef != p.ID {
			t.Errorf("leg %s reserved_ref = %s, want %s", e.BetID, e.ReservedRef, p.ID)
		}
		if e.ParlayID != p.ID {
			t.Errorf("leg %s parlay_id = %s, want %s", e.BetID, e.ParlayID, p.ID)
		}
	}
}

func TestPlaceParlayRejections(t *testing.T) {
	gs := &fakeGameStore{games: map[string]*games.Game{"g1": scheduledGame("g1")}}
	svc := newTestService(&fakeBetStore{}, gs, &fakeWalletStore{}, &fakePrices{}, &fakePublisher{})

	leg := ParlayLegInput{GameID: "g1", Market: MarketMoneyline, Selection: "Kansas City Chiefs", Odds: 100}

	if _, _, err := svc.PlaceParlay(context.Background(), "u1", 10_00, []ParlayLegInput{leg}); !errors.Is(err, ErrValidation) {
		t.Errorf("single leg: got %v, want ErrValidation", err)
	}

	// mesmo jogo duas vezes
	if _, _, err := svc.PlaceParlay(context.Background(), "u1", 10_00, []ParlayLegInput{leg, leg}); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate game: got %v, want ErrValidation", err)
	}
}

func TestPlaceParlayInsufficientFundsCompensates(t *testing.T) {
	gs := &fakeGameStore{games: map[string]*games.Game{
		"g1": scheduledGame("g1"),
		"g2": scheduledGame("g2"),
	}}
	store := &fakeBetStore{}
	ws := &fakeWalletStore{reserveErr: wallet.ErrInsufficientFunds}
	svc := newTestService(store, gs, ws, &fakePrices{}, &fakePublisher{})

	_, _, err := svc.PlaceParlay(context.Background(), "u1", 10_00, []ParlayLegInput{
		{GameID: "g1", Market: MarketMoneyline, Selection: "Kansas City Chiefs", Odds: 100},
		{GameID: "g2", Market: MarketMoneyline, Selection: "Buffalo Bills", Odds: 100},
	})
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if len(store.parlays) != 1 || len(store.deletedParlays) != 1 {
		t.Fatalf("parlays=%d deleted=%d, want 1/1", len(store.parlays), len(store.deletedParlays))
	}
}
