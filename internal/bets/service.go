package bets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/oddsfeed"
	"github.com/benyetra/yetai-backend/internal/teams"
	"github.com/benyetra/yetai-backend/internal/wallet"
	"github.com/benyetra/yetai-backend/pkg/contracts/events"
)

var (
	ErrValidation   = errors.New("invalid bet")
	ErrGameFinished = errors.New("game already started or finished")
)

// OddsDriftError sinaliza que a odd enviada divergiu da corrente além da
// tolerância. Carrega a odd atual pro cliente poder reapresentar.
type OddsDriftError struct {
	Market      string
	CurrentOdds int
}

func (e *OddsDriftError) Error() string {
	return fmt.Sprintf("odds changed; current=%d", e.CurrentOdds)
}

type betStore interface {
	CreatePending(ctx context.Context, b *Bet) error
	DeleteUnsettled(ctx context.Context, betID string) error
	CreateParlay(ctx context.Context, p *Parlay, legs []Bet) error
	DeleteUnsettledParlay(ctx context.Context, parlayID string) error
}

type gameStore interface {
	GetByID(ctx context.Context, id string) (*games.Game, error)
}

type walletStore interface {
	GetOrCreate(ctx context.Context, userID string) (*wallet.Wallet, error)
	Reserve(ctx context.Context, userID string, amount int64, externalRef string) (string, error)
}

type priceSource interface {
	Get(ctx context.Context, gameID string) ([]oddsfeed.Line, bool, error)
}

type publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

// Service orquestra o fluxo de aposta: validação, check de deriva de odd,
// persistência, reserva de saldo e evento bet_placed.
type Service struct {
	Log      *zap.Logger
	Repo     betStore
	Games    gameStore
	Wallet   walletStore
	Prices   priceSource
	Publ     publisher
	DriftBps int64 // tolerância de deriva em basis points sobre a odd decimal
}

// PlaceBetInput é o pedido de aposta simples já decodificado.
type PlaceBetInput struct {
	GameID     string
	Market     string
	Selection  string
	Point      *float64
	Odds       int
	StakeCents int64
}

// Place executa o fluxo completo de uma aposta simples.
func (s *Service) Place(ctx context.Context, userID string, in PlaceBetInput) (*Bet, error) {
	g, err := s.validateLeg(ctx, &in)
	if err != nil {
		return nil, err
	}

	if err := s.checkDrift(ctx, g, &in); err != nil {
		return nil, err
	}

	payout, err := PotentialPayout(in.StakeCents, in.Odds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	b := &Bet{
		ID:                   uuid.NewString(),
		UserID:               userID,
		GameID:               in.GameID,
		Market:               in.Market,
		Selection:            in.Selection,
		Point:                in.Point,
		Odds:                 in.Odds,
		StakeCents:           in.StakeCents,
		PotentialPayoutCents: payout,
		Status:               StatusPending,
	}
	if err := s.Repo.CreatePending(ctx, b); err != nil {
		return nil, fmt.Errorf("create bet: %w", err)
	}

	if err := s.reserve(ctx, userID, in.StakeCents, b.ID); err != nil {
		// compensação: a aposta sem stake reservado não pode existir
		if derr := s.Repo.DeleteUnsettled(ctx, b.ID); derr != nil {
			s.Log.Error("bet compensation delete failed",
				zap.String("betId", b.ID), zap.Error(derr))
		}
		return nil, err
	}

	s.publishPlaced(ctx, b, "")
	return b, nil
}

// ParlayLegInput é uma perna do parlay.
type ParlayLegInput struct {
	GameID    string
	Market    string
	Selection string
	Point     *float64
	Odds      int
}

// PlaceParlay valida e registra um parlay de 2 a 10 pernas em jogos distintos.
// O stake é único e a reserva usa o id do parlay como external_ref.
func (s *Service) PlaceParlay(ctx context.Context, userID string, stakeCents int64, legsIn []ParlayLegInput) (*Parlay, []Bet, error) {
	if len(legsIn) < 2 || len(legsIn) > 10 {
		return nil, nil, fmt.Errorf("%w: parlay requires 2 to 10 legs", ErrValidation)
	}
	if stakeCents <= 0 {
		return nil, nil, fmt.Errorf("%w: stake must be positive", ErrValidation)
	}

	seen := make(map[string]bool, len(legsIn))
	legOdds := make([]int, 0, len(legsIn))
	legs := make([]Bet, 0, len(legsIn))
	for i := range legsIn {
		li := &legsIn[i]
		if seen[li.GameID] {
			return nil, nil, fmt.Errorf("%w: duplicate game %s in parlay", ErrValidation, li.GameID)
		}
		seen[li.GameID] = true

		in := PlaceBetInput{
			GameID:    li.GameID,
			Market:    li.Market,
			Selection: li.Selection,
			Point:     li.Point,
			Odds:      li.Odds,
			// o stake mora no parlay; a perna valida só mercado/seleção
			StakeCents: 1,
		}
		g, err := s.validateLeg(ctx, &in)
		if err != nil {
			return nil, nil, err
		}
		if err := s.checkDrift(ctx, g, &in); err != nil {
			return nil, nil, err
		}

		legOdds = append(legOdds, li.Odds)
		legs = append(legs, Bet{
			ID:         uuid.NewString(),
			UserID:     userID,
			GameID:     li.GameID,
			Market:     in.Market,
			Selection:  in.Selection,
			Point:      in.Point,
			Odds:       li.Odds,
			StakeCents: 0, // stake fica no parlay
			Status:     StatusPending,
		})
	}

	combined, combinedDec, err := CombineParlayOdds(legOdds)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	payout := decimal.NewFromInt(stakeCents).Mul(combinedDec).Round(0).IntPart()

	parlay := &Parlay{
		ID:                   uuid.NewString(),
		UserID:               userID,
		StakeCents:           stakeCents,
		CombinedOdds:         combined,
		PotentialPayoutCents: payout,
		Status:               StatusPending,
	}
	if err := s.Repo.CreateParlay(ctx, parlay, legs); err != nil {
		return nil, nil, fmt.Errorf("create parlay: %w", err)
	}

	if err := s.reserve(ctx, userID, stakeCents, parlay.ID); err != nil {
		if derr := s.Repo.DeleteUnsettledParlay(ctx, parlay.ID); derr != nil {
			s.Log.Error("parlay compensation delete failed",
				zap.String("parlayId", parlay.ID), zap.Error(derr))
		}
		return nil, nil, err
	}

	for i := range legs {
		s.publishPlaced(ctx, &legs[i], parlay.ID)
	}
	return parlay, legs, nil
}

// validateLeg checa mercado, seleção, stake e o estado do jogo.
func (s *Service) validateLeg(ctx context.Context, in *PlaceBetInput) (*games.Game, error) {
	if !ValidMarket(in.Market) {
		return nil, fmt.Errorf("%w: unknown market %q", ErrValidation, in.Market)
	}
	if in.StakeCents <= 0 {
		return nil, fmt.Errorf("%w: stake must be positive", ErrValidation)
	}
	if !ValidAmericanOdds(in.Odds) {
		return nil, fmt.Errorf("%w: %v", ErrValidation, ErrInvalidOdds)
	}

	g, err := s.Games.GetByID(ctx, in.GameID)
	if err != nil {
		if errors.Is(err, games.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load game: %w", err)
	}
	if g.Status != games.StatusScheduled {
		return nil, ErrGameFinished
	}

	switch in.Market {
	case MarketMoneyline:
		if !teams.Equal(in.Selection, g.HomeTeam) && !teams.Equal(in.Selection, g.AwayTeam) {
			return nil, fmt.Errorf("%w: selection %q is not playing", ErrValidation, in.Selection)
		}
		in.Point = nil
	case MarketSpread:
		if !teams.Equal(in.Selection, g.HomeTeam) && !teams.Equal(in.Selection, g.AwayTeam) {
			return nil, fmt.Errorf("%w: selection %q is not playing", ErrValidation, in.Selection)
		}
		if in.Point == nil {
			return nil, fmt.Errorf("%w: spread requires a point", ErrValidation)
		}
	case MarketTotal:
		if in.Selection != SelectionOver && in.Selection != SelectionUnder {
			return nil, fmt.Errorf("%w: total selection must be over or under", ErrValidation)
		}
		if in.Point == nil {
			return nil, fmt.Errorf("%w: total requires a point", ErrValidation)
		}
	}
	return g, nil
}

// checkDrift compara a odd enviada com as linhas correntes no snapshot.
// Cache frio não bloqueia a aposta; linha presente e divergente bloqueia.
func (s *Service) checkDrift(ctx context.Context, g *games.Game, in *PlaceBetInput) error {
	lines, ok, err := s.Prices.Get(ctx, in.GameID)
	if err != nil {
		s.Log.Warn("odds snapshot read failed", zap.String("gameId", in.GameID), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	sent, err := DecimalOdds(in.Odds)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var firstCurrent int
	found := false
	for i := range lines {
		if lines[i].Market != in.Market {
			continue
		}
		cur := lines[i].HomePrice
		if (in.Market == MarketTotal && in.Selection == SelectionUnder) ||
			(in.Market != MarketTotal && teams.Equal(in.Selection, g.AwayTeam)) {
			cur = lines[i].AwayPrice
		}
		if !found {
			firstCurrent = cur
			found = true
		}

		curDec, err := DecimalOdds(cur)
		if err != nil {
			continue
		}
		// deriva relativa sobre a odd decimal, em basis points
		drift := sent.Sub(curDec).Abs().Div(curDec).Mul(decimal.NewFromInt(10_000))
		if drift.LessThanOrEqual(decimal.NewFromInt(s.DriftBps)) {
			return nil // alguma casa ainda oferece essa odd
		}
	}

	if !found {
		return nil // nenhuma linha corrente pro mercado, não dá pra comparar
	}
	return &OddsDriftError{Market: in.Market, CurrentOdds: firstCurrent}
}

func (s *Service) reserve(ctx context.Context, userID string, amount int64, externalRef string) error {
	if _, err := s.Wallet.GetOrCreate(ctx, userID); err != nil {
		return fmt.Errorf("wallet get: %w", err)
	}
	if _, err := s.Wallet.Reserve(ctx, userID, amount, externalRef); err != nil {
		return err
	}
	return nil
}

func (s *Service) publishPlaced(ctx context.Context, b *Bet, parlayID string) {
	// a reserva de perna de parlay é feita pelo id do parlay, não da perna
	reservedRef := b.ID
	if parlayID != "" {
		reservedRef = parlayID
	}

	// falha de publicação não derruba a aposta: o sweep liquida igual
	err := s.Publ.PublishBetPlaced(ctx, events.BetPlaced{
		BetID:       b.ID,
		UserID:      b.UserID,
		GameID:      b.GameID,
		Market:      b.Market,
		Selection:   b.Selection,
		Point:       b.Point,
		StakeCents:  b.StakeCents,
		Odds:        b.Odds,
		ParlayID:    parlayID,
		ReservedRef: reservedRef,
	})
	if err != nil {
		s.Log.Warn("publish bet_placed", zap.String("betId", b.ID), zap.Error(err))
	}
}
