package settlement

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/picks"
	"github.com/benyetra/yetai-backend/pkg/contracts/events"
)

type settleCall struct {
	betID  string
	status string
	result int64
}

type fakeStore struct {
	settleErr  error
	notApplied bool
	calls      []settleCall

	parlay      *bets.Parlay
	legs        []bets.Bet
	parlayCalls []settleCall
}

func (f *fakeStore) ListSettleable(_ context.Context, _ int) ([]PendingBet, error) {
	return nil, nil
}

func (f *fakeStore) ListSettleableByGame(_ context.Context, _ string) ([]PendingBet, error) {
	return nil, nil
}

func (f *fakeStore) SettleBet(_ context.Context, betID, newStatus string, resultCents int64, _ string) (bool, error) {
	if f.settleErr != nil {
		return false, f.settleErr
	}
	if f.notApplied {
		return false, nil
	}
	f.calls = append(f.calls, settleCall{betID, newStatus, resultCents})
	return true, nil
}

func (f *fakeStore) GetParlayWithLegs(_ context.Context, _ string) (*bets.Parlay, []bets.Bet, error) {
	return f.parlay, f.legs, nil
}

func (f *fakeStore) SettleParlay(_ context.Context, parlayID, newStatus string, resultCents int64) (bool, error) {
	f.parlayCalls = append(f.parlayCalls, settleCall{parlayID, newStatus, resultCents})
	return true, nil
}

type walletCall struct {
	op          string
	externalRef string
	amount      int64
}

type fakeWallet struct {
	err   error
	calls []walletCall
}

func (f *fakeWallet) Commit(_ context.Context, _, ref string) error {
	f.calls = append(f.calls, walletCall{"commit", ref, 0})
	return f.err
}

func (f *fakeWallet) Refund(_ context.Context, _, ref string) error {
	f.calls = append(f.calls, walletCall{"refund", ref, 0})
	return f.err
}

func (f *fakeWallet) Payout(_ context.Context, _, ref string, payoutCents int64) error {
	f.calls = append(f.calls, walletCall{"payout", ref, payoutCents})
	return f.err
}

type fakeSettledPublisher struct {
	settled []events.BetSettled
	dlq     []string // keys
}

func (f *fakeSettledPublisher) PublishBetSettled(_ context.Context, e events.BetSettled) error {
	f.settled = append(f.settled, e)
	return nil
}

func (f *fakeSettledPublisher) PublishDLQ(_ context.Context, key string, _ []byte) error {
	f.dlq = append(f.dlq, key)
	return nil
}

type fakePickStore struct {
	list    []picks.Pick
	settled []settleCall
}

func (f *fakePickStore) ListSettleable(_ context.Context, _ int) ([]picks.Pick, error) {
	return f.list, nil
}

func (f *fakePickStore) Settle(_ context.Context, id, status, _ string) error {
	f.settled = append(f.settled, settleCall{betID: id, status: status})
	return nil
}

type fakeGameGetter struct {
	games map[string]*games.Game
}

func (f *fakeGameGetter) GetByID(_ context.Context, id string) (*games.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, games.ErrNotFound
	}
	return g, nil
}

func newTestWorker(repo *fakeStore, w *fakeWallet, pub *fakeSettledPublisher) *Worker {
	return &Worker{
		Log:         zap.NewNop(),
		Repo:        repo,
		Wallet:      w,
		Publ:        pub,
		MaxAttempts: 3,
		failures:    make(map[string]int),
		dead:        make(map[string]bool),
	}
}

func pendingBet(status string) PendingBet {
	home, away := 27, 20
	return PendingBet{
		Bet: bets.Bet{
			ID:                   "b1",
			UserID:               "u1",
			GameID:               "g1",
			Market:               bets.MarketMoneyline,
			Selection:            "Kansas City Chiefs",
			Odds:                 150,
			StakeCents:           100_00,
			PotentialPayoutCents: 250_00,
			Status:               status,
		},
		Game: games.Game{
			ID:        "g1",
			HomeTeam:  "Kansas City Chiefs",
			AwayTeam:  "Buffalo Bills",
			HomeScore: &home,
			AwayScore: &away,
			Status:    games.StatusFinal,
		},
	}
}

func TestSettleOneWin(t *testing.T) {
	repo := &fakeStore{}
	wlt := &fakeWallet{}
	pub := &fakeSettledPublisher{}
	w := newTestWorker(repo, wlt, pub)

	pb := pendingBet(bets.StatusPending)
	w.settleOne(context.Background(), &pb)

	if len(repo.calls) != 1 {
		t.Fatalf("settle calls = %d, want 1", len(repo.calls))
	}
	c := repo.calls[0]
	if c.status != bets.StatusWon || c.result != 250_00 {
		t.Errorf("settled %s/%d, want won/25000", c.status, c.result)
	}
	if len(wlt.calls) != 1 || wlt.calls[0].op != "payout" || wlt.calls[0].amount != 250_00 {
		t.Errorf("wallet calls = %+v, want payout 25000", wlt.calls)
	}
	// reserva liberada pelo id da aposta
	if wlt.calls[0].externalRef != "b1" {
		t.Errorf("external ref = %s, want b1", wlt.calls[0].externalRef)
	}
	if len(pub.settled) != 1 || pub.settled[0].Result != bets.StatusWon {
		t.Errorf("bet_settled not published: %+v", pub.settled)
	}
}

func TestSettleOneLossAndPush(t *testing.T) {
	// derrota: o stake reservado é consumido
	repo := &fakeStore{}
	wlt := &fakeWallet{}
	w := newTestWorker(repo, wlt, &fakeSettledPublisher{})

	pb := pendingBet(bets.StatusPending)
	pb.Bet.Selection = "Buffalo Bills"
	w.settleOne(context.Background(), &pb)
	if len(wlt.calls) != 1 || wlt.calls[0].op != "commit" {
		t.Errorf("loss wallet calls = %+v, want commit", wlt.calls)
	}

	// empate no moneyline: refund
	repo2 := &fakeStore{}
	wlt2 := &fakeWallet{}
	w2 := newTestWorker(repo2, wlt2, &fakeSettledPublisher{})

	pb2 := pendingBet(bets.StatusPending)
	*pb2.Game.AwayScore = *pb2.Game.HomeScore
	w2.settleOne(context.Background(), &pb2)
	if len(wlt2.calls) != 1 || wlt2.calls[0].op != "refund" {
		t.Errorf("push wallet calls = %+v, want refund", wlt2.calls)
	}
}

func TestSettleOneSkipsMissingScores(t *testing.T) {
	repo := &fakeStore{}
	wlt := &fakeWallet{}
	w := newTestWorker(repo, wlt, &fakeSettledPublisher{})

	pb := pendingBet(bets.StatusPending)
	pb.Game.HomeScore = nil
	w.settleOne(context.Background(), &pb)

	if len(repo.calls) != 0 || len(wlt.calls) != 0 {
		t.Errorf("bet without scores must stay untouched: %+v %+v", repo.calls, wlt.calls)
	}
	// não conta como falha: o feed vai corrigir
	if w.failures["b1"] != 0 {
		t.Errorf("failures = %d, want 0", w.failures["b1"])
	}
}

func TestSettleOneAlreadySettledSkipsWallet(t *testing.T) {
	repo := &fakeStore{notApplied: true}
	wlt := &fakeWallet{}
	pub := &fakeSettledPublisher{}
	w := newTestWorker(repo, wlt, pub)

	pb := pendingBet(bets.StatusPending)
	w.settleOne(context.Background(), &pb)

	if len(wlt.calls) != 0 || len(pub.settled) != 0 {
		t.Errorf("concurrent settle must not touch wallet: %+v %+v", wlt.calls, pub.settled)
	}
}

func TestSettleOneRoutesToDLQAfterMaxAttempts(t *testing.T) {
	repo := &fakeStore{settleErr: errors.New("db down")}
	pub := &fakeSettledPublisher{}
	w := newTestWorker(repo, &fakeWallet{}, pub)

	pb := pendingBet(bets.StatusPending)
	for i := 0; i < w.MaxAttempts; i++ {
		w.settleOne(context.Background(), &pb)
	}
	if len(pub.dlq) != 1 || pub.dlq[0] != "b1" {
		t.Fatalf("dlq = %v, want [b1]", pub.dlq)
	}

	// aposta morta sai do sweep
	repo.settleErr = nil
	w.settleOne(context.Background(), &pb)
	if len(repo.calls) != 0 {
		t.Errorf("dead bet was retried: %+v", repo.calls)
	}
}

func TestSettleOneWalletFailureGoesToDLQ(t *testing.T) {
	repo := &fakeStore{}
	wlt := &fakeWallet{err: errors.New("wallet down")}
	pub := &fakeSettledPublisher{}
	w := newTestWorker(repo, wlt, pub)

	pb := pendingBet(bets.StatusPending)
	w.settleOne(context.Background(), &pb)

	// a liquidação fica, o acerto de carteira vai pra DLQ
	if len(repo.calls) != 1 {
		t.Fatalf("settle calls = %d, want 1", len(repo.calls))
	}
	if len(pub.dlq) != 1 {
		t.Errorf("dlq = %v, want one entry", pub.dlq)
	}
}

func TestResolveParlay(t *testing.T) {
	parlayID := "p1"
	repo := &fakeStore{
		parlay: &bets.Parlay{
			ID:         parlayID,
			UserID:     "u1",
			StakeCents: 50_00,
			Status:     bets.StatusPending,
		},
		legs: []bets.Bet{
			{ID: "l1", Odds: 100, Status: bets.StatusWon},
			{ID: "l2", Odds: 100, Status: bets.StatusWon},
		},
	}
	wlt := &fakeWallet{}
	w := newTestWorker(repo, wlt, &fakeSettledPublisher{})

	w.resolveParlay(context.Background(), parlayID)

	if len(repo.parlayCalls) != 1 {
		t.Fatalf("parlay settle calls = %d, want 1", len(repo.parlayCalls))
	}
	c := repo.parlayCalls[0]
	if c.status != bets.StatusWon || c.result != 200_00 {
		t.Errorf("parlay settled %s/%d, want won/20000", c.status, c.result)
	}
	// a reserva do parlay usa o id do parlay
	if len(wlt.calls) != 1 || wlt.calls[0].externalRef != parlayID {
		t.Errorf("wallet calls = %+v, want payout on %s", wlt.calls, parlayID)
	}
}

func TestResolveParlayWaitsForPendingLegs(t *testing.T) {
	repo := &fakeStore{
		parlay: &bets.Parlay{ID: "p1", Status: bets.StatusPending},
		legs: []bets.Bet{
			{ID: "l1", Odds: 100, Status: bets.StatusWon},
			{ID: "l2", Odds: 100, Status: bets.StatusPending},
		},
	}
	w := newTestWorker(repo, &fakeWallet{}, &fakeSettledPublisher{})

	w.resolveParlay(context.Background(), "p1")
	if len(repo.parlayCalls) != 0 {
		t.Errorf("parlay with pending leg was settled: %+v", repo.parlayCalls)
	}
}

func TestSettlePicks(t *testing.T) {
	home, away := 30, 20
	gid := "g1"
	ps := &fakePickStore{
		list: []picks.Pick{{
			ID:        "pk1",
			GameID:    &gid,
			Market:    bets.MarketMoneyline,
			Selection: "Kansas City Chiefs",
			Odds:      -120,
		}},
	}
	w := newTestWorker(&fakeStore{}, &fakeWallet{}, &fakeSettledPublisher{})
	w.Picks = ps
	w.Games = &fakeGameGetter{games: map[string]*games.Game{
		"g1": {
			ID:        "g1",
			HomeTeam:  "Kansas City Chiefs",
			AwayTeam:  "Buffalo Bills",
			HomeScore: &home,
			AwayScore: &away,
			Status:    games.StatusFinal,
		},
	}}

	w.settlePicks(context.Background())

	if len(ps.settled) != 1 || ps.settled[0].status != bets.StatusWon {
		t.Errorf("pick settle calls = %+v, want won", ps.settled)
	}
}
