package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/picks"
	"github.com/benyetra/yetai-backend/internal/shared/kafka"
	"github.com/benyetra/yetai-backend/pkg/contracts/events"
)

var (
	settledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_bets_settled_total",
		Help: "Apostas liquidadas por desfecho.",
	}, []string{"result"})

	settleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_failures_total",
		Help: "Falhas ao liquidar uma aposta (serão retentadas).",
	})

	dlqTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_dlq_total",
		Help: "Apostas roteadas pra DLQ após falhas repetidas.",
	})

	picksSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_picks_settled_total",
		Help: "Picks curados liquidados automaticamente por desfecho.",
	}, []string{"result"})
)

type store interface {
	ListSettleable(ctx context.Context, limit int) ([]PendingBet, error)
	ListSettleableByGame(ctx context.Context, gameID string) ([]PendingBet, error)
	SettleBet(ctx context.Context, betID, newStatus string, resultCents int64, detail string) (bool, error)
	GetParlayWithLegs(ctx context.Context, parlayID string) (*bets.Parlay, []bets.Bet, error)
	SettleParlay(ctx context.Context, parlayID, newStatus string, resultCents int64) (bool, error)
}

type walletOps interface {
	Commit(ctx context.Context, userID, externalRef string) error
	Refund(ctx context.Context, userID, externalRef string) error
	Payout(ctx context.Context, userID, externalRef string, payoutCents int64) error
}

type pickStore interface {
	ListSettleable(ctx context.Context, limit int) ([]picks.Pick, error)
	Settle(ctx context.Context, id, status, note string) error
}

type gameGetter interface {
	GetByID(ctx context.Context, id string) (*games.Game, error)
}

// Worker liquida apostas pendentes por dois caminhos: o evento game_final
// (rápido) e o sweep periódico (recuperação). Ambos convergem em settleOne,
// que é idempotente pelo guard de status no banco.
type Worker struct {
	Log      *zap.Logger
	Repo     store
	Wallet   walletOps
	Picks    pickStore
	Games    gameGetter
	Publ     Publisher
	Reader   *kafka.Reader // consumer de game_final; nil desliga o caminho rápido
	Interval time.Duration

	// após MaxAttempts falhas a aposta vai pra DLQ e sai do sweep
	MaxAttempts int

	mu       sync.Mutex
	failures map[string]int
	dead     map[string]bool
}

// Run bloqueia até o contexto encerrar.
func (w *Worker) Run(ctx context.Context) {
	if w.MaxAttempts <= 0 {
		w.MaxAttempts = 3
	}
	w.failures = make(map[string]int)
	w.dead = make(map[string]bool)

	if w.Reader != nil {
		go w.consumeFinals(ctx)
	}

	tick := time.NewTicker(w.Interval)
	defer tick.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			w.sweep(ctx)
		}
	}
}

// consumeFinals liquida as apostas de um jogo assim que ele encerra.
func (w *Worker) consumeFinals(ctx context.Context) {
	for {
		_, value, err := kafka.ReadNext(ctx, w.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.Log.Warn("kafka read game_final", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var ev events.GameFinal
		if err := json.Unmarshal(value, &ev); err != nil {
			w.Log.Error("unmarshal game_final", zap.Error(err))
			continue
		}

		pending, err := w.Repo.ListSettleableByGame(ctx, ev.GameID)
		if err != nil {
			w.Log.Error("list settleable by game", zap.String("gameId", ev.GameID), zap.Error(err))
			continue
		}
		w.Log.Info("settling game",
			zap.String("gameId", ev.GameID), zap.Int("pendingBets", len(pending)))
		for i := range pending {
			w.settleOne(ctx, &pending[i])
		}
	}
}

// sweep é o caminho de recuperação: pega tudo que o caminho rápido perdeu
// (worker fora do ar, evento não publicado, falha transitória).
func (w *Worker) sweep(ctx context.Context) {
	pending, err := w.Repo.ListSettleable(ctx, 0)
	if err != nil {
		w.Log.Error("settlement sweep list", zap.Error(err))
		return
	}
	if len(pending) > 0 {
		w.Log.Info("settlement sweep", zap.Int("pendingBets", len(pending)))
	}
	for i := range pending {
		w.settleOne(ctx, &pending[i])
	}

	w.settlePicks(ctx)
}

// settleOne liquida uma aposta: grade -> update transacional -> carteira ->
// evento. Falhas são contadas e, passado o limite, roteadas pra DLQ.
func (w *Worker) settleOne(ctx context.Context, pb *PendingBet) {
	b := &pb.Bet
	if w.isDead(b.ID) {
		return
	}

	outcome, err := Grade(b, &pb.Game)
	if err != nil {
		if errors.Is(err, ErrScoresMissing) {
			// problema do feed, não da aposta: fica pro próximo ciclo
			w.Log.Warn("skipping bet, game has no scores",
				zap.String("betId", b.ID), zap.String("gameId", b.GameID))
			return
		}
		w.recordFailure(ctx, b, err)
		return
	}

	var result int64
	if b.ParlayID == nil {
		result = ResultAmount(b, outcome)
	}

	detail := fmt.Sprintf("%s %s@%d graded %s (score %d-%d)",
		b.Market, b.Selection, b.Odds, outcome, *pb.Game.HomeScore, *pb.Game.AwayScore)
	applied, err := w.Repo.SettleBet(ctx, b.ID, outcome, result, detail)
	if err != nil {
		w.recordFailure(ctx, b, err)
		return
	}
	if !applied {
		return // outro worker liquidou primeiro
	}
	settledTotal.WithLabelValues(outcome).Inc()

	// carteira: apostas simples movimentam pelo id da própria aposta;
	// pernas de parlay acertam na resolução do parlay
	if b.ParlayID == nil {
		if err := w.applyWallet(ctx, b.UserID, b.ID, outcome, result); err != nil {
			w.Log.Error("wallet settle failed",
				zap.String("betId", b.ID), zap.String("result", outcome), zap.Error(err))
			w.toDLQ(ctx, b.ID, map[string]any{
				"bet_id": b.ID, "user_id": b.UserID, "result": outcome,
				"amount_cents": result, "reason": "wallet: " + err.Error(),
			})
		}
	}

	w.publishSettled(ctx, b.ID, b.UserID, b.GameID, outcome, b.StakeCents, result)
	w.Log.Info("bet settled",
		zap.String("betId", b.ID), zap.String("result", outcome),
		zap.Int64("resultCents", result))

	if b.ParlayID != nil {
		w.resolveParlay(ctx, *b.ParlayID)
	}
}

// resolveParlay fecha o parlay quando a última perna liquida.
func (w *Worker) resolveParlay(ctx context.Context, parlayID string) {
	parlay, legs, err := w.Repo.GetParlayWithLegs(ctx, parlayID)
	if err != nil {
		w.Log.Error("load parlay", zap.String("parlayId", parlayID), zap.Error(err))
		return
	}
	if parlay.Status != bets.StatusPending {
		return
	}

	status, pushedLegs, done := GradeParlay(legs)
	if !done {
		return
	}
	result := ParlayResultAmount(parlay, legs, status, pushedLegs)

	applied, err := w.Repo.SettleParlay(ctx, parlayID, status, result)
	if err != nil {
		w.Log.Error("settle parlay", zap.String("parlayId", parlayID), zap.Error(err))
		return
	}
	if !applied {
		return
	}
	settledTotal.WithLabelValues(status).Inc()

	if err := w.applyWallet(ctx, parlay.UserID, parlayID, status, result); err != nil {
		w.Log.Error("wallet settle failed",
			zap.String("parlayId", parlayID), zap.Error(err))
		w.toDLQ(ctx, parlayID, map[string]any{
			"parlay_id": parlayID, "user_id": parlay.UserID, "result": status,
			"amount_cents": result, "reason": "wallet: " + err.Error(),
		})
	}

	w.publishSettled(ctx, parlayID, parlay.UserID, "", status, parlay.StakeCents, result)
	w.Log.Info("parlay settled",
		zap.String("parlayId", parlayID), zap.String("result", status),
		zap.Int64("resultCents", result))
}

// settlePicks aplica o mesmo motor nos picks curados com jogo vinculado.
func (w *Worker) settlePicks(ctx context.Context) {
	if w.Picks == nil {
		return
	}
	list, err := w.Picks.ListSettleable(ctx, 0)
	if err != nil {
		w.Log.Error("list settleable picks", zap.Error(err))
		return
	}

	for i := range list {
		pk := &list[i]
		g, err := w.Games.GetByID(ctx, *pk.GameID)
		if err != nil {
			w.Log.Warn("pick game load", zap.String("pickId", pk.ID), zap.Error(err))
			continue
		}

		outcome, err := Grade(&bets.Bet{
			Market:    pk.Market,
			Selection: pk.Selection,
			Point:     pk.Point,
			Odds:      pk.Odds,
		}, g)
		if err != nil {
			if !errors.Is(err, ErrScoresMissing) {
				w.Log.Warn("pick grade failed", zap.String("pickId", pk.ID), zap.Error(err))
			}
			continue
		}

		note := fmt.Sprintf("auto-settled: final %d-%d", *g.HomeScore, *g.AwayScore)
		if err := w.Picks.Settle(ctx, pk.ID, outcome, note); err != nil {
			if !errors.Is(err, picks.ErrAlreadySettled) {
				w.Log.Error("pick settle", zap.String("pickId", pk.ID), zap.Error(err))
			}
			continue
		}
		picksSettled.WithLabelValues(outcome).Inc()
		w.Log.Info("pick settled", zap.String("pickId", pk.ID), zap.String("result", outcome))
	}
}

// applyWallet traduz o desfecho na operação de carteira correspondente.
// Todas as operações são idempotentes pela reserva (external_ref).
func (w *Worker) applyWallet(ctx context.Context, userID, externalRef, outcome string, resultCents int64) error {
	switch outcome {
	case bets.StatusWon:
		return w.Wallet.Payout(ctx, userID, externalRef, resultCents)
	case bets.StatusPushed:
		return w.Wallet.Refund(ctx, userID, externalRef)
	default:
		return w.Wallet.Commit(ctx, userID, externalRef)
	}
}

func (w *Worker) publishSettled(ctx context.Context, betID, userID, gameID, result string, stake, amount int64) {
	err := w.Publ.PublishBetSettled(ctx, events.BetSettled{
		BetID:             betID,
		UserID:            userID,
		GameID:            gameID,
		Result:            result,
		StakeCents:        stake,
		ResultAmountCents: amount,
		Ts:                time.Now().UTC(),
	})
	if err != nil {
		w.Log.Warn("publish bet_settled", zap.String("betId", betID), zap.Error(err))
	}
}

// recordFailure conta a falha e, no limite, manda pra DLQ e tira do sweep.
func (w *Worker) recordFailure(ctx context.Context, b *bets.Bet, cause error) {
	settleFailures.Inc()
	w.Log.Error("settle bet failed", zap.String("betId", b.ID), zap.Error(cause))

	w.mu.Lock()
	w.failures[b.ID]++
	n := w.failures[b.ID]
	w.mu.Unlock()

	if n >= w.MaxAttempts {
		w.toDLQ(ctx, b.ID, map[string]any{
			"bet_id": b.ID, "user_id": b.UserID, "game_id": b.GameID,
			"market": b.Market, "selection": b.Selection,
			"attempts": n, "reason": cause.Error(),
		})
		w.mu.Lock()
		w.dead[b.ID] = true
		w.mu.Unlock()
	}
}

func (w *Worker) toDLQ(ctx context.Context, key string, payload map[string]any) {
	dlqTotal.Inc()
	b, _ := json.Marshal(payload)
	if err := w.Publ.PublishDLQ(ctx, key, b); err != nil {
		w.Log.Error("publish dlq", zap.String("key", key), zap.Error(err))
	}
}

func (w *Worker) isDead(betID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dead[betID]
}
