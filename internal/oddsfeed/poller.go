package oddsfeed

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/pkg/contracts/events"
)

const feedSource = "the-odds-api"

var (
	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oddsfeed_polls_total",
		Help: "Ciclos de polling por feed (odds/scores) e resultado.",
	}, []string{"feed", "result"})

	linesUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsfeed_lines_upserted_total",
		Help: "Linhas de odds gravadas em odds_current.",
	})

	gamesFinalTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsfeed_games_final_total",
		Help: "Jogos que transicionaram para final.",
	})
)

// gameStore é o subconjunto do repo de jogos que o poller usa.
type gameStore interface {
	Upsert(ctx context.Context, g *games.Game) error
	ApplyScore(ctx context.Context, id string, homeScore, awayScore *int, status string) (bool, error)
	GetByID(ctx context.Context, id string) (*games.Game, error)
}

// lineStore é o subconjunto do repo de odds que o poller usa.
type lineStore interface {
	UpsertCurrent(ctx context.Context, l *Line) error
	InsertHistory(ctx context.Context, l *Line) error
	ListByGame(ctx context.Context, gameID string) ([]Line, error)
}

// Broadcaster repassa atualizações para o canal Pub/Sub consumido pelo hub WS.
type Broadcaster interface {
	Publish(ctx context.Context, payload []byte) error
}

// wsUpdate é o envelope publicado no canal de broadcast.
type wsUpdate struct {
	GameID  string `json:"gameId"`
	Payload any    `json:"payload"`
}

// Poller orquestra o ciclo de ingestão: consulta o provedor, persiste jogos e
// linhas, atualiza o snapshot Redis e emite eventos Kafka e broadcast WS.
type Poller struct {
	Log     *zap.Logger
	Client  *Client
	Games   gameStore
	Lines   lineStore
	Snap    *Snapshot
	Publ    Publisher
	Bcast   Broadcaster
	Catalog *Catalog

	OddsEvery   time.Duration
	ScoresEvery time.Duration
	ScoreDays   int // daysFrom do feed de placares
}

// Run roda os dois loops de polling até o contexto encerrar.
// O primeiro ciclo de cada feed dispara imediatamente.
func (p *Poller) Run(ctx context.Context) {
	if p.ScoreDays <= 0 {
		p.ScoreDays = 1
	}

	oddsTick := time.NewTicker(p.OddsEvery)
	scoresTick := time.NewTicker(p.ScoresEvery)
	defer oddsTick.Stop()
	defer scoresTick.Stop()

	p.pollOddsAll(ctx)
	p.pollScoresAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-oddsTick.C:
			p.pollOddsAll(ctx)
		case <-scoresTick.C:
			p.pollScoresAll(ctx)
		}
	}
}

func (p *Poller) pollOddsAll(ctx context.Context) {
	for _, sport := range p.Catalog.Active() {
		if err := p.pollOdds(ctx, sport); err != nil {
			pollsTotal.WithLabelValues("odds", "error").Inc()
			p.Log.Warn("odds poll failed", zap.String("sport", sport.Key), zap.Error(err))
			continue
		}
		pollsTotal.WithLabelValues("odds", "ok").Inc()
	}
}

func (p *Poller) pollScoresAll(ctx context.Context) {
	for _, sport := range p.Catalog.Active() {
		if err := p.pollScores(ctx, sport); err != nil {
			pollsTotal.WithLabelValues("scores", "error").Inc()
			p.Log.Warn("scores poll failed", zap.String("sport", sport.Key), zap.Error(err))
			continue
		}
		pollsTotal.WithLabelValues("scores", "ok").Inc()
	}
}

// pollOdds busca as linhas de um esporte e processa jogo a jogo.
func (p *Poller) pollOdds(ctx context.Context, sport CatalogSport) error {
	apiGames, err := p.Client.Odds(ctx, sport.Key, sport.Markets)
	if err != nil {
		return err
	}

	for i := range apiGames {
		if err := p.processGame(ctx, &apiGames[i]); err != nil {
			p.Log.Warn("process game failed",
				zap.String("gameId", apiGames[i].ID), zap.Error(err))
		}
	}

	p.Log.Debug("odds poll done",
		zap.String("sport", sport.Key),
		zap.Int("games", len(apiGames)),
		zap.Int("quotaRemaining", p.Client.Remaining()),
	)
	return nil
}

// processGame grava o jogo, suas linhas, o snapshot e emite os eventos.
func (p *Poller) processGame(ctx context.Context, g *APIGame) error {
	if err := p.Games.Upsert(ctx, &games.Game{
		ID:           g.ID,
		SportKey:     g.SportKey,
		HomeTeam:     g.HomeTeam,
		AwayTeam:     g.AwayTeam,
		CommenceTime: g.CommenceTime,
		Status:       games.StatusScheduled,
	}); err != nil {
		return err
	}

	for _, bm := range g.Bookmakers {
		for _, mk := range bm.Markets {
			line, ok := mapLine(g, bm.Key, mk)
			if !ok {
				continue
			}
			if err := p.Lines.UpsertCurrent(ctx, line); err != nil {
				return err
			}
			if err := p.Lines.InsertHistory(ctx, line); err != nil {
				p.Log.Warn("odds history insert", zap.Error(err))
			}
			linesUpserted.Inc()

			upd := events.OddsUpdate{
				GameID:    g.ID,
				SportKey:  g.SportKey,
				HomeTeam:  g.HomeTeam,
				AwayTeam:  g.AwayTeam,
				Market:    line.Market,
				Bookmaker: line.Bookmaker,
				Price: events.Price{
					Home:  line.HomePrice,
					Away:  line.AwayPrice,
					Point: line.Point,
				},
				UpdatedAt: time.Now().UTC(),
				Source:    feedSource,
			}
			if err := p.Publ.PublishOddsUpdate(ctx, upd); err != nil {
				p.Log.Warn("publish odds_update", zap.Error(err))
			}
			if b, err := json.Marshal(wsUpdate{GameID: g.ID, Payload: upd}); err == nil {
				if err := p.Bcast.Publish(ctx, b); err != nil {
					p.Log.Warn("ws broadcast", zap.Error(err))
				}
			}
		}
	}

	// Snapshot por jogo sempre a partir do banco, pra refletir todas as casas.
	lines, err := p.Lines.ListByGame(ctx, g.ID)
	if err != nil {
		return err
	}
	return p.Snap.Set(ctx, g.ID, lines)
}

// pollScores busca placares e aplica transições de status.
func (p *Poller) pollScores(ctx context.Context, sport CatalogSport) error {
	scores, err := p.Client.Scores(ctx, sport.Key, p.ScoreDays)
	if err != nil {
		return err
	}

	for i := range scores {
		sc := &scores[i]
		home, away, ok := extractScores(sc)

		status := games.StatusScheduled
		switch {
		case sc.Completed:
			status = games.StatusFinal
		case ok:
			status = games.StatusInProgress
		default:
			continue // sem placar e não encerrado: nada a aplicar
		}

		// Jogo final sem placar nunca é gravado como final (não dá pra liquidar).
		if status == games.StatusFinal && !ok {
			p.Log.Warn("final game without scores, skipping",
				zap.String("gameId", sc.ID))
			continue
		}

		becameFinal, err := p.Games.ApplyScore(ctx, sc.ID, home, away, status)
		if err != nil {
			if err == games.ErrNotFound {
				continue // placar de jogo que nunca entrou pelo feed de odds
			}
			p.Log.Warn("apply score", zap.String("gameId", sc.ID), zap.Error(err))
			continue
		}

		if becameFinal {
			gamesFinalTotal.Inc()
			ev := events.GameFinal{
				GameID:     sc.ID,
				SportKey:   sc.SportKey,
				HomeTeam:   sc.HomeTeam,
				AwayTeam:   sc.AwayTeam,
				HomeScore:  *home,
				AwayScore:  *away,
				FinishedAt: time.Now().UTC(),
			}
			if err := p.Publ.PublishGameFinal(ctx, ev); err != nil {
				// O settlement ainda pega esse jogo no sweep periódico.
				p.Log.Error("publish game_final", zap.String("gameId", sc.ID), zap.Error(err))
			}
			p.Log.Info("game final",
				zap.String("gameId", sc.ID),
				zap.String("home", sc.HomeTeam), zap.Int("homeScore", *home),
				zap.String("away", sc.AwayTeam), zap.Int("awayScore", *away),
			)
		}
	}
	return nil
}

// extractScores resolve os placares de casa e visitante pelo nome do time.
func extractScores(sc *APIScore) (home, away *int, ok bool) {
	for _, e := range sc.Scores {
		n, err := strconv.Atoi(e.Score)
		if err != nil {
			continue
		}
		v := n
		switch e.Name {
		case sc.HomeTeam:
			home = &v
		case sc.AwayTeam:
			away = &v
		}
	}
	return home, away, home != nil && away != nil
}

// mapLine converte um mercado do provedor para a nossa linha.
// Convenções: spread usa o point do time da casa; total usa over em
// HomePrice e under em AwayPrice.
func mapLine(g *APIGame, bookmaker string, mk APIMarket) (*Line, bool) {
	market, ok := providerMarkets[mk.Key]
	if !ok {
		return nil, false
	}

	l := &Line{GameID: g.ID, Market: market, Bookmaker: bookmaker}

	switch market {
	case MarketMoneyline, MarketSpread:
		var haveHome, haveAway bool
		for _, o := range mk.Outcomes {
			switch o.Name {
			case g.HomeTeam:
				l.HomePrice = o.Price
				haveHome = true
				if market == MarketSpread {
					l.Point = o.Point
				}
			case g.AwayTeam:
				l.AwayPrice = o.Price
				haveAway = true
			}
		}
		if !haveHome || !haveAway || (market == MarketSpread && l.Point == nil) {
			return nil, false
		}
	case MarketTotal:
		var haveOver, haveUnder bool
		for _, o := range mk.Outcomes {
			switch o.Name {
			case "Over":
				l.HomePrice = o.Price
				l.Point = o.Point
				haveOver = true
			case "Under":
				l.AwayPrice = o.Price
				haveUnder = true
			}
		}
		if !haveOver || !haveUnder || l.Point == nil {
			return nil, false
		}
	}
	return l, true
}
