package fantasy

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// sleeperAPI é o subconjunto do client usado pelo serviço.
type sleeperAPI interface {
	User(ctx context.Context, username string) (*SleeperUser, error)
	Leagues(ctx context.Context, userID, season string) ([]SleeperLeague, error)
	Rosters(ctx context.Context, leagueID string) ([]SleeperRoster, error)
	LeagueUsers(ctx context.Context, leagueID string) (map[string]string, error)
}

type accountStore interface {
	CreateAccount(ctx context.Context, a *Account) (string, error)
	GetAccountForUser(ctx context.Context, userID, accountID string) (*Account, error)
	UpsertLeague(ctx context.Context, l *League) (string, error)
	GetLeagueForUser(ctx context.Context, userID, leagueID string) (*League, error)
	UpsertRoster(ctx context.Context, r *Roster) error
}

// Service orquestra o vínculo de contas Sleeper e a sincronização de
// ligas e elencos.
type Service struct {
	Log    *zap.Logger
	Client sleeperAPI
	Repo   accountStore
}

// CurrentSeason resolve a temporada NFL vigente na Sleeper. A temporada do
// ano X roda de setembro a fevereiro, então de janeiro a março ainda
// consultamos a do ano anterior.
func CurrentSeason(now time.Time) string {
	year := now.Year()
	if now.Month() < time.April {
		year--
	}
	return strconv.Itoa(year)
}

// Link resolve o username na Sleeper, vincula a conta e faz a primeira
// sincronização de ligas e elencos.
func (s *Service) Link(ctx context.Context, userID, username string) (*Account, error) {
	su, err := s.Client.User(ctx, username)
	if err != nil {
		return nil, err
	}

	a := &Account{
		UserID:           userID,
		Platform:         PlatformSleeper,
		ExternalUserID:   su.UserID,
		ExternalUsername: su.Username,
	}
	id, err := s.Repo.CreateAccount(ctx, a)
	if err != nil {
		return nil, err
	}
	a.ID = id

	if err := s.SyncAccount(ctx, a); err != nil {
		// o vínculo fica; a sincronização pode ser repetida depois
		s.Log.Warn("initial fantasy sync failed",
			zap.String("accountId", a.ID), zap.Error(err))
	}
	return a, nil
}

// SyncAccount baixa as ligas da temporada corrente e os elencos de cada uma.
func (s *Service) SyncAccount(ctx context.Context, a *Account) error {
	season := CurrentSeason(time.Now())
	leagues, err := s.Client.Leagues(ctx, a.ExternalUserID, season)
	if err != nil {
		return fmt.Errorf("fetch leagues: %w", err)
	}

	for _, sl := range leagues {
		leagueID, err := s.Repo.UpsertLeague(ctx, &League{
			AccountID:    a.ID,
			ExternalID:   sl.LeagueID,
			Name:         sl.Name,
			Season:       sl.Season,
			TotalRosters: sl.TotalRosters,
		})
		if err != nil {
			return fmt.Errorf("upsert league %s: %w", sl.LeagueID, err)
		}
		if err := s.syncRosters(ctx, leagueID, sl.LeagueID); err != nil {
			s.Log.Warn("roster sync failed",
				zap.String("leagueId", sl.LeagueID), zap.Error(err))
		}
	}

	s.Log.Info("fantasy account synced",
		zap.String("accountId", a.ID),
		zap.String("season", season),
		zap.Int("leagues", len(leagues)))
	return nil
}

// SyncLeague re-sincroniza uma liga específica do usuário.
func (s *Service) SyncLeague(ctx context.Context, userID, leagueID string) error {
	l, err := s.Repo.GetLeagueForUser(ctx, userID, leagueID)
	if err != nil {
		return err
	}
	return s.syncRosters(ctx, l.ID, l.ExternalID)
}

func (s *Service) syncRosters(ctx context.Context, leagueID, externalLeagueID string) error {
	rosters, err := s.Client.Rosters(ctx, externalLeagueID)
	if err != nil {
		return fmt.Errorf("fetch rosters: %w", err)
	}
	owners, err := s.Client.LeagueUsers(ctx, externalLeagueID)
	if err != nil {
		// sem os nomes a sincronização ainda vale
		s.Log.Warn("fetch league users failed",
			zap.String("leagueId", externalLeagueID), zap.Error(err))
		owners = map[string]string{}
	}

	for _, sr := range rosters {
		if err := s.Repo.UpsertRoster(ctx, &Roster{
			LeagueID:         leagueID,
			ExternalRosterID: sr.RosterID,
			OwnerExternalID:  sr.OwnerID,
			OwnerName:        owners[sr.OwnerID],
			Wins:             sr.Settings.Wins,
			Losses:           sr.Settings.Losses,
			Ties:             sr.Settings.Ties,
			PointsFor:        sr.PointsFor(),
			Players:          sr.Players,
		}); err != nil {
			return fmt.Errorf("upsert roster %d: %w", sr.RosterID, err)
		}
	}
	return nil
}
