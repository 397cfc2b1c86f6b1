package fantasy

import "time"

// PlatformSleeper é a única plataforma integrada hoje.
const PlatformSleeper = "sleeper"

// Account vincula um usuário nosso a uma conta de fantasy externa.
type Account struct {
	ID               string
	UserID           string
	Platform         string
	ExternalUserID   string
	ExternalUsername string
	CreatedAt        time.Time
}

// League é uma liga sincronizada de uma conta vinculada.
type League struct {
	ID           string
	AccountID    string
	ExternalID   string
	Name         string
	Season       string
	TotalRosters int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Roster é um elenco da liga com o record da temporada.
type Roster struct {
	ID               string
	LeagueID         string
	ExternalRosterID int
	OwnerExternalID  string
	OwnerName        string
	Wins             int
	Losses           int
	Ties             int
	PointsFor        float64
	Players          []string
	UpdatedAt        time.Time
}
