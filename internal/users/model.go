package users

import "time"

// Tiers de assinatura. Controlam a visibilidade dos picks curados.
const (
	TierFree  = "free"
	TierPro   = "pro"
	TierElite = "elite"
)

// ValidTier informa se o tier é um dos três aceitos.
func ValidTier(t string) bool {
	return t == TierFree || t == TierPro || t == TierElite
}

// User é o modelo persistido no Postgres.
type User struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  string
	FirstName     string
	LastName      string
	Tier          string
	IsAdmin       bool
	IsHidden      bool
	FavoriteTeams []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
