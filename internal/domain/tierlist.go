package domain

import (
	"slices"
	"time"
)

// TierGame is a game placed in a tier. It carries just enough to render a card.
type TierGame struct {
	GameID string `json:"gameId"`
	Title  string `json:"title"`
	Cover  string `json:"cover"`
	Year   Year   `json:"year"`
}

// Tier is one labelled row of a tier list.
type Tier struct {
	Name  string     `json:"name"`
	Color string     `json:"color"`
	Games []TierGame `json:"games"`
}

// TierList is a user-ranked arrangement of games.
type TierList struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	IsPublic    bool      `json:"isPublic"`
	Likes       int       `json:"likes"`
	Tiers       []Tier    `json:"tiers"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultTiers returns the S through F rows a new list starts with.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "S", Color: "#ff7675", Games: []TierGame{}},
		{Name: "A", Color: "#fdcb6e", Games: []TierGame{}},
		{Name: "B", Color: "#74b9ff", Games: []TierGame{}},
		{Name: "C", Color: "#55efc4", Games: []TierGame{}},
		{Name: "D", Color: "#a29bfe", Games: []TierGame{}},
		{Name: "F", Color: "#636e72", Games: []TierGame{}},
	}
}

// IsOwnedBy reports whether userID created the list.
func (t *TierList) IsOwnedBy(userID string) bool {
	return userID != "" && t.UserID == userID
}

// VisibleTo reports whether userID (possibly empty) may read the list.
func (t *TierList) VisibleTo(userID string) bool {
	return t.IsPublic || t.IsOwnedBy(userID)
}

// GameCount returns the number of games placed across all tiers.
func (t *TierList) GameCount() int {
	n := 0
	for _, tier := range t.Tiers {
		n += len(tier.Games)
	}
	return n
}

// NormalizeTiers makes every tier's game slice non-nil.
func NormalizeTiers(tiers []Tier) []Tier {
	out := slices.Clone(tiers)
	for i := range out {
		if out[i].Games == nil {
			out[i].Games = []TierGame{}
		}
	}
	return out
}
