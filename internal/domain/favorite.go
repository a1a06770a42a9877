package domain

import "time"

// Favorite is a game a user bookmarked, denormalized for display.
type Favorite struct {
	GameID  string    `json:"gameId"`
	Title   string    `json:"title"`
	Cover   string    `json:"cover"`
	Year    Year      `json:"year"`
	Rating  float64   `json:"rating"`
	AddedAt time.Time `json:"addedAt"`
}

// Favorites is the per-user favorites document.
type Favorites struct {
	UserID string     `json:"userId"`
	Items  []Favorite `json:"items"`
}

// Contains reports whether gameID is already favorited.
func (f *Favorites) Contains(gameID string) bool {
	for _, item := range f.Items {
		if item.GameID == gameID {
			return true
		}
	}
	return false
}

// Remove drops gameID and reports whether anything changed.
func (f *Favorites) Remove(gameID string) bool {
	kept := f.Items[:0]
	for _, item := range f.Items {
		if item.GameID != gameID {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(f.Items)
	f.Items = kept
	return removed
}
