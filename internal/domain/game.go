package domain

import (
	"encoding/json/v2"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Platform labels used on game records.
const (
	PlatformPC    = "PC"
	PlatformMac   = "Mac"
	PlatformLinux = "Linux"
)

// UnknownValue is the placeholder for absent textual fields.
const UnknownValue = "Unknown"

// Game is the canonical catalog record served by the public API.
// JSON field names are the wire contract consumed by the web client.
type Game struct {
	ID                      string   `json:"id"`
	Title                   string   `json:"title"`
	Description             string   `json:"description"`
	LongDescription         string   `json:"longDescription"`
	LongDescriptionMarkdown string   `json:"longDescriptionMarkdown,omitempty"`
	Cover                   string   `json:"cover"`
	CoverBlurHash           string   `json:"coverBlurHash,omitempty"`
	Background              string   `json:"background"`
	Year                    Year     `json:"year"`
	ReleaseDate             string   `json:"releaseDate"`
	Developer               string   `json:"developer"`
	Publisher               string   `json:"publisher"`
	Platforms               []string `json:"platforms"`
	Genres                  []string `json:"genres"`
	Tags                    []string `json:"tags"`
	Rating                  float64  `json:"rating"`
	CurrentPlayers          int      `json:"currentPlayers"`
	Price                   string   `json:"price"`
	LowestPrice             string   `json:"lowestPrice"`
	HighestPrice            string   `json:"highestPrice"`
	Screenshots             []string `json:"screenshots"`
	TrailerURL              *string  `json:"trailerUrl"`
	SteamURL                string   `json:"steamUrl"`
}

// Clone returns a deep copy so cached records can be handed out safely.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Platforms = slices.Clone(g.Platforms)
	c.Genres = slices.Clone(g.Genres)
	c.Tags = slices.Clone(g.Tags)
	c.Screenshots = slices.Clone(g.Screenshots)
	if g.TrailerURL != nil {
		trailer := *g.TrailerURL
		c.TrailerURL = &trailer
	}
	return &c
}

// HasGenreOrTag reports whether any genre or tag contains one of the keywords,
// case-insensitively.
func (g *Game) HasGenreOrTag(keywords ...string) bool {
	for _, label := range slices.Concat(g.Genres, g.Tags) {
		lower := strings.ToLower(label)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

// SteamStoreURL builds the public store page link for an app id.
func SteamStoreURL(id string) string {
	return "https://store.steampowered.com/app/" + id
}

// Year is a release year; zero means unknown and is encoded as "Unknown".
type Year int

// String returns the year or "Unknown".
func (y Year) String() string {
	if y <= 0 {
		return UnknownValue
	}
	return strconv.Itoa(int(y))
}

// Known reports whether the year was parsed.
func (y Year) Known() bool {
	return y > 0
}

// MarshalJSON encodes a known year as a number and an unknown one as "Unknown".
func (y Year) MarshalJSON() ([]byte, error) {
	if y <= 0 {
		return []byte(`"` + UnknownValue + `"`), nil
	}
	return strconv.AppendInt(nil, int64(y), 10), nil
}

// UnmarshalJSON accepts a number, a numeric string, or any other string (unknown).
func (y *Year) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = 0
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*y = Year(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("year must be a number or string: %w", err)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		*y = Year(n)
		return nil
	}
	*y = 0
	return nil
}
