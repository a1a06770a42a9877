// Package search provides typeahead suggestions over the cached game catalog using Bleve.
// The index lives in memory and is rebuilt wholesale from every catalog refresh.
package search

import (
	"strings"

	"github.com/gamevault/gamevault-server/internal/domain"
)

// GameDocument is the indexed form of a catalog record.
type GameDocument struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Developer string   `json:"developer,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Cover     string   `json:"cover,omitempty"`
	Year      int      `json:"year,omitempty"`
	Rating    float64  `json:"rating,omitempty"`
}

// FromGame builds a document from a catalog record.
func FromGame(g *domain.Game) *GameDocument {
	return &GameDocument{
		ID:        g.ID,
		Title:     g.Title,
		Developer: knownOrEmpty(g.Developer),
		Publisher: knownOrEmpty(g.Publisher),
		Genres:    g.Genres,
		Tags:      g.Tags,
		Cover:     g.Cover,
		Year:      int(g.Year),
		Rating:    g.Rating,
	}
}

func knownOrEmpty(s string) string {
	if strings.EqualFold(s, domain.UnknownValue) {
		return ""
	}
	return s
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *GameDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":    d.ID,
		"title": d.Title,
		"cover": d.Cover,
	}
	if d.Developer != "" {
		m["developer"] = d.Developer
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Year > 0 {
		m["year"] = float64(d.Year)
	}
	m["rating"] = d.Rating
	return m
}
