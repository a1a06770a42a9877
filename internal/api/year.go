package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/gamevault/gamevault-server/internal/domain"
)

// FlexYear is a release year in request bodies. It accepts the same shapes the
// API emits: a number, a numeric string, or "Unknown".
type FlexYear struct {
	domain.Year
}

// Schema documents the number-or-string shape for huma.
func (FlexYear) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Description: `Release year, or "Unknown"`,
		OneOf: []*huma.Schema{
			{Type: huma.TypeInteger},
			{Type: huma.TypeString},
		},
	}
}

// UnmarshalJSON delegates to domain.Year.
func (y *FlexYear) UnmarshalJSON(data []byte) error {
	return y.Year.UnmarshalJSON(data)
}

// MarshalJSON delegates to domain.Year.
func (y FlexYear) MarshalJSON() ([]byte, error) {
	return y.Year.MarshalJSON()
}
