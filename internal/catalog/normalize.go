package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gamevault/gamevault-server/internal/domain"
	"github.com/gamevault/gamevault-server/internal/steam"
)

// Price bands relative to the list price.
const (
	priceScale   = 1.0
	lowestScale  = 0.8
	highestScale = 1.2
)

const (
	defaultRating = 4.0
	maxScreens    = 3
	freeToPlay    = "Free to Play"
)

// releaseLayouts are the date formats the store uses across regions.
var releaseLayouts = []string{
	"2 Jan, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2006-01-02",
	"Jan 2006",
	"2006",
}

var yearPattern = regexp.MustCompile(`\b(19[7-9][0-9]|20[0-9]{2})\b`)

// Normalize maps an appdetails payload onto the canonical record.
// A nil payload means Steam could not resolve the id.
func Normalize(appID string, d *steam.AppDetails, currency string) (*domain.Game, error) {
	if d == nil {
		return nil, steam.ErrNotFound
	}

	cover := d.HeaderImage
	background := d.Background
	if background == "" {
		background = cover
	}

	releaseDate := strings.TrimSpace(d.ReleaseDate.Date)
	if releaseDate == "" {
		releaseDate = domain.UnknownValue
	}

	g := &domain.Game{
		ID:                      appID,
		Title:                   d.Name,
		Description:             cleanDescription(d.ShortDescription),
		LongDescription:         d.DetailedDescription,
		LongDescriptionMarkdown: descriptionMarkdown(d.DetailedDescription),
		Cover:                   cover,
		Background:              background,
		Year:                    parseYear(d.ReleaseDate.Date),
		ReleaseDate:             releaseDate,
		Developer:               joinOrUnknown(d.Developers),
		Publisher:               joinOrUnknown(d.Publishers),
		Platforms:               platforms(d.Platforms),
		Genres:                  descriptions(d.Genres),
		Tags:                    descriptions(d.Categories),
		Rating:                  rating(d.Metacritic),
		CurrentPlayers:          FallbackPlayerCount(appID),
		Price:                   formatPrice(d.PriceOverview, priceScale, currency),
		LowestPrice:             formatPrice(d.PriceOverview, lowestScale, currency),
		HighestPrice:            formatPrice(d.PriceOverview, highestScale, currency),
		Screenshots:             screenshots(d.Screenshots),
		TrailerURL:              trailer(d.Movies),
		SteamURL:                domain.SteamStoreURL(appID),
	}
	return g, nil
}

func joinOrUnknown(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return domain.UnknownValue
	}
	return strings.Join(kept, ", ")
}

func platforms(p steam.Platforms) []string {
	out := make([]string, 0, 3)
	if p.Windows {
		out = append(out, domain.PlatformPC)
	}
	if p.Mac {
		out = append(out, domain.PlatformMac)
	}
	if p.Linux {
		out = append(out, domain.PlatformLinux)
	}
	if len(out) == 0 {
		out = append(out, domain.PlatformPC)
	}
	return out
}

func descriptions(in []steam.Description) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		if d.Description != "" {
			out = append(out, d.Description)
		}
	}
	return out
}

// rating converts a 0-100 critic score into a 0-5 rating.
func rating(m *steam.Metacritic) float64 {
	if m == nil || m.Score <= 0 {
		return defaultRating
	}
	return min(float64(m.Score)/20, 5)
}

func screenshots(in []steam.Screenshot) []string {
	out := make([]string, 0, maxScreens)
	for _, s := range in {
		if len(out) == maxScreens {
			break
		}
		if s.PathFull != "" {
			out = append(out, s.PathFull)
		}
	}
	return out
}

func trailer(movies []steam.Movie) *string {
	if len(movies) == 0 || movies[0].Webm.Max == "" {
		return nil
	}
	u := movies[0].Webm.Max
	return &u
}

// currencySymbol picks the display symbol for a store currency code.
func currencySymbol(currency string) string {
	if currency == "24" {
		return "₹"
	}
	return "$"
}

// formatPrice renders the list price (minor units) scaled by multiplier.
func formatPrice(p *steam.PriceOverview, multiplier float64, currency string) string {
	if p == nil {
		return freeToPlay
	}
	price := float64(p.Initial) / 100 * multiplier
	return fmt.Sprintf("%s%.2f", currencySymbol(currency), price)
}

// parseYear extracts the release year from Steam's free-form date.
func parseYear(s string) domain.Year {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range releaseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Year(t.Year())
		}
	}
	if m := yearPattern.FindString(s); m != "" {
		y, _ := strconv.Atoi(m) //nolint:errcheck // pattern guarantees digits
		return domain.Year(y)
	}
	return 0
}

// idDigits returns the decimal digits of id, in order.
func idDigits(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hasDigit reports whether id can name a Steam app.
func hasDigit(id string) bool {
	return idDigits(id) != ""
}

// FallbackPlayerCount is the deterministic stand-in used when the live count is
// unavailable: 500 + (n*7919) mod 10000, n being the id's last five digits.
func FallbackPlayerCount(id string) int {
	digits := idDigits(id)
	if len(digits) > 5 {
		digits = digits[len(digits)-5:]
	}
	n, _ := strconv.Atoi(digits) //nolint:errcheck // empty string means n = 0
	return 500 + (n*7919)%10000
}
