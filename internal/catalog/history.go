package catalog

import (
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"strconv"
	"time"
)

// PricePoint is one sample of a game's price history.
type PricePoint struct {
	Date  string `json:"date"`
	Price string `json:"price"`
}

// PlayerPoint is one sample of a game's player-count history.
type PlayerPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

const (
	defaultHistorySeed = 12345

	// historyDigits keeps parsed ids in range. 10^15 is a multiple of every
	// modulus applied below, so residues are unaffected.
	historyDigits = 15

	priceStepDays  = 15
	priceSpanDays  = 365
	priceBaseUnit  = 14.99
	playerBase     = 50000
	playerSpread   = 50000
	playerIDModulo = 200000

	weekendDealDivisor = 7
	weekendDealScale   = 0.9
)

// PeriodDays maps a player-count period to a number of daily points.
// Unknown periods mean seven days.
func PeriodDays(period string) int {
	switch period {
	case "24h":
		return 1
	case "30d":
		return 30
	case "all":
		return 365
	default:
		return 7
	}
}

type saleBand struct {
	name       string
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
	scale      float64
}

var saleBands = []saleBand{
	{name: "summer", startMonth: time.June, startDay: 20, endMonth: time.July, endDay: 10, scale: 0.5},
	{name: "winter", startMonth: time.December, startDay: 19, endMonth: time.January, endDay: 5, scale: 0.6},
	{name: "halloween", startMonth: time.October, startDay: 26, endMonth: time.November, endDay: 2, scale: 0.75},
	{name: "spring", startMonth: time.March, startDay: 14, endMonth: time.March, endDay: 21, scale: 0.8},
}

func monthDay(m time.Month, d int) int {
	return int(m)*100 + d
}

// contains reports whether t falls inside the band, inclusive. Bands may wrap the year end.
func (b saleBand) contains(t time.Time) bool {
	md := monthDay(t.Month(), t.Day())
	start := monthDay(b.startMonth, b.startDay)
	end := monthDay(b.endMonth, b.endDay)
	if start <= end {
		return md >= start && md <= end
	}
	return md >= start || md <= end
}

// historySeed is the numeric value of the id's digits, or 12345 when that is zero.
func historySeed(gameID string) int64 {
	digits := idDigits(gameID)
	if len(digits) > historyDigits {
		digits = digits[len(digits)-historyDigits:]
	}
	n, _ := strconv.ParseInt(digits, 10, 64) //nolint:errcheck // empty or bounded digit string
	if n == 0 {
		return defaultHistorySeed
	}
	return n
}

func dayHash(gameID, date string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(gameID + ":" + date))
	return h.Sum32()
}

// priceOn returns the simulated price for a given day.
func priceOn(gameID string, base float64, day time.Time) float64 {
	for _, band := range saleBands {
		if band.contains(day) {
			return base * band.scale
		}
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		if dayHash(gameID, day.Format(time.DateOnly))%weekendDealDivisor == 0 {
			return base * weekendDealScale
		}
	}
	return base
}

// PriceHistory returns a deterministic year of prices sampled every 15 days, oldest first.
func (c *Catalog) PriceHistory(gameID string) []PricePoint {
	seed := historySeed(gameID)
	base := float64(seed%4+1) * priceBaseUnit
	today := c.today()

	points := make([]PricePoint, 0, priceSpanDays/priceStepDays+1)
	for offset := 0; offset < priceSpanDays; offset += priceStepDays {
		day := today.AddDate(0, 0, -offset)
		points = append(points, PricePoint{
			Date:  day.Format(time.DateOnly),
			Price: fmt.Sprintf("%.2f", priceOn(gameID, base, day)),
		})
	}
	slices.Reverse(points)
	return points
}

// PlayerHistory returns daily player counts for period, oldest first. Counts are
// deterministic per id and date; today's point uses the live count when one is cached
// or can be fetched.
func (c *Catalog) PlayerHistory(ctx context.Context, gameID, period string) []PlayerPoint {
	days := PeriodDays(period)
	base := int(historySeed(gameID)%playerIDModulo) + playerBase
	today := c.today()

	points := make([]PlayerPoint, 0, days)
	for offset := range days {
		day := today.AddDate(0, 0, -offset)
		date := day.Format(time.DateOnly)
		points = append(points, PlayerPoint{
			Date:  date,
			Count: base + int(dayHash(gameID, date)%playerSpread),
		})
	}

	if hasDigit(gameID) {
		if live, ok := c.fetch.livePlayers(ctx, gameID); ok && live > 0 {
			points[0].Count = live
		}
	}

	slices.Reverse(points)
	return points
}

func (c *Catalog) today() time.Time {
	now := c.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
