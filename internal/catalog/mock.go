package catalog

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gamevault/gamevault-server/internal/domain"
)

// Placeholder artwork served with synthetic records.
const (
	placeholderBase       = "https://via.placeholder.com/"
	placeholderCover      = placeholderBase + "460x215/0a1128/ffffff?text=Game+Placeholder"
	placeholderBackground = placeholderBase + "1920x620/0a1128/ffffff?text=Game+Background+Placeholder"
	placeholderScreenshot = placeholderBase + "1280x720/0a1128/ffffff?text=Screenshot+%d"

	mockDescription     = "This is a placeholder game when Steam API data is unavailable."
	mockLongDescription = "This is a detailed placeholder description for when Steam API data could not be retrieved successfully."
)

// Mock labels per category.
const (
	LabelTopSeller   = "Top Seller"
	LabelNewRelease  = "New Release"
	LabelFeatured    = "Featured"
	LabelHorror      = "Horror"
	LabelTopRated    = "Top Rated"
	LabelGameDetails = "Game Details"
)

// MockGenerator produces synthetic records so catalog endpoints never come back empty.
// It never touches the network.
type MockGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewMockGenerator creates a generator. A nil rnd seeds from the runtime.
func NewMockGenerator(rnd *rand.Rand, now func() time.Time) *MockGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // placeholder data
	}
	if now == nil {
		now = time.Now
	}
	return &MockGenerator{rnd: rnd, now: now}
}

// Mock returns one placeholder record titled "{label} Game {id}".
func (m *MockGenerator) Mock(label string) *domain.Game {
	m.mu.Lock()
	id := strconv.Itoa(100000 + m.rnd.IntN(900000))
	players := m.rnd.IntN(50000)
	m.mu.Unlock()

	today := m.now()

	return &domain.Game{
		ID:              id,
		Title:           label + " Game " + id,
		Description:     mockDescription,
		LongDescription: mockLongDescription,
		Cover:           placeholderCover,
		Background:      placeholderBackground,
		Year:            domain.Year(today.Year()),
		ReleaseDate:     today.Format(time.DateOnly),
		Developer:       "Placeholder Studios",
		Publisher:       "GameVault Publishing",
		Platforms:       []string{domain.PlatformPC, domain.PlatformMac, domain.PlatformLinux},
		Genres:          []string{"Action", "Adventure", "RPG"},
		Tags:            []string{"Singleplayer", "Story Rich", "Open World"},
		Rating:          4.5,
		CurrentPlayers:  players,
		Price:           "$29.99",
		LowestPrice:     "$19.99",
		HighestPrice:    "$39.99",
		Screenshots: []string{
			fmt.Sprintf(placeholderScreenshot, 1),
			fmt.Sprintf(placeholderScreenshot, 2),
			fmt.Sprintf(placeholderScreenshot, 3),
		},
		TrailerURL: nil,
		SteamURL:   domain.SteamStoreURL(id),
	}
}

// intN draws from the generator's source, which is shared with the featured pick.
func (m *MockGenerator) intN(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rnd.IntN(n)
}

// Mocks returns n records labelled "{category} 1" through "{category} n".
func (m *MockGenerator) Mocks(n int, category string) []*domain.Game {
	out := make([]*domain.Game, 0, n)
	for i := range n {
		out = append(out, m.Mock(fmt.Sprintf("%s %d", category, i+1)))
	}
	return out
}

// IsMock reports whether g is a placeholder record.
func IsMock(g *domain.Game) bool {
	return g != nil && strings.HasPrefix(g.Cover, placeholderBase)
}

func allMocks(games []*domain.Game) bool {
	for _, g := range games {
		if !IsMock(g) {
			return false
		}
	}
	return true
}
