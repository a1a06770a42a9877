package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamevault/gamevault-server/internal/catalog"
	"github.com/gamevault/gamevault-server/internal/domain"
	domainerrors "github.com/gamevault/gamevault-server/internal/errors"
	"github.com/gamevault/gamevault-server/internal/search"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeaturedGame",
		Method:      http.MethodGet,
		Path:        "/api/featured-game",
		Summary:     "Featured game",
		Tags:        []string{"Catalog"},
	}, s.handleFeaturedGame)

	lists := []struct {
		id, path, summary string
		read              func(context.Context) []*domain.Game
	}{
		{"getTrendingGames", "/api/trending-games", "Top sellers", s.catalog.Trending},
		{"getTopRatedGames", "/api/top-rated-games", "Top sellers ranked by rating", s.catalog.TopRated},
		{"getNewReleases", "/api/new-releases", "New releases", s.catalog.NewReleases},
		{"getHorrorGames", "/api/horror-games", "Horror picks", s.catalog.Horror},
	}
	for _, l := range lists {
		read := l.read
		huma.Register(s.api, huma.Operation{
			OperationID: l.id,
			Method:      http.MethodGet,
			Path:        l.path,
			Summary:     l.summary,
			Tags:        []string{"Catalog"},
		}, func(ctx context.Context, _ *struct{}) (*GameListOutput, error) {
			return &GameListOutput{Body: read(ctx)}, nil
		})
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "getGame",
		Method:      http.MethodGet,
		Path:        "/api/game/{gameId}",
		Summary:     "Game details",
		Description: "Returns a placeholder record with the requested id when the store is unavailable.",
		Tags:        []string{"Catalog"},
	}, s.handleGetGame)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlayerCountHistory",
		Method:      http.MethodGet,
		Path:        "/api/player-count/{gameId}",
		Summary:     "Player count history",
		Tags:        []string{"Catalog"},
	}, s.handlePlayerCount)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPriceHistory",
		Method:      http.MethodGet,
		Path:        "/api/price-history/{gameId}",
		Summary:     "Price history",
		Tags:        []string{"Catalog"},
	}, s.handlePriceHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchGames",
		Method:      http.MethodGet,
		Path:        "/api/search",
		Summary:     "Search games",
		Tags:        []string{"Catalog"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggestGames",
		Method:      http.MethodGet,
		Path:        "/api/suggest",
		Summary:     "Typeahead suggestions",
		Description: "Ranked prefix and typo-tolerant matches over the cached catalog.",
		Tags:        []string{"Catalog"},
	}, s.handleSuggest)
}

// === DTOs ===

// GameOutput wraps a single game record.
type GameOutput struct {
	Body *domain.Game
}

// GameListOutput wraps a list of game records.
type GameListOutput struct {
	Body []*domain.Game
}

// GameIDInput is the {gameId} path parameter.
type GameIDInput struct {
	GameID string `path:"gameId" doc:"Steam app id"`
}

// PlayerCountInput selects a history window.
type PlayerCountInput struct {
	GameID string `path:"gameId" doc:"Steam app id"`
	Period string `query:"period" doc:"24h, 7d, 30d, or all; anything else means 7d"`
}

// PlayerCountOutput wraps a player-count series.
type PlayerCountOutput struct {
	Body []catalog.PlayerPoint
}

// PriceHistoryOutput wraps a price series.
type PriceHistoryOutput struct {
	Body []catalog.PricePoint
}

// SearchInput is the search query.
type SearchInput struct {
	Q string `query:"q" doc:"Search text"`
}

// SuggestInput is the suggestion query.
type SuggestInput struct {
	Q     string `query:"q" doc:"Partial title"`
	Limit int    `query:"limit" doc:"Maximum suggestions (default 5, max 20)"`
}

// SuggestOutput wraps ranked suggestions.
type SuggestOutput struct {
	Body []search.Suggestion
}

// === Handlers ===

func (s *Server) handleFeaturedGame(ctx context.Context, _ *struct{}) (*GameOutput, error) {
	return &GameOutput{Body: s.catalog.Featured(ctx)}, nil
}

func (s *Server) handleGetGame(ctx context.Context, input *GameIDInput) (*GameOutput, error) {
	game, err := s.catalog.Game(ctx, input.GameID)
	if err != nil {
		return nil, err
	}
	return &GameOutput{Body: game}, nil
}

func (s *Server) handlePlayerCount(ctx context.Context, input *PlayerCountInput) (*PlayerCountOutput, error) {
	return &PlayerCountOutput{Body: s.catalog.PlayerHistory(ctx, input.GameID, input.Period)}, nil
}

func (s *Server) handlePriceHistory(_ context.Context, input *GameIDInput) (*PriceHistoryOutput, error) {
	return &PriceHistoryOutput{Body: s.catalog.PriceHistory(input.GameID)}, nil
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*GameListOutput, error) {
	games, err := s.catalog.Search(ctx, input.Q)
	if err != nil {
		return nil, err
	}
	return &GameListOutput{Body: games}, nil
}

func (s *Server) handleSuggest(ctx context.Context, input *SuggestInput) (*SuggestOutput, error) {
	if strings.TrimSpace(input.Q) == "" {
		return nil, domainerrors.Validation("Search query is required")
	}

	hits, err := s.suggestions.Suggest(ctx, input.Q, input.Limit)
	if err != nil {
		// Suggestions are best-effort.
		s.logger.Warn("suggestion query failed", "query", input.Q, "error", err)
		hits = []search.Suggestion{}
	}
	return &SuggestOutput{Body: hits}, nil
}
