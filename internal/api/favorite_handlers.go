package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamevault/gamevault-server/internal/domain"
	"github.com/gamevault/gamevault-server/internal/service"
)

func (s *Server) registerFavoriteRoutes() {
	security := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listFavorites",
		Method:      http.MethodGet,
		Path:        "/api/favorites",
		Summary:     "List favorites",
		Tags:        []string{"Favorites"},
		Security:    security,
	}, s.handleListFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFavorite",
		Method:      http.MethodPost,
		Path:        "/api/favorites",
		Summary:     "Add favorite",
		Tags:        []string{"Favorites"},
		Security:    security,
	}, s.handleAddFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFavorite",
		Method:      http.MethodDelete,
		Path:        "/api/favorites/{gameId}",
		Summary:     "Remove favorite",
		Tags:        []string{"Favorites"},
		Security:    security,
	}, s.handleRemoveFavorite)
}

// === DTOs ===

// AddFavoriteRequest is the request body for adding a favorite.
type AddFavoriteRequest struct {
	GameID string   `json:"gameId,omitempty" doc:"Steam app id"`
	Title  string   `json:"title,omitempty"`
	Cover  string   `json:"cover,omitempty"`
	Year   FlexYear `json:"year,omitempty"`
	Rating float64  `json:"rating,omitempty"`
}

// AddFavoriteInput wraps the add request for Huma.
type AddFavoriteInput struct {
	Body AddFavoriteRequest
}

// FavoritesOutput wraps the caller's favorites.
type FavoritesOutput struct {
	Body []domain.Favorite
}

// === Handlers ===

func (s *Server) handleListFavorites(ctx context.Context, _ *struct{}) (*FavoritesOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Favorites.List(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &FavoritesOutput{Body: items}, nil
}

func (s *Server) handleAddFavorite(ctx context.Context, input *AddFavoriteInput) (*FavoritesOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Favorites.Add(ctx, actor.UserID, service.AddFavoriteRequest{
		GameID: input.Body.GameID,
		Title:  input.Body.Title,
		Cover:  input.Body.Cover,
		Year:   input.Body.Year.Year,
		Rating: input.Body.Rating,
	})
	if err != nil {
		return nil, err
	}
	return &FavoritesOutput{Body: items}, nil
}

func (s *Server) handleRemoveFavorite(ctx context.Context, input *GameIDInput) (*FavoritesOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Favorites.Remove(ctx, actor.UserID, input.GameID)
	if err != nil {
		return nil, err
	}
	return &FavoritesOutput{Body: items}, nil
}
