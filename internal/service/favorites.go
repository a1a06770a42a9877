package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gamevault/gamevault-server/internal/domain"
	domainerrors "github.com/gamevault/gamevault-server/internal/errors"
	"github.com/gamevault/gamevault-server/internal/store"
	"github.com/gamevault/gamevault-server/internal/validation"
)

// FavoritesService manages per-user favorite games.
type FavoritesService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewFavoritesService creates a new favorites service.
func NewFavoritesService(st *store.Store, v *validation.Validator, logger *slog.Logger) *FavoritesService {
	return &FavoritesService{
		store:     st,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// AddFavoriteRequest carries the display fields saved with a favorite.
type AddFavoriteRequest struct {
	GameID string      `json:"gameId" validate:"notblank,max=64"`
	Title  string      `json:"title" validate:"notblank,max=300"`
	Cover  string      `json:"cover" validate:"omitempty,max=2048"`
	Year   domain.Year `json:"year"`
	Rating float64     `json:"rating" validate:"gte=0,lte=5"`
}

// List returns the user's favorites, oldest first.
func (s *FavoritesService) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	favs, err := s.store.GetFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get favorites: %w", err)
	}
	return favs.Items, nil
}

// Add saves a favorite and returns the full list.
func (s *FavoritesService) Add(ctx context.Context, userID string, req AddFavoriteRequest) ([]domain.Favorite, error) {
	req.GameID = strings.TrimSpace(req.GameID)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	favs, err := s.store.AddFavorite(ctx, userID, domain.Favorite{
		GameID:  req.GameID,
		Title:   req.Title,
		Cover:   req.Cover,
		Year:    req.Year,
		Rating:  req.Rating,
		AddedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrFavoriteExists) {
			return nil, domainerrors.Validation("Game already in favorites")
		}
		return nil, fmt.Errorf("add favorite: %w", err)
	}

	s.logger.Debug("favorite added", "user_id", userID, "game_id", req.GameID)
	return favs.Items, nil
}

// Remove drops gameID and returns the full list. Removing an absent game is not an error.
func (s *FavoritesService) Remove(ctx context.Context, userID, gameID string) ([]domain.Favorite, error) {
	favs, err := s.store.RemoveFavorite(ctx, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("remove favorite: %w", err)
	}
	return favs.Items, nil
}
