package store

import (
	"context"
	"errors"

	"github.com/gamevault/gamevault-server/internal/domain"
)

const favoritesPrefix = "favorites:"

// ErrFavoriteExists is returned when a game is already in the user's favorites.
var ErrFavoriteExists = ErrAlreadyExists.WithMessage("game already in favorites")

func (s *Store) initFavorites() {
	s.Favorites = NewEntity[domain.Favorites](s, favoritesPrefix)
}

// GetFavorites returns the user's favorites, empty when none were saved.
func (s *Store) GetFavorites(ctx context.Context, userID string) (*domain.Favorites, error) {
	favs, err := s.Favorites.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &domain.Favorites{UserID: userID, Items: []domain.Favorite{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if favs.Items == nil {
		favs.Items = []domain.Favorite{}
	}
	return favs, nil
}

// AddFavorite appends fav to the user's favorites.
// Returns ErrFavoriteExists if the game is already present.
func (s *Store) AddFavorite(ctx context.Context, userID string, fav domain.Favorite) (*domain.Favorites, error) {
	favs, err := s.Favorites.Mutate(ctx, userID, func(f *domain.Favorites) error {
		if f.Contains(fav.GameID) {
			return ErrFavoriteExists
		}
		f.Items = append(f.Items, fav)
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		return favs, err
	}

	// First favorite for this user.
	favs = &domain.Favorites{UserID: userID, Items: []domain.Favorite{fav}}
	if err := s.Favorites.Create(ctx, userID, favs); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// Lost a race with a concurrent first add; go through Mutate again.
			return s.AddFavorite(ctx, userID, fav)
		}
		return nil, err
	}
	return favs, nil
}

// RemoveFavorite drops gameID from the user's favorites. Removing an absent game is not an error.
func (s *Store) RemoveFavorite(ctx context.Context, userID, gameID string) (*domain.Favorites, error) {
	favs, err := s.Favorites.Mutate(ctx, userID, func(f *domain.Favorites) error {
		f.Remove(gameID)
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return &domain.Favorites{UserID: userID, Items: []domain.Favorite{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if favs.Items == nil {
		favs.Items = []domain.Favorite{}
	}
	return favs, nil
}
