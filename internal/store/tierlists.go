package store

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/gamevault/gamevault-server/internal/domain"
)

const tierListPrefix = "tierlist:"

// Tier list indexes. Both are multi-value: many lists share an owner or the public flag.
const (
	tierListByUser   = "user"
	tierListByPublic = "public"
	publicValue      = "1"
)

// ErrTierListNotFound is returned when a tier list id does not exist.
var ErrTierListNotFound = ErrNotFound.WithMessage("tier list not found")

// TierListFilter selects tier lists for ListTierLists.
type TierListFilter struct {
	// UserID restricts results to one owner's lists (public and private).
	// Empty means public lists from everyone.
	UserID string
	Limit  int
}

func (s *Store) initTierLists() {
	s.TierLists = NewEntity[domain.TierList](s, tierListPrefix).
		WithMultiIndex(tierListByUser, func(t *domain.TierList) []string {
			return []string{t.UserID}
		}).
		WithMultiIndex(tierListByPublic, func(t *domain.TierList) []string {
			if !t.IsPublic {
				return nil
			}
			return []string{publicValue}
		})
}

// CreateTierList stores a new tier list.
func (s *Store) CreateTierList(ctx context.Context, list *domain.TierList) error {
	return s.TierLists.Create(ctx, list.ID, list)
}

// GetTierList retrieves a tier list by ID.
func (s *Store) GetTierList(ctx context.Context, id string) (*domain.TierList, error) {
	list, err := s.TierLists.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTierListNotFound
	}
	return list, err
}

// UpdateTierList replaces a stored tier list.
func (s *Store) UpdateTierList(ctx context.Context, list *domain.TierList) error {
	err := s.TierLists.Update(ctx, list.ID, list)
	if errors.Is(err, ErrNotFound) {
		return ErrTierListNotFound
	}
	return err
}

// DeleteTierList removes a tier list. Deleting a missing list is not an error.
func (s *Store) DeleteTierList(ctx context.Context, id string) error {
	return s.TierLists.Delete(ctx, id)
}

// MutateTierList applies fn to the stored list in one transaction. An error
// from fn aborts the write and is returned as-is.
func (s *Store) MutateTierList(ctx context.Context, id string, fn func(*domain.TierList) error) (*domain.TierList, error) {
	list, err := s.TierLists.Mutate(ctx, id, fn)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTierListNotFound
	}
	return list, err
}

// LikeTierList atomically increments the like counter and returns the updated list.
func (s *Store) LikeTierList(ctx context.Context, id string) (*domain.TierList, error) {
	return s.MutateTierList(ctx, id, func(t *domain.TierList) error {
		t.Likes++
		return nil
	})
}

// ListTierLists returns lists matching filter, most recently updated first.
func (s *Store) ListTierLists(ctx context.Context, filter TierListFilter) ([]*domain.TierList, error) {
	var (
		lists []*domain.TierList
		err   error
	)
	if filter.UserID != "" {
		lists, err = s.TierLists.ListByIndex(ctx, tierListByUser, filter.UserID)
	} else {
		lists, err = s.TierLists.ListByIndex(ctx, tierListByPublic, publicValue)
	}
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(lists, func(a, b *domain.TierList) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if filter.Limit > 0 && len(lists) > filter.Limit {
		lists = lists[:filter.Limit]
	}
	if lists == nil {
		lists = []*domain.TierList{}
	}
	return lists, nil
}
