package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gamevault/gamevault-server/internal/domain"
	domainerrors "github.com/gamevault/gamevault-server/internal/errors"
	"github.com/gamevault/gamevault-server/internal/id"
	"github.com/gamevault/gamevault-server/internal/sse"
	"github.com/gamevault/gamevault-server/internal/store"
	"github.com/gamevault/gamevault-server/internal/validation"
)

// TierListPageSize is the number of lists returned by List.
const TierListPageSize = 12

// Actor identifies the authenticated caller.
type Actor struct {
	UserID   string
	Username string
}

// TierListService manages tier lists and announces changes over SSE.
type TierListService struct {
	store     *store.Store
	events    sse.Emitter
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewTierListService creates a new tier list service.
func NewTierListService(st *store.Store, events sse.Emitter, v *validation.Validator, logger *slog.Logger) *TierListService {
	return &TierListService{
		store:     st,
		events:    events,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateTierListRequest is the body of a create call. Missing tiers get the S-F defaults.
type CreateTierListRequest struct {
	Title       string        `json:"title" validate:"notblank,max=120"`
	Description string        `json:"description" validate:"max=1000"`
	IsPublic    *bool         `json:"isPublic"`
	Tiers       []domain.Tier `json:"tiers"`
}

// UpdateTierListRequest is a partial update. Nil fields are left unchanged and
// a blank title is ignored.
type UpdateTierListRequest struct {
	Title       *string       `json:"title" validate:"omitempty,max=120"`
	Description *string       `json:"description" validate:"omitempty,max=1000"`
	IsPublic    *bool         `json:"isPublic"`
	Tiers       []domain.Tier `json:"tiers"`
}

// List returns the newest-updated lists: the viewer's own when mine is set and
// the viewer is known, public lists otherwise.
func (s *TierListService) List(ctx context.Context, viewerID string, mine bool) ([]*domain.TierList, error) {
	filter := store.TierListFilter{Limit: TierListPageSize}
	if mine && viewerID != "" {
		filter.UserID = viewerID
	}

	lists, err := s.store.ListTierLists(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tier lists: %w", err)
	}
	return lists, nil
}

// Get returns a list the viewer may see. Private lists are owner-only.
func (s *TierListService) Get(ctx context.Context, listID, viewerID string) (*domain.TierList, error) {
	list, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !list.VisibleTo(viewerID) {
		return nil, domainerrors.Unauthorized("Not authorized to view this tier list")
	}
	return list, nil
}

// Create stores a new list owned by actor.
func (s *TierListService) Create(ctx context.Context, actor Actor, req CreateTierListRequest) (*domain.TierList, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	listID, err := id.Generate(id.PrefixTierList)
	if err != nil {
		return nil, fmt.Errorf("generate tier list ID: %w", err)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	tiers := domain.DefaultTiers()
	if len(req.Tiers) > 0 {
		tiers = domain.NormalizeTiers(req.Tiers)
	}

	now := s.now()
	list := &domain.TierList{
		ID:          listID,
		Title:       req.Title,
		Description: req.Description,
		UserID:      actor.UserID,
		Username:    actor.Username,
		IsPublic:    isPublic,
		Tiers:       tiers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTierList(ctx, list); err != nil {
		return nil, fmt.Errorf("create tier list: %w", err)
	}

	s.logger.Info("tier list created", "tier_list_id", list.ID, "user_id", actor.UserID)
	s.events.Emit(sse.NewTierListCreatedEvent(list))
	return list, nil
}

// Update applies req to a list owned by actor.
func (s *TierListService) Update(ctx context.Context, actor Actor, listID string, req UpdateTierListRequest) (*domain.TierList, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var wasPublic bool
	list, err := s.store.MutateTierList(ctx, listID, func(t *domain.TierList) error {
		if !t.IsOwnedBy(actor.UserID) {
			return domainerrors.Unauthorized("Not authorized to update this tier list")
		}
		wasPublic = t.IsPublic

		if req.Title != nil {
			if title := strings.TrimSpace(*req.Title); title != "" {
				t.Title = title
			}
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Tiers != nil {
			t.Tiers = domain.NormalizeTiers(req.Tiers)
		}
		if req.IsPublic != nil {
			t.IsPublic = *req.IsPublic
		}
		t.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFound("Tier list not found")
		}
		return nil, err
	}

	s.events.Emit(sse.NewTierListUpdatedEvent(list))
	if wasPublic && !list.IsPublic {
		// Followers of the public list need to drop it.
		s.events.Emit(sse.NewTierListDeletedEvent(&domain.TierList{ID: list.ID, IsPublic: true}))
	}
	return list, nil
}

// Delete removes a list owned by actor.
func (s *TierListService) Delete(ctx context.Context, actor Actor, listID string) error {
	list, err := s.load(ctx, listID)
	if err != nil {
		return err
	}
	if !list.IsOwnedBy(actor.UserID) {
		return domainerrors.Unauthorized("Not authorized to delete this tier list")
	}

	if err := s.store.DeleteTierList(ctx, listID); err != nil {
		return fmt.Errorf("delete tier list: %w", err)
	}

	s.logger.Info("tier list deleted", "tier_list_id", listID, "user_id", actor.UserID)
	s.events.Emit(sse.NewTierListDeletedEvent(list))
	return nil
}

// Like increments the like counter of a list the actor can see.
func (s *TierListService) Like(ctx context.Context, actor Actor, listID string) (*domain.TierList, error) {
	if _, err := s.Get(ctx, listID, actor.UserID); err != nil {
		return nil, err
	}

	list, err := s.store.LikeTierList(ctx, listID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFound("Tier list not found")
		}
		return nil, fmt.Errorf("like tier list: %w", err)
	}

	s.events.Emit(sse.NewTierListLikedEvent(list))
	return list, nil
}

func (s *TierListService) load(ctx context.Context, listID string) (*domain.TierList, error) {
	list, err := s.store.GetTierList(ctx, listID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFound("Tier list not found")
		}
		return nil, fmt.Errorf("get tier list: %w", err)
	}
	return list, nil
}
