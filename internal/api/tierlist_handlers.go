package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamevault/gamevault-server/internal/domain"
	"github.com/gamevault/gamevault-server/internal/service"
)

func (s *Server) registerTierListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTierLists",
		Method:      http.MethodGet,
		Path:        "/api/tierlists",
		Summary:     "List tier lists",
		Description: "Newest-updated public lists, or the caller's own with my=true.",
		Tags:        []string{"Tier Lists"},
	}, s.handleListTierLists)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTierList",
		Method:      http.MethodGet,
		Path:        "/api/tierlists/{id}",
		Summary:     "Get tier list",
		Tags:        []string{"Tier Lists"},
	}, s.handleGetTierList)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTierList",
		Method:      http.MethodPost,
		Path:        "/api/tierlists",
		Summary:     "Create tier list",
		Tags:        []string{"Tier Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTierList)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTierList",
		Method:      http.MethodPut,
		Path:        "/api/tierlists/{id}",
		Summary:     "Update tier list",
		Description: "Partial update; omitted fields are left unchanged.",
		Tags:        []string{"Tier Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTierList)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTierList",
		Method:      http.MethodDelete,
		Path:        "/api/tierlists/{id}",
		Summary:     "Delete tier list",
		Tags:        []string{"Tier Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTierList)

	huma.Register(s.api, huma.Operation{
		OperationID: "likeTierList",
		Method:      http.MethodPost,
		Path:        "/api/tierlists/{id}/like",
		Summary:     "Like tier list",
		Tags:        []string{"Tier Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLikeTierList)
}

// === DTOs ===

// TierGameInput is a game placed in a tier.
type TierGameInput struct {
	GameID string   `json:"gameId" doc:"Steam app id"`
	Title  string   `json:"title,omitempty"`
	Cover  string   `json:"cover,omitempty"`
	Year   FlexYear `json:"year,omitempty"`
}

// TierInput is one tier row.
type TierInput struct {
	Name  string          `json:"name"`
	Color string          `json:"color,omitempty"`
	Games []TierGameInput `json:"games,omitempty"`
}

// CreateTierListRequest is the request body for creating a tier list.
type CreateTierListRequest struct {
	Title       string      `json:"title,omitempty" doc:"Required, at most 120 characters"`
	Description string      `json:"description,omitempty" doc:"At most 1000 characters"`
	IsPublic    *bool       `json:"isPublic,omitempty" doc:"Defaults to true"`
	Tiers       []TierInput `json:"tiers,omitempty" doc:"Defaults to S through F"`
}

// UpdateTierListRequest is the request body for a partial update.
type UpdateTierListRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	IsPublic    *bool       `json:"isPublic,omitempty"`
	Tiers       []TierInput `json:"tiers,omitempty"`
}

// ListTierListsInput selects which lists to return.
type ListTierListsInput struct {
	My bool `query:"my" doc:"Return the caller's own lists (requires auth)"`
}

// TierListIDInput is the {id} path parameter.
type TierListIDInput struct {
	ID string `path:"id" doc:"Tier list id"`
}

// CreateTierListInput wraps the create request for Huma.
type CreateTierListInput struct {
	Body CreateTierListRequest
}

// UpdateTierListInput wraps the update request for Huma.
type UpdateTierListInput struct {
	ID   string `path:"id" doc:"Tier list id"`
	Body UpdateTierListRequest
}

// TierListOutput wraps a tier list.
type TierListOutput struct {
	Body *domain.TierList
}

// TierListsOutput wraps a page of tier lists.
type TierListsOutput struct {
	Body []*domain.TierList
}

// LikesResponse is the like counter after a like.
type LikesResponse struct {
	Likes int `json:"likes"`
}

// LikesOutput wraps LikesResponse.
type LikesOutput struct {
	Body LikesResponse
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}

// toDomainTiers converts request tiers, keeping nil distinct from empty.
func toDomainTiers(in []TierInput) []domain.Tier {
	if in == nil {
		return nil
	}
	out := make([]domain.Tier, len(in))
	for i, t := range in {
		games := make([]domain.TierGame, len(t.Games))
		for j, g := range t.Games {
			games[j] = domain.TierGame{
				GameID: g.GameID,
				Title:  g.Title,
				Cover:  g.Cover,
				Year:   g.Year.Year,
			}
		}
		out[i] = domain.Tier{Name: t.Name, Color: t.Color, Games: games}
	}
	return out
}

// === Handlers ===

func (s *Server) handleListTierLists(ctx context.Context, input *ListTierListsInput) (*TierListsOutput, error) {
	lists, err := s.services.TierLists.List(ctx, actorFrom(ctx).UserID, input.My)
	if err != nil {
		return nil, err
	}
	return &TierListsOutput{Body: lists}, nil
}

func (s *Server) handleGetTierList(ctx context.Context, input *TierListIDInput) (*TierListOutput, error) {
	list, err := s.services.TierLists.Get(ctx, input.ID, actorFrom(ctx).UserID)
	if err != nil {
		return nil, err
	}
	return &TierListOutput{Body: list}, nil
}

func (s *Server) handleCreateTierList(ctx context.Context, input *CreateTierListInput) (*TierListOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.TierLists.Create(ctx, actor, service.CreateTierListRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		IsPublic:    input.Body.IsPublic,
		Tiers:       toDomainTiers(input.Body.Tiers),
	})
	if err != nil {
		return nil, err
	}
	return &TierListOutput{Body: list}, nil
}

func (s *Server) handleUpdateTierList(ctx context.Context, input *UpdateTierListInput) (*TierListOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.TierLists.Update(ctx, actor, input.ID, service.UpdateTierListRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		IsPublic:    input.Body.IsPublic,
		Tiers:       toDomainTiers(input.Body.Tiers),
	})
	if err != nil {
		return nil, err
	}
	return &TierListOutput{Body: list}, nil
}

func (s *Server) handleDeleteTierList(ctx context.Context, input *TierListIDInput) (*MessageOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.TierLists.Delete(ctx, actor, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Tier list removed"}}, nil
}

func (s *Server) handleLikeTierList(ctx context.Context, input *TierListIDInput) (*LikesOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.TierLists.Like(ctx, actor, input.ID)
	if err != nil {
		return nil, err
	}
	return &LikesOutput{Body: LikesResponse{Likes: list.Likes}}, nil
}
