package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/service"
)

func (s *Server) registerFilterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "filterItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/filer/items",
		Summary:     "Filter items",
		Description: "Returns the input items that also appear in the label items, in input order",
		Tags:        []string{"Filters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFilterItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFilters",
		Method:      http.MethodGet,
		Path:        "/api/v1/filters",
		Summary:     "List saved filters",
		Tags:        []string{"Filters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFilters)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createFilter",
		Method:        http.MethodPost,
		Path:          "/api/v1/filters",
		Summary:       "Save filter",
		Description:   "Saves a named filter over one of the caller's lists",
		Tags:          []string{"Filters"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateFilter)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFilter",
		Method:      http.MethodDelete,
		Path:        "/api/v1/filters/{id}",
		Summary:     "Delete saved filter",
		Tags:        []string{"Filters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteFilter)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyFilter",
		Method:      http.MethodPost,
		Path:        "/api/v1/filters/{id}/apply",
		Summary:     "Apply saved filter",
		Description: "Keeps the items that are members of the filter's list",
		Tags:        []string{"Filters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApplyFilter)
}

// === DTOs ===

// FilterItemsInput contains the two item sets to intersect.
type FilterItemsInput struct {
	LabelItems []string `query:"label_items" doc:"Items of the label, comma separated"`
	InputItems []string `query:"input_items" doc:"Items to filter, comma separated"`
}

// ItemsResponse contains a list of items.
type ItemsResponse struct {
	Items []string `json:"items" doc:"Matching items"`
}

// ItemsOutput wraps the items response for Huma.
type ItemsOutput struct {
	Body ItemsResponse
}

// FilterResponse contains saved filter data in API responses.
type FilterResponse struct {
	ID        string    `json:"id" doc:"Filter ID"`
	Name      string    `json:"name" doc:"Filter name"`
	Label     string    `json:"label" doc:"List ID the filter matches against"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// ListFiltersResponse contains saved filters.
type ListFiltersResponse struct {
	Filters []FilterResponse `json:"filters" doc:"Saved filters"`
}

// ListFiltersOutput wraps the filter list for Huma.
type ListFiltersOutput struct {
	Body ListFiltersResponse
}

// CreateFilterRequest is the request body for saving a filter.
type CreateFilterRequest struct {
	Name  string `json:"name" doc:"Filter name"`
	Label string `json:"label" doc:"One of your list IDs"`
}

// CreateFilterInput wraps the create filter request for Huma.
type CreateFilterInput struct {
	Body CreateFilterRequest
}

// FilterOutput wraps a filter response for Huma.
type FilterOutput struct {
	Body FilterResponse
}

// FilterIDInput contains a filter ID path parameter.
type FilterIDInput struct {
	ID string `path:"id" doc:"Filter ID"`
}

// ApplyFilterRequest is the request body for applying a saved filter.
type ApplyFilterRequest struct {
	Items []string `json:"items" doc:"Items to filter"`
}

// ApplyFilterInput wraps the items to run through a saved filter.
type ApplyFilterInput struct {
	ID   string `path:"id" doc:"Filter ID"`
	Body ApplyFilterRequest
}

// === Handlers ===

func (s *Server) handleFilterItems(ctx context.Context, input *FilterItemsInput) (*ItemsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	items := service.GetItemsMatchingFilter(input.LabelItems, input.InputItems)
	return &ItemsOutput{Body: ItemsResponse{Items: items}}, nil
}

func (s *Server) handleListFilters(ctx context.Context, _ *struct{}) (*ListFiltersOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	filters, err := s.services.Filter.ListFilters(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]FilterResponse, 0, len(filters))
	for _, f := range filters {
		out = append(out, mapFilter(f))
	}

	return &ListFiltersOutput{Body: ListFiltersResponse{Filters: out}}, nil
}

func (s *Server) handleCreateFilter(ctx context.Context, input *CreateFilterInput) (*FilterOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	filter, err := s.services.Filter.CreateFilter(ctx, userID, service.CreateFilterRequest{
		Name:    input.Body.Name,
		LabelID: input.Body.Label,
	})
	if err != nil {
		return nil, err
	}

	return &FilterOutput{Body: mapFilter(filter)}, nil
}

func (s *Server) handleDeleteFilter(ctx context.Context, input *FilterIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Filter.DeleteFilter(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return message("Filter deleted successfully!"), nil
}

func (s *Server) handleApplyFilter(ctx context.Context, input *ApplyFilterInput) (*ItemsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Filter.ApplyFilter(ctx, userID, input.ID, input.Body.Items)
	if err != nil {
		return nil, err
	}

	return &ItemsOutput{Body: ItemsResponse{Items: items}}, nil
}

func mapFilter(f *domain.Filter) FilterResponse {
	return FilterResponse{
		ID:        f.ID,
		Name:      f.Name,
		Label:     f.LabelID,
		CreatedAt: f.CreatedAt,
	}
}
