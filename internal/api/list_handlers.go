package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/circleapp/circle-server/internal/domain"
	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/id"
	"github.com/circleapp/circle-server/internal/service"
)

func (s *Server) registerListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLists",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists",
		Summary:     "List lists",
		Description: "Returns the caller's lists, most recently changed first",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLists)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createList",
		Method:        http.MethodPost,
		Path:          "/api/v1/lists",
		Summary:       "Create list",
		Tags:          []string{"Lists"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateList)

	huma.Register(s.api, huma.Operation{
		OperationID: "assignToList",
		Method:      http.MethodPut,
		Path:        "/api/v1/lists/assign/{id}",
		Summary:     "Assign friend to list",
		Description: "Adds one of the caller's friends to a list the caller owns",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAssignToList)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFromList",
		Method:      http.MethodPut,
		Path:        "/api/v1/lists/remove/{id}",
		Summary:     "Remove item from list",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFromList)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Delete list",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteList)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Get list items",
		Description: "Returns the members of a list the caller owns",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetListItems)
}

// === DTOs ===

// ListResponse contains list data in API responses.
type ListResponse struct {
	ID        string    `json:"id" doc:"List ID"`
	Name      string    `json:"name" doc:"List name"`
	Author    string    `json:"author" doc:"Owner user ID"`
	Items     []string  `json:"items" doc:"Member user IDs"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListListsResponse contains the caller's lists.
type ListListsResponse struct {
	Lists []ListResponse `json:"lists" doc:"Lists"`
}

// ListListsOutput wraps the lists for Huma.
type ListListsOutput struct {
	Body ListListsResponse
}

// CreateListRequest is the request body for creating a list.
type CreateListRequest struct {
	Name string `json:"name" doc:"List name"`
}

// CreateListInput wraps the create list request for Huma.
type CreateListInput struct {
	Body CreateListRequest
}

// ListMessageResponse confirms a list write.
type ListMessageResponse struct {
	Message string       `json:"msg" doc:"Confirmation message"`
	List    ListResponse `json:"list" doc:"The list after the change"`
}

// ListMessageOutput wraps the list write response for Huma.
type ListMessageOutput struct {
	Body ListMessageResponse
}

// ListItemRequest names one list member.
type ListItemRequest struct {
	Item string `json:"item" doc:"User ID"`
}

// ListItemInput wraps a list member change for Huma.
type ListItemInput struct {
	ID   string `path:"id" doc:"List ID"`
	Body ListItemRequest
}

// ListIDInput contains a list ID path parameter.
type ListIDInput struct {
	ID string `path:"id" doc:"List ID"`
}

// ListItemsResponse contains a list's members, or a message when it has none.
type ListItemsResponse struct {
	Items   []string `json:"items,omitempty" doc:"Member user IDs"`
	Message string   `json:"msg,omitempty" doc:"Set when the list is empty"`
}

// ListItemsOutput wraps the list members for Huma.
type ListItemsOutput struct {
	Body ListItemsResponse
}

// === Handlers ===

func (s *Server) handleListLists(ctx context.Context, _ *struct{}) (*ListListsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	labels, err := s.services.Label.GetLabelsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	lists := make([]ListResponse, 0, len(labels))
	for _, l := range labels {
		lists = append(lists, mapList(l))
	}

	return &ListListsOutput{Body: ListListsResponse{Lists: lists}}, nil
}

func (s *Server) handleCreateList(ctx context.Context, input *CreateListInput) (*ListMessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	label, err := s.services.Label.CreateUserLabel(ctx, userID, service.CreateLabelRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &ListMessageOutput{
		Body: ListMessageResponse{Message: "MyLifeList successfully created!", List: mapList(label)},
	}, nil
}

func (s *Server) handleAssignToList(ctx context.Context, input *ListItemInput) (*ListMessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if !id.HasPrefix(input.Body.Item, id.PrefixUser) {
		return nil, domainerrors.Validation("item must be a user ID")
	}

	if _, err := s.services.User.GetUser(ctx, input.Body.Item); err != nil {
		return nil, err
	}

	label, err := s.services.Label.AssignFriend(ctx, user, input.ID, input.Body.Item)
	if err != nil {
		return nil, err
	}

	return &ListMessageOutput{
		Body: ListMessageResponse{Message: "Assigned item to list", List: mapList(label)},
	}, nil
}

func (s *Server) handleRemoveFromList(ctx context.Context, input *ListItemInput) (*ListMessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	label, err := s.services.Label.RemoveItem(ctx, userID, input.ID, input.Body.Item)
	if err != nil {
		return nil, err
	}

	return &ListMessageOutput{
		Body: ListMessageResponse{Message: "Deleted item from list", List: mapList(label)},
	}, nil
}

func (s *Server) handleDeleteList(ctx context.Context, input *ListIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Label.DeleteOwnLabel(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return message("Label deleted successfully!"), nil
}

func (s *Server) handleGetListItems(ctx context.Context, input *ListIDInput) (*ListItemsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Label.GetOwnLabelItems(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return &ListItemsOutput{Body: ListItemsResponse{Message: "Label is empty"}}, nil
	}
	return &ListItemsOutput{Body: ListItemsResponse{Items: items}}, nil
}

// === Helpers ===

func mapList(l *domain.UserLabel) ListResponse {
	items := []string(l.Items)
	if items == nil {
		items = []string{}
	}
	return ListResponse{
		ID:        l.ID,
		Name:      l.Name,
		Author:    l.AuthorID,
		Items:     items,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
