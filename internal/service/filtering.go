package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/circleapp/circle-server/internal/domain"
	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/id"
	"github.com/circleapp/circle-server/internal/store"
)

// GetItemsMatchingFilter returns the items of inputItems that are members
// of labelItems, in inputItems order and with repeats kept.
func GetItemsMatchingFilter(labelItems, inputItems []string) []string {
	return domain.MatchItems(labelItems, inputItems)
}

// FilterService manages saved filters: a name bound to one of the owner's
// labels.
type FilterService struct {
	store  store.Store
	labels *LabelService
	logger *slog.Logger
}

// NewFilterService creates a filter service.
func NewFilterService(store store.Store, labels *LabelService, logger *slog.Logger) *FilterService {
	return &FilterService{
		store:  store,
		labels: labels,
		logger: logger,
	}
}

// CreateFilterRequest is the body of POST /filters.
type CreateFilterRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=100"`
	LabelID string `json:"label" validate:"required"`
}

// CreateFilter saves a filter over a label ownerID wrote.
func (s *FilterService) CreateFilter(ctx context.Context, ownerID string, req CreateFilterRequest) (*domain.Filter, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.labels.IsAuthor(ctx, req.LabelID, ownerID); err != nil {
		return nil, err
	}

	filterID, err := id.Generate(id.PrefixFilter)
	if err != nil {
		return nil, fmt.Errorf("generate filter ID: %w", err)
	}

	filter := &domain.Filter{
		Entity:  domain.Entity{ID: filterID},
		OwnerID: ownerID,
		Name:    strings.TrimSpace(req.Name),
		LabelID: req.LabelID,
	}
	filter.InitTimestamps()

	if err := s.store.CreateFilter(ctx, filter); err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}

	s.logger.Info("filter created", "filter_id", filter.ID, "owner_id", ownerID)
	return filter, nil
}

// ListFilters returns ownerID's saved filters.
func (s *FilterService) ListFilters(ctx context.Context, ownerID string) ([]*domain.Filter, error) {
	filters, err := s.store.ListFiltersByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	if filters == nil {
		filters = []*domain.Filter{}
	}
	return filters, nil
}

// DeleteFilter deletes one of ownerID's filters. A missing filter is not
// an error; someone else's is NOT_ALLOWED.
func (s *FilterService) DeleteFilter(ctx context.Context, ownerID, filterID string) error {
	filter, err := s.store.GetFilter(ctx, filterID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("get filter: %w", err)
	}
	if filter.OwnerID != ownerID {
		return domainerrors.NotAllowed("You are not the owner of this filter")
	}
	if err := s.store.DeleteFilter(ctx, filterID); err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	s.logger.Info("filter deleted", "filter_id", filterID)
	return nil
}

// ApplyFilter runs one of ownerID's filters over inputItems.
func (s *FilterService) ApplyFilter(ctx context.Context, ownerID, filterID string, inputItems []string) ([]string, error) {
	filter, err := s.store.GetFilter(ctx, filterID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("filter %s does not exist", filterID))
	}
	if filter.OwnerID != ownerID {
		return nil, domainerrors.NotAllowed("You are not the owner of this filter")
	}

	labelItems, err := s.labels.GetLabelItems(ctx, filter.LabelID)
	if err != nil {
		return nil, err
	}
	return GetItemsMatchingFilter(labelItems, inputItems), nil
}
