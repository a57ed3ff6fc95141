package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/circleapp/circle-server/internal/domain"
	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/id"
	"github.com/circleapp/circle-server/internal/sse"
	"github.com/circleapp/circle-server/internal/store"
	"github.com/circleapp/circle-server/internal/util"
)

// Label membership messages surfaced to clients.
const (
	msgAlreadyInLabel   = "Item has been already added to label!"
	msgEmptyLabel       = "Cannot delete from empty label"
	msgNotInLabel       = "Cannot delete item that's not in label!"
	msgNotLabelAuthor   = "You are not the author of this label"
	labelNameValidation = "notblank,max=100"
)

// LabelService manages user labels (lists) and app labels.
//
// Membership changes run inside a store transaction, so the duplicate and
// absence checks cannot race with a concurrent change to the same label.
type LabelService struct {
	store   store.Store
	friends *FriendService
	emitter store.EventEmitter
	logger  *slog.Logger
}

// NewLabelService creates a label service.
func NewLabelService(store store.Store, friends *FriendService, emitter store.EventEmitter, logger *slog.Logger) *LabelService {
	return &LabelService{
		store:   store,
		friends: friends,
		emitter: emitter,
		logger:  logger,
	}
}

// CreateLabelRequest is the body of POST /lists.
type CreateLabelRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

// CreateUserLabel creates an empty label owned by authorID.
func (s *LabelService) CreateUserLabel(ctx context.Context, authorID string, req CreateLabelRequest) (*domain.UserLabel, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	labelID, err := id.Generate(id.PrefixLabel)
	if err != nil {
		return nil, fmt.Errorf("generate label ID: %w", err)
	}

	label := &domain.UserLabel{
		Entity:   domain.Entity{ID: labelID},
		Name:     strings.TrimSpace(req.Name),
		AuthorID: authorID,
		Items:    domain.Items{},
	}
	label.InitTimestamps()

	if err := s.store.CreateLabel(ctx, label); err != nil {
		return nil, fmt.Errorf("create label: %w", err)
	}

	s.logger.Info("label created", "label_id", label.ID, "author_id", authorID)
	return label, nil
}

// GetLabel returns a label or NOT_FOUND.
func (s *LabelService) GetLabel(ctx context.Context, labelID string) (*domain.UserLabel, error) {
	label, err := s.store.GetLabel(ctx, labelID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("label %s does not exist", labelID))
	}
	return label, nil
}

// IsAuthor returns the label when userID wrote it. It fails with NOT_FOUND
// for a missing label and NOT_ALLOWED for anyone else's.
func (s *LabelService) IsAuthor(ctx context.Context, labelID, userID string) (*domain.UserLabel, error) {
	label, err := s.GetLabel(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if !label.IsAuthor(userID) {
		return nil, domainerrors.NotAllowed(msgNotLabelAuthor)
	}
	return label, nil
}

// AssignToLabel appends item to the label. An item already present is
// NOT_ALLOWED and leaves the label unchanged.
func (s *LabelService) AssignToLabel(ctx context.Context, labelID, item string) (*domain.UserLabel, error) {
	label, err := s.store.UpdateLabelItems(ctx, labelID, func(l *domain.UserLabel) error {
		if l.Items.Contains(item) {
			return domainerrors.NotAllowed(msgAlreadyInLabel)
		}
		l.Items = l.Items.Add(item)
		return nil
	})
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("label %s does not exist", labelID))
	}
	return label, nil
}

// RemoveFromLabel removes the first occurrence of item. Removing from an
// empty label or removing an absent item is NOT_ALLOWED.
func (s *LabelService) RemoveFromLabel(ctx context.Context, labelID, item string) (*domain.UserLabel, error) {
	label, err := s.store.UpdateLabelItems(ctx, labelID, func(l *domain.UserLabel) error {
		if len(l.Items) == 0 {
			return domainerrors.NotAllowed(msgEmptyLabel)
		}
		items, removed := l.Items.Remove(item)
		if !removed {
			return domainerrors.NotAllowed(msgNotInLabel)
		}
		l.Items = items
		return nil
	})
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("label %s does not exist", labelID))
	}
	return label, nil
}

// AssignFriend adds one of userID's friends to a label userID wrote and
// notifies the friend.
func (s *LabelService) AssignFriend(ctx context.Context, user *domain.User, labelID, friendID string) (*domain.UserLabel, error) {
	if _, err := s.IsAuthor(ctx, labelID, user.ID); err != nil {
		return nil, err
	}
	if err := s.friends.AreUsersFriends(ctx, user.ID, friendID); err != nil {
		return nil, err
	}

	label, err := s.AssignToLabel(ctx, labelID, friendID)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(sse.NewLabelItemAssignedEvent(friendID, label.ID, user.Username))
	s.logger.Info("item assigned to label", "label_id", label.ID, "item", friendID)
	return label, nil
}

// RemoveItem removes item from a label userID wrote.
func (s *LabelService) RemoveItem(ctx context.Context, userID, labelID, item string) (*domain.UserLabel, error) {
	if _, err := s.IsAuthor(ctx, labelID, userID); err != nil {
		return nil, err
	}
	label, err := s.RemoveFromLabel(ctx, labelID, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info("item removed from label", "label_id", label.ID, "item", item)
	return label, nil
}

// DeleteUserLabel deletes a label by id. A missing label is not an error.
func (s *LabelService) DeleteUserLabel(ctx context.Context, labelID string) error {
	if err := s.store.DeleteLabel(ctx, labelID); err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	return nil
}

// DeleteOwnLabel deletes a label userID wrote. Deleting a label that is
// already gone succeeds; deleting someone else's is NOT_ALLOWED.
func (s *LabelService) DeleteOwnLabel(ctx context.Context, userID, labelID string) error {
	if _, err := s.IsAuthor(ctx, labelID, userID); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if err := s.DeleteUserLabel(ctx, labelID); err != nil {
		return err
	}
	s.logger.Info("label deleted", "label_id", labelID)
	return nil
}

// GetLabelItems returns the items of a label. The slice is empty, never
// nil, for a label without items.
func (s *LabelService) GetLabelItems(ctx context.Context, labelID string) (domain.Items, error) {
	label, err := s.GetLabel(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if label.Items == nil {
		return domain.Items{}, nil
	}
	return label.Items, nil
}

// GetOwnLabelItems returns the items of a label userID wrote.
func (s *LabelService) GetOwnLabelItems(ctx context.Context, userID, labelID string) (domain.Items, error) {
	if _, err := s.IsAuthor(ctx, labelID, userID); err != nil {
		return nil, err
	}
	return s.GetLabelItems(ctx, labelID)
}

// GetLabelsByAuthor returns the author's labels, most recently updated first.
func (s *LabelService) GetLabelsByAuthor(ctx context.Context, authorID string) ([]*domain.UserLabel, error) {
	labels, err := s.store.ListLabelsByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

// CreateAppLabel creates an app label whose identifier is the slug of name.
func (s *LabelService) CreateAppLabel(ctx context.Context, name string) (*domain.AppLabel, error) {
	if err := validate.Var("name", name, labelNameValidation); err != nil {
		return nil, err
	}
	identifier := util.Slugify(name)
	if identifier == "" {
		return nil, domainerrors.Validation("name must contain letters or digits")
	}

	labelID, err := id.Generate(id.PrefixAppLabel)
	if err != nil {
		return nil, fmt.Errorf("generate app label ID: %w", err)
	}

	label := &domain.AppLabel{
		Entity:     domain.Entity{ID: labelID},
		Identifier: identifier,
		Items:      domain.Items{},
	}
	label.InitTimestamps()

	if err := s.store.CreateAppLabel(ctx, label); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("app label %q already exists", identifier)
		}
		return nil, fmt.Errorf("create app label: %w", err)
	}

	s.logger.Info("app label created", "label_id", label.ID, "identifier", identifier)
	return label, nil
}

// EnsureAppLabel returns the app label for name, creating it when missing.
func (s *LabelService) EnsureAppLabel(ctx context.Context, name string) (*domain.AppLabel, error) {
	label, err := s.GetAppLabelByIdentifier(ctx, util.Slugify(name))
	if err == nil {
		return label, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	label, err = s.CreateAppLabel(ctx, name)
	if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
		// Lost a race with another creator.
		return s.GetAppLabelByIdentifier(ctx, util.Slugify(name))
	}
	return label, err
}

// GetAppLabel returns an app label or NOT_FOUND.
func (s *LabelService) GetAppLabel(ctx context.Context, labelID string) (*domain.AppLabel, error) {
	label, err := s.store.GetAppLabel(ctx, labelID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("app label %s does not exist", labelID))
	}
	return label, nil
}

// GetAppLabelByIdentifier returns an app label by identifier or NOT_FOUND.
func (s *LabelService) GetAppLabelByIdentifier(ctx context.Context, identifier string) (*domain.AppLabel, error) {
	label, err := s.store.GetAppLabelByIdentifier(ctx, identifier)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("app label %q does not exist", identifier))
	}
	return label, nil
}

// AssignToAppLabel mirrors AssignToLabel for app labels.
func (s *LabelService) AssignToAppLabel(ctx context.Context, labelID, item string) (*domain.AppLabel, error) {
	label, err := s.store.UpdateAppLabelItems(ctx, labelID, func(l *domain.AppLabel) error {
		if l.Items.Contains(item) {
			return domainerrors.NotAllowed(msgAlreadyInLabel)
		}
		l.Items = l.Items.Add(item)
		return nil
	})
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("app label %s does not exist", labelID))
	}
	return label, nil
}

// RemoveFromAppLabel mirrors RemoveFromLabel for app labels.
func (s *LabelService) RemoveFromAppLabel(ctx context.Context, labelID, item string) (*domain.AppLabel, error) {
	label, err := s.store.UpdateAppLabelItems(ctx, labelID, func(l *domain.AppLabel) error {
		if len(l.Items) == 0 {
			return domainerrors.NotAllowed(msgEmptyLabel)
		}
		items, removed := l.Items.Remove(item)
		if !removed {
			return domainerrors.NotAllowed(msgNotInLabel)
		}
		l.Items = items
		return nil
	})
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("app label %s does not exist", labelID))
	}
	return label, nil
}

// GetAppLabelItems returns the items of an app label, never nil.
func (s *LabelService) GetAppLabelItems(ctx context.Context, labelID string) (domain.Items, error) {
	label, err := s.GetAppLabel(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if label.Items == nil {
		return domain.Items{}, nil
	}
	return label.Items, nil
}

// DeleteAppLabel deletes an app label. A missing label is not an error.
func (s *LabelService) DeleteAppLabel(ctx context.Context, labelID string) error {
	if err := s.store.DeleteAppLabel(ctx, labelID); err != nil {
		return fmt.Errorf("delete app label: %w", err)
	}
	return nil
}
