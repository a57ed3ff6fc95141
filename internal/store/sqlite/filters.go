package sqlite

import (
	"context"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/store"
)

const filterColumns = `id, owner_id, name, label_id, created_at, updated_at`

func scanFilter(sc scanner) (*domain.Filter, error) {
	var (
		f         domain.Filter
		createdAt string
		updatedAt string
	)

	if err := sc.Scan(&f.ID, &f.OwnerID, &f.Name, &f.LabelID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFilter inserts a saved filter.
func (s *Store) CreateFilter(ctx context.Context, filter *domain.Filter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO filters (`+filterColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		filter.ID,
		filter.OwnerID,
		filter.Name,
		filter.LabelID,
		formatTime(filter.CreatedAt),
		formatTime(filter.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetFilter returns store.ErrNotFound when absent.
func (s *Store) GetFilter(ctx context.Context, id string) (*domain.Filter, error) {
	f, err := scanFilter(s.db.QueryRowContext(ctx, `SELECT `+filterColumns+` FROM filters WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// ListFiltersByOwner returns the owner's filters by name.
func (s *Store) ListFiltersByOwner(ctx context.Context, ownerID string) ([]*domain.Filter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+filterColumns+` FROM filters WHERE owner_id = ? ORDER BY name, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var filters []*domain.Filter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// DeleteFilter removes the filter if present.
func (s *Store) DeleteFilter(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM filters WHERE id = ?`, id)
	return err
}
