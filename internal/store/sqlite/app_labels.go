package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/store"
)

const appLabelColumns = `id, identifier, created_at, updated_at`

func scanAppLabel(sc scanner) (*domain.AppLabel, error) {
	var (
		l         domain.AppLabel
		createdAt string
		updatedAt string
	)

	if err := sc.Scan(&l.ID, &l.Identifier, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateAppLabel inserts an app label. Returns store.ErrAlreadyExists
// when the identifier is taken.
func (s *Store) CreateAppLabel(ctx context.Context, label *domain.AppLabel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO app_labels (`+appLabelColumns+`) VALUES (?, ?, ?, ?)`,
		label.ID,
		label.Identifier,
		formatTime(label.CreatedAt),
		formatTime(label.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}

	if err := replaceItems(ctx, tx, "app_label_items", label.ID, label.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) getAppLabelWhere(ctx context.Context, q rowQueryer, column, value string) (*domain.AppLabel, error) {
	row := q.QueryRowContext(ctx, `SELECT `+appLabelColumns+` FROM app_labels WHERE `+column+` = ?`, value)
	l, err := scanAppLabel(row)
	if err != nil {
		return nil, notFound(err)
	}
	if l.Items, err = loadItems(ctx, q, "app_label_items", l.ID); err != nil {
		return nil, fmt.Errorf("load app label items: %w", err)
	}
	return l, nil
}

// GetAppLabel returns store.ErrNotFound when absent.
func (s *Store) GetAppLabel(ctx context.Context, id string) (*domain.AppLabel, error) {
	return s.getAppLabelWhere(ctx, s.db, "id", id)
}

// GetAppLabelByIdentifier returns store.ErrNotFound when absent.
func (s *Store) GetAppLabelByIdentifier(ctx context.Context, identifier string) (*domain.AppLabel, error) {
	return s.getAppLabelWhere(ctx, s.db, "identifier", identifier)
}

// UpdateAppLabelItems is the app label counterpart of UpdateLabelItems.
func (s *Store) UpdateAppLabelItems(ctx context.Context, id string, fn func(*domain.AppLabel) error) (*domain.AppLabel, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	label, err := s.getAppLabelWhere(ctx, tx, "id", id)
	if err != nil {
		return nil, err
	}

	if err := fn(label); err != nil {
		return nil, err
	}

	label.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE app_labels SET updated_at = ? WHERE id = ?`, formatTime(label.UpdatedAt), id); err != nil {
		return nil, err
	}
	if err := replaceItems(ctx, tx, "app_label_items", id, label.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return label, nil
}

// DeleteAppLabel removes the app label if present.
func (s *Store) DeleteAppLabel(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM app_labels WHERE id = ?`, id)
	return err
}
