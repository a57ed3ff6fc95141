package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/store"
)

const labelColumns = `id, author_id, name, created_at, updated_at`

func scanLabel(sc scanner) (*domain.UserLabel, error) {
	var (
		l         domain.UserLabel
		createdAt string
		updatedAt string
	)

	if err := sc.Scan(&l.ID, &l.AuthorID, &l.Name, &createdAt, &updatedAt); err != nil {
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

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowQueryer interface {
	queryer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// loadItems returns the ordered items of a label from table.
// The result is never nil so an empty label serializes as [].
func loadItems(ctx context.Context, q queryer, table, labelID string) (domain.Items, error) {
	items, err := queryStrings(ctx, q,
		`SELECT item FROM `+table+` WHERE label_id = ? ORDER BY position`, labelID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = domain.Items{}
	}
	return items, nil
}

// replaceItems rewrites a label's items with positions matching slice order.
func replaceItems(ctx context.Context, ex execer, table, labelID string, items domain.Items) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM `+table+` WHERE label_id = ?`, labelID); err != nil {
		return err
	}
	for i, item := range items {
		_, err := ex.ExecContext(ctx,
			`INSERT INTO `+table+` (label_id, item, position) VALUES (?, ?, ?)`, labelID, item, i)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", item, err)
		}
	}
	return nil
}

// CreateLabel inserts a user label with its items.
func (s *Store) CreateLabel(ctx context.Context, label *domain.UserLabel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_labels (`+labelColumns+`) VALUES (?, ?, ?, ?, ?)`,
		label.ID,
		label.AuthorID,
		label.Name,
		formatTime(label.CreatedAt),
		formatTime(label.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}

	if err := replaceItems(ctx, tx, "user_label_items", label.ID, label.Items); err != nil {
		return err
	}
	return tx.Commit()
}

// GetLabel returns the label with its items, or store.ErrNotFound.
func (s *Store) GetLabel(ctx context.Context, id string) (*domain.UserLabel, error) {
	return getLabel(ctx, s.db, id)
}

func getLabel(ctx context.Context, q rowQueryer, id string) (*domain.UserLabel, error) {
	l, err := scanLabel(q.QueryRowContext(ctx, `SELECT `+labelColumns+` FROM user_labels WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if l.Items, err = loadItems(ctx, q, "user_label_items", id); err != nil {
		return nil, fmt.Errorf("load label items: %w", err)
	}
	return l, nil
}

// ListLabelsByAuthor returns the author's labels, most recently updated first.
func (s *Store) ListLabelsByAuthor(ctx context.Context, authorID string) ([]*domain.UserLabel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+labelColumns+` FROM user_labels WHERE author_id = ? ORDER BY updated_at DESC, id`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []*domain.UserLabel
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, l := range labels {
		if l.Items, err = loadItems(ctx, s.db, "user_label_items", l.ID); err != nil {
			return nil, fmt.Errorf("load items for %s: %w", l.ID, err)
		}
	}
	return labels, nil
}

// UpdateLabelItems runs fn against the current label inside an immediate
// transaction and persists the items it leaves behind.
func (s *Store) UpdateLabelItems(ctx context.Context, id string, fn func(*domain.UserLabel) error) (*domain.UserLabel, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	label, err := getLabel(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(label); err != nil {
		return nil, err
	}

	label.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE user_labels SET updated_at = ? WHERE id = ?`, formatTime(label.UpdatedAt), id); err != nil {
		return nil, err
	}
	if err := replaceItems(ctx, tx, "user_label_items", id, label.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return label, nil
}

// DeleteLabel removes the label if present.
func (s *Store) DeleteLabel(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_labels WHERE id = ?`, id)
	return err
}
