package sqlite

import (
	"context"
	"database/sql"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/store"
)

const postColumns = `id, author_id, content, prompt, audience, background_color, created_at, updated_at`

func scanPost(sc scanner) (*domain.Post, error) {
	var (
		p         domain.Post
		audience  sql.NullString
		bgColor   sql.NullString
		createdAt string
		updatedAt string
	)

	err := sc.Scan(&p.ID, &p.AuthorID, &p.Content, &p.Prompt, &audience, &bgColor, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if audience.Valid {
		p.Audience = &audience.String
	}
	p.Options.BackgroundColor = bgColor.String

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows *sql.Rows) ([]*domain.Post, error) {
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePost inserts a post.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Content,
		post.Prompt,
		nullableString(post.Audience),
		nullString(post.Options.BackgroundColor),
		formatTime(post.CreatedAt),
		formatTime(post.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetPost returns store.ErrNotFound when absent.
func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// GetPostsByIDs returns the posts that still exist among ids, in ids order.
func (s *Store) GetPostsByIDs(ctx context.Context, ids []string) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	found, err := collectPosts(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	posts := make([]*domain.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// UpdatePost writes every mutable post field.
func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET content = ?, prompt = ?, audience = ?, background_color = ?, updated_at = ?
		WHERE id = ?`,
		post.Content,
		post.Prompt,
		nullableString(post.Audience),
		nullString(post.Options.BackgroundColor),
		formatTime(post.UpdatedAt),
		post.ID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeletePost returns store.ErrNotFound when absent.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ListPostsByAuthor returns an author's posts, newest first.
func (s *Store) ListPostsByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE author_id = ? ORDER BY created_at DESC, id`, authorID)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// ListPosts returns every post, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}
