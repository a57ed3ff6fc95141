package sqlite

import (
	"context"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/store"
)

const requestColumns = `id, from_id, to_id, status, created_at, updated_at`

func scanRequest(sc scanner) (*domain.FriendRequest, error) {
	var (
		r         domain.FriendRequest
		status    string
		createdAt string
		updatedAt string
	)

	if err := sc.Scan(&r.ID, &r.FromID, &r.ToID, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.Status = domain.RequestStatus(status)

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateFriendRequest inserts a friend request.
func (s *Store) CreateFriendRequest(ctx context.Context, req *domain.FriendRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friend_requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID,
		req.FromID,
		req.ToID,
		string(req.Status),
		formatTime(req.CreatedAt),
		formatTime(req.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetPendingRequest returns store.ErrNotFound when no pending from -> to request exists.
func (s *Store) GetPendingRequest(ctx context.Context, fromID, toID string) (*domain.FriendRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM friend_requests
		WHERE from_id = ? AND to_id = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1`,
		fromID, toID, string(domain.RequestPending))
	r, err := scanRequest(row)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// UpdateFriendRequest writes the request status.
func (s *Store) UpdateFriendRequest(ctx context.Context, req *domain.FriendRequest) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE friend_requests SET status = ?, updated_at = ? WHERE id = ?`,
		string(req.Status), formatTime(req.UpdatedAt), req.ID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteFriendRequest returns store.ErrNotFound when absent.
func (s *Store) DeleteFriendRequest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM friend_requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ListFriendRequests returns requests sent or received by userID, newest first.
func (s *Store) ListFriendRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM friend_requests
		WHERE from_id = ? OR to_id = ?
		ORDER BY created_at DESC, id`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.FriendRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// AcceptFriendRequest updates the request and inserts the friendship in one transaction.
func (s *Store) AcceptFriendRequest(ctx context.Context, req *domain.FriendRequest, friendship *domain.Friendship) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE friend_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(req.Status), formatTime(req.UpdatedAt), req.ID, string(domain.RequestPending))
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO friendships (id, user1_id, user2_id, created_at) VALUES (?, ?, ?, ?)`,
		friendship.ID, friendship.User1ID, friendship.User2ID, formatTime(friendship.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetFriendship finds the edge between a and b regardless of direction.
func (s *Store) GetFriendship(ctx context.Context, a, b string) (*domain.Friendship, error) {
	var (
		f         domain.Friendship
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user1_id, user2_id, created_at FROM friendships
		WHERE (user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)
		LIMIT 1`, a, b, b, a).Scan(&f.ID, &f.User1ID, &f.User2ID, &createdAt)
	if err != nil {
		return nil, notFound(err)
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFriendship returns store.ErrNotFound when absent.
func (s *Store) DeleteFriendship(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM friendships WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ListFriendIDs returns the IDs of userID's friends in the order the
// friendships were made.
func (s *Store) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	return queryStrings(ctx, s.db, `
		SELECT CASE WHEN user1_id = ? THEN user2_id ELSE user1_id END
		FROM friendships
		WHERE user1_id = ? OR user2_id = ?
		ORDER BY created_at, id`, userID, userID, userID)
}
