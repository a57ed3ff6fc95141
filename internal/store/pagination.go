package store

import "encoding/base64"

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int    // Items per page. Defaults to 100, capped at 1000.
	Cursor string // Opaque cursor for the next page. Empty for the first page.
}

// PaginatedResult contains one page of data.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
	Total      int    `json:"total"`
}

// DefaultPaginationParams returns the first page at the default size.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Limit: defaultPageLimit}
}

// Validate clamps the limit into range.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
}

// EncodeCursor creates an opaque cursor from the key of the last item served.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor decodes a cursor back to a key.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", ErrInvalidCursor.WithCause(err)
	}
	return string(decoded), nil
}

// Paginate slices an ordered listing into a page. key identifies an item;
// the cursor carries the key of the last item of the previous page.
func Paginate[T any](items []T, params PaginationParams, key func(T) string) (*PaginatedResult[T], error) {
	params.Validate()

	after, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	start := 0
	if after != "" {
		start = -1
		for i, item := range items {
			if key(item) == after {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, ErrInvalidCursor
		}
	}

	end := min(start+params.Limit, len(items))
	page := make([]T, 0, end-start)
	page = append(page, items[start:end]...)

	result := &PaginatedResult[T]{
		Items:   page,
		HasMore: end < len(items),
		Total:   len(items),
	}
	if result.HasMore && len(page) > 0 {
		result.NextCursor = EncodeCursor(key(page[len(page)-1]))
	}
	return result, nil
}
