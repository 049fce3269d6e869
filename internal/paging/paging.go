// Package paging holds the skip/limit window shared by the API and its
// clients.
package paging

import "context"

const (
	// DefaultPageSize is the limit the API applies when none is given.
	DefaultPageSize = 100
	// MaxPageSize bounds every list call; larger limits are clamped.
	MaxPageSize = 1000
)

// Window normalises offset/limit. ok is false when the window is empty by
// construction (negative offset, non-positive limit).
func Window(offset, limit int) (int, int, bool) {
	if offset < 0 || limit <= 0 {
		return 0, 0, false
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return offset, limit, true
}

// ListAll drains a paged list function.
func ListAll[T any](ctx context.Context, list func(ctx context.Context, offset, limit int) ([]T, error)) ([]T, error) {
	out := []T{}
	for offset := 0; ; offset += MaxPageSize {
		items, err := list(ctx, offset, MaxPageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(items) < MaxPageSize {
			return out, nil
		}
	}
}
