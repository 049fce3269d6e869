package paging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	cases := []struct {
		offset, limit    int
		wantOff, wantLim int
		wantOK           bool
	}{
		{0, 100, 0, 100, true},
		{5, 0, 0, 0, false},
		{-1, 10, 0, 0, false},
		{0, -3, 0, 0, false},
		{10, MaxPageSize + 500, 10, MaxPageSize, true},
	}
	for _, tc := range cases {
		off, lim, ok := Window(tc.offset, tc.limit)
		assert.Equal(t, tc.wantOK, ok)
		assert.Equal(t, tc.wantOff, off)
		assert.Equal(t, tc.wantLim, lim)
	}
}

func TestListAll(t *testing.T) {
	total := MaxPageSize + 3
	calls := 0
	all, err := ListAll(context.Background(), func(_ context.Context, offset, limit int) ([]int, error) {
		calls++
		var out []int
		for i := offset; i < total && i < offset+limit; i++ {
			out = append(out, i)
		}
		return out, nil
	})
	require.NoError(t, err)
	assert.Len(t, all, total)
	assert.Equal(t, 2, calls)
	assert.Equal(t, total-1, all[len(all)-1])
}

func TestListAllEmptyAndError(t *testing.T) {
	all, err := ListAll(context.Background(), func(context.Context, int, int) ([]string, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	boom := errors.New("boom")
	_, err = ListAll(context.Background(), func(context.Context, int, int) ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
