package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rows(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPagination(t *testing.T) {
	data := rows(12)
	p := NewPage(len(data))

	assert.Equal(t, 3, p.TotalPages())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Slice(data, p))
	assert.True(t, p.IsFirst())

	assert.Equal(t, p, p.Prev(), "prev on page 1 is a no-op")

	p = p.Next().Next()
	assert.Equal(t, 3, p.Current)
	assert.Equal(t, []int{11, 12}, Slice(data, p))
	assert.True(t, p.IsLast())
	assert.Equal(t, p, p.Next(), "next on last page is a no-op")
}

func TestTotalPages(t *testing.T) {
	cases := []struct{ count, want int }{
		{0, 0}, {1, 1}, {5, 1}, {6, 2}, {10, 2}, {100, 20},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NewPage(tc.count).TotalPages(), "count=%d", tc.count)
	}
}

func TestGoToClamps(t *testing.T) {
	p := NewPage(12)
	assert.Equal(t, 2, p.GoTo(2).Current)
	assert.Equal(t, 3, p.GoTo(99).Current)
	assert.Equal(t, 1, p.GoTo(0).Current)
	assert.Equal(t, 1, p.GoTo(-4).Current)

	empty := NewPage(0)
	assert.Equal(t, 1, empty.GoTo(3).Current)
	assert.Empty(t, Slice([]int{}, empty))
}

func TestWithCountKeepsPageInRange(t *testing.T) {
	p := NewPage(12).GoTo(3)

	assert.Equal(t, 3, p.WithCount(15).Current, "still in range")
	assert.Equal(t, 2, p.WithCount(7).Current, "clamped to new last page")
	assert.Equal(t, 1, p.WithCount(0).Current)
}

func TestEmptyResultsNextIsNoop(t *testing.T) {
	p := NewPage(0)
	assert.Equal(t, 1, p.Next().Current)
	assert.Equal(t, 1, p.Prev().Current)
}
