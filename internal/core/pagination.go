package core

// ItemsPerPage is the fixed size of a results page.
const ItemsPerPage = 5

// Page is a client-side pagination window over a result sequence.
type Page struct {
	Current int
	Size    int
	Count   int // number of results being paginated
}

// NewPage returns page 1 of count results.
func NewPage(count int) Page {
	return Page{Current: 1, Size: ItemsPerPage, Count: count}
}

// TotalPages is ceil(Count/Size).
func (p Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.Count + p.Size - 1) / p.Size
}

// Bounds returns the half-open slice range of the current page.
func (p Page) Bounds() (start, end int) {
	start = (p.Current - 1) * p.Size
	end = p.Current * p.Size
	if start < 0 {
		start = 0
	}
	if start > p.Count {
		start = p.Count
	}
	if end > p.Count {
		end = p.Count
	}
	if end < start {
		end = start
	}
	return start, end
}

// Next moves forward one page; no-op on the last page.
func (p Page) Next() Page {
	if p.Current < p.TotalPages() {
		p.Current++
	}
	return p
}

// Prev moves back one page; no-op on page 1.
func (p Page) Prev() Page {
	if p.Current > 1 {
		p.Current--
	}
	return p
}

// GoTo jumps to page n, clamped to [1, max(1, TotalPages)].
func (p Page) GoTo(n int) Page {
	p.Current = n
	return p.clamp()
}

// WithCount re-derives the window for a new result count, keeping the current
// page when it is still in range.
func (p Page) WithCount(count int) Page {
	p.Count = count
	return p.clamp()
}

// IsFirst reports whether Prev would be a no-op.
func (p Page) IsFirst() bool { return p.Current <= 1 }

// IsLast reports whether Next would be a no-op.
func (p Page) IsLast() bool { return p.Current >= p.TotalPages() }

func (p Page) clamp() Page {
	last := p.TotalPages()
	if last < 1 {
		last = 1
	}
	if p.Current > last {
		p.Current = last
	}
	if p.Current < 1 {
		p.Current = 1
	}
	return p
}

// Slice returns the visible window of rows for p.
func Slice[T any](rows []T, p Page) []T {
	start, end := p.Bounds()
	if end > len(rows) {
		end = len(rows)
	}
	if start > end {
		start = end
	}
	return rows[start:end]
}
