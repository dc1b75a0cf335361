package view

import "dataentry/internal/core"

// State is an immutable copy of a view for rendering.
type State struct {
	SessionID string
	Entry     core.FormEntry
	// Source is the entry that produced Rows; rows echo it, not the live entry.
	Source  core.FormEntry
	Rows    []core.ResultRow
	Total   int
	Fetched bool
	Page    core.Page
	Loading bool
	Error   string
}

// TotalPages is the number of result pages.
func (s State) TotalPages() int {
	return s.Page.TotalPages()
}

// Snapshot copies the current state with only the visible page of rows.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	visible := core.Slice(v.results, v.page)
	rows := make([]core.ResultRow, len(visible))
	copy(rows, visible)

	return State{
		SessionID: v.id,
		Entry:     v.entry,
		Source:    v.source,
		Rows:      rows,
		Total:     len(v.results),
		Fetched:   v.fetched,
		Page:      v.page,
		Loading:   v.loading,
		Error:     v.errMsg,
	}
}
