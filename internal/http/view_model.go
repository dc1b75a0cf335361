package http

import (
	"context"

	"dataentry/internal/core"
	"dataentry/internal/log"
	"dataentry/internal/view"
)

// Template data for the page and its partials.
type (
	indexView struct {
		Form    formView
		Results resultsView
	}

	formView struct {
		Entry         core.FormEntry
		Categories    []string
		Subcategories []string
		Error         string
		TimeStep      int // seconds
	}

	resultsView struct {
		Loading      bool
		Fetched      bool
		Rows         []rowView
		Total        int
		Page         int
		Pages        int
		PageNumbers  []int
		PrevDisabled bool
		NextDisabled bool
	}

	// rowView is one table row: the fetched fields followed by the entry
	// that produced the result set.
	rowView struct {
		ID          int
		Title       string
		Body        string
		Date        string
		Time        string
		Category    string
		SubCategory string
		ItemName    string
		Quantity    string
		TotalPrice  string
		Comments    string
	}
)

func (s *Server) newFormView(ctx context.Context, state view.State) formView {
	cats, subs, err := s.taxonomy.List(ctx)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Option list unavailable", log.FieldError, err.Error())
	}
	return formView{
		Entry:         state.Entry,
		Categories:    withCurrent(cats, state.Entry.Category),
		Subcategories: withCurrent(subs, state.Entry.SubCategory),
		Error:         state.Error,
		TimeStep:      int(core.TimeStep.Seconds()),
	}
}

// withCurrent keeps a selected value visible when the option list no longer
// offers it.
func withCurrent(options []string, current string) []string {
	if current == "" {
		return options
	}
	for _, o := range options {
		if o == current {
			return options
		}
	}
	out := make([]string, 0, len(options)+1)
	out = append(out, options...)
	return append(out, current)
}

func newResultsView(state view.State) resultsView {
	src := state.Source
	rows := make([]rowView, len(state.Rows))
	for i, r := range state.Rows {
		rows[i] = rowView{
			ID:          r.ID,
			Title:       r.Title,
			Body:        r.Body,
			Date:        src.DisplayDate(),
			Time:        src.Clock(),
			Category:    src.Category,
			SubCategory: src.SubCategory,
			ItemName:    src.ItemName,
			Quantity:    src.Quantity,
			TotalPrice:  src.TotalPrice,
			Comments:    src.Comments,
		}
	}

	return resultsView{
		Loading:      state.Loading,
		Fetched:      state.Fetched,
		Rows:         rows,
		Total:        state.Total,
		Page:         state.Page.Current,
		Pages:        state.TotalPages(),
		PageNumbers:  pageNumbers(state.TotalPages()),
		PrevDisabled: state.Page.IsFirst(),
		NextDisabled: state.Page.IsLast(),
	}
}
