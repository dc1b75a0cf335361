package http

import (
	"net/http"

	"dataentry/internal/core"
	"dataentry/internal/view"
)

// handleResults renders the results panel; the page polls it. A poll without a
// live session gets 204 so htmx leaves the panel alone.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if errResp := RequireMethod(r, http.MethodGet); errResp != nil {
		errResp.Write(w)
		return
	}
	v, ok := s.sessions.Lookup(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.renderResults(w, r, v)
}

func (s *Server) handleResultsPrev(w http.ResponseWriter, r *http.Request) {
	s.paginate(w, r, (*view.View).PrevPage)
}

func (s *Server) handleResultsNext(w http.ResponseWriter, r *http.Request) {
	s.paginate(w, r, (*view.View).NextPage)
}

// handleResultsPage jumps to ?n=; out of range values are clamped.
func (s *Server) handleResultsPage(w http.ResponseWriter, r *http.Request) {
	n, err := ParsePageNumber(r.URL.Query())
	if err != nil {
		BadRequestError("Invalid page number").Write(w)
		return
	}
	s.paginate(w, r, func(v *view.View) core.Page { return v.GoToPage(n) })
}

func (s *Server) paginate(w http.ResponseWriter, r *http.Request, move func(*view.View) core.Page) {
	if errResp := RequirePOST(r); errResp != nil {
		errResp.Write(w)
		return
	}
	v, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	move(v)
	s.renderResults(w, r, v)
}

func (s *Server) renderResults(w http.ResponseWriter, r *http.Request, v *view.View) {
	s.render(w, r, "results", newResultsView(v.Snapshot()), NewHTMXResponse())
}
