// Package view holds the server-side state of one data-entry form.
//
// A View owns the entry being composed, the last result set, the page the
// results table shows and the loading/error flags. Its methods are the only
// way to mutate that state; renderers read it through Snapshot.
package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"dataentry/internal/core"
	"dataentry/internal/fetch"
	"dataentry/internal/log"
	"dataentry/internal/schedule"
	"dataentry/internal/sheets"
)

// DefaultRefreshInterval is how often results are refetched while the entry is unchanged.
const DefaultRefreshInterval = 5 * time.Second

var (
	// ErrClosed is returned by operations on a view that has been torn down.
	ErrClosed = errors.New("view closed")
	// ErrSuperseded is returned by a fetch whose response was discarded because
	// a newer fetch started before it completed.
	ErrSuperseded = errors.New("fetch superseded")
)

// Options configures a View. Fetcher is required.
type Options struct {
	SessionID       string
	Fetcher         fetch.Fetcher
	Notifier        sheets.SubmissionNotifier
	Logger          *log.Logger
	RefreshInterval time.Duration
	Now             func() time.Time
}

// View is safe for concurrent use.
type View struct {
	id       string
	fetcher  fetch.Fetcher
	notifier sheets.SubmissionNotifier
	logger   *log.Logger
	slog     *log.StructuredLogger
	task     *schedule.Task

	life     context.Context
	shutdown context.CancelFunc

	mu          sync.Mutex
	entry       core.FormEntry
	results     []core.ResultRow
	source      core.FormEntry
	fetched     bool
	page        core.Page
	loading     bool
	errMsg      string
	seq         uint64
	cancelFetch context.CancelFunc
	closed      bool
}

// New creates a view with a fresh entry and arms the recurring refresh.
func New(opts Options) *View {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := opts.Logger.WithComponent(log.ComponentView).With(log.FieldSessionID, opts.SessionID)
	life, shutdown := context.WithCancel(context.Background())

	entry := core.NewFormEntry(opts.Now())

	v := &View{
		id:       opts.SessionID,
		fetcher:  opts.Fetcher,
		notifier: opts.Notifier,
		logger:   logger,
		slog:     log.NewStructuredLogger(opts.Logger.WithComponent(log.ComponentView)),
		task:     schedule.New(opts.RefreshInterval),
		life:     life,
		shutdown: shutdown,
		entry:    entry,
		page:     core.NewPage(0),
	}

	v.mu.Lock()
	v.rearmLocked()
	v.mu.Unlock()
	return v
}

// ID returns the session the view belongs to.
func (v *View) ID() string {
	return v.id
}

// rearmLocked restarts the refresh clock. Callers hold v.mu.
func (v *View) rearmLocked() {
	v.task.Rearm(v.life, v.refresh)
}

func (v *View) refresh(ctx context.Context) {
	v.logger.Debug("Refreshing results", log.FieldOperation, log.OpRefresh)
	_ = v.Fetch(ctx)
}

// UpdateField applies a text edit to the entry and re-arms the refresh.
func (v *View) UpdateField(name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}
	if err := v.entry.SetField(name, value); err != nil {
		return err
	}
	v.rearmLocked()
	return nil
}

// SetDate replaces the entry date and re-arms the refresh.
func (v *View) SetDate(d time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}
	v.entry.SetDate(d)
	v.rearmLocked()
	return nil
}

// SetDateInput parses a YYYY-MM-DD picker value in the entry's location. The
// time of day already on the date is kept.
func (v *View) SetDateInput(s string) error {
	v.mu.Lock()
	prev := v.entry.Date
	v.mu.Unlock()

	d, err := core.ParseDate(s, prev.Location())
	if err != nil {
		return err
	}
	y, m, day := d.Date()
	return v.SetDate(time.Date(y, m, day, prev.Hour(), prev.Minute(), prev.Second(), prev.Nanosecond(), prev.Location()))
}

// SetTime replaces the time of day and re-arms the refresh.
func (v *View) SetTime(t time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}
	v.entry.SetTime(t)
	v.rearmLocked()
	return nil
}

// SetTimeInput parses an HH:MM picker value onto the entry's current time day.
func (v *View) SetTimeInput(s string) error {
	v.mu.Lock()
	day := v.entry.Time
	v.mu.Unlock()

	t, err := core.ParseClock(s, day)
	if err != nil {
		return err
	}
	return v.SetTime(t)
}

// Submit validates the entry. An invalid entry sets the inline error and
// returns core.ErrRequiredFields without fetching. A valid one clears the
// error, is logged and announced to the notifier, then fetched exactly once.
func (v *View) Submit(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	entry := v.entry
	if err := entry.Validate(); err != nil {
		v.errMsg = core.RequiredFieldsMessage
		v.mu.Unlock()
		v.logger.Debug("Submission rejected", log.FieldOperation, log.OpValidate, log.FieldError, err.Error())
		return err
	}
	v.errMsg = ""
	v.mu.Unlock()

	v.slog.LogSubmission(ctx, v.id, entry)
	if v.notifier != nil {
		if err := v.notifier.NotifySubmitted(ctx, v.id, entry); err != nil {
			v.logger.Warn("Submission notification failed",
				log.FieldOperation, log.OpPublish,
				log.FieldError, err.Error())
		}
	}

	return v.Fetch(ctx)
}

// Fetch requests results for the current entry. Loading stays true until the
// latest fetch completes. Starting a fetch cancels the one it supersedes and a
// superseded response never replaces the results. A failed fetch is logged and
// leaves the previous results in place.
func (v *View) Fetch(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.cancelFetch != nil {
		v.cancelFetch()
	}
	fctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.life, cancel)
	v.seq++
	seq := v.seq
	v.cancelFetch = cancel
	v.loading = true
	entry := v.entry
	v.mu.Unlock()

	start := time.Now()
	rows, err := v.fetcher.Fetch(fctx, entry)
	stop()
	cancel()

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		v.logger.Debug("Discarding superseded fetch", log.FieldOperation, log.OpFetch)
		return ErrSuperseded
	}
	v.loading = false
	v.cancelFetch = nil

	if errors.Is(err, context.Canceled) {
		v.logger.Debug("Fetch cancelled", log.FieldOperation, log.OpFetch)
		return err
	}
	if err != nil {
		v.logger.Error("Fetch failed",
			log.FieldOperation, log.OpFetch,
			log.FieldError, err.Error(),
			log.FieldDuration, time.Since(start).Milliseconds())
		return err
	}

	v.results = rows
	v.source = entry
	v.fetched = true
	v.page = v.page.WithCount(len(rows))
	v.logger.Debug("Fetch completed",
		log.FieldOperation, log.OpFetch,
		log.FieldRows, len(rows),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// NextPage advances the results page; a no-op on the last page.
func (v *View) NextPage() core.Page {
	return v.paginate(core.Page.Next)
}

// PrevPage moves back one page; a no-op on page 1.
func (v *View) PrevPage() core.Page {
	return v.paginate(core.Page.Prev)
}

// GoToPage jumps to page n, clamped to the available pages.
func (v *View) GoToPage(n int) core.Page {
	return v.paginate(func(p core.Page) core.Page { return p.GoTo(n) })
}

func (v *View) paginate(move func(core.Page) core.Page) core.Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = move(v.page)
	v.logger.Debug("Page changed", log.FieldOperation, log.OpPaginate, log.FieldPage, v.page.Current)
	return v.page
}

// Close cancels the refresh and any in-flight fetch. It is idempotent.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.task.Stop()
	v.shutdown()
	v.logger.Debug("View closed", log.FieldOperation, log.OpShutdown)
}

// Closed reports whether Close has been called.
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
