// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package autocomplete

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/wneessen/climatix/internal/favourites"
	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geocode"
	"github.com/wneessen/climatix/internal/geolocation"
	"github.com/wneessen/climatix/internal/logger"
)

type event interface{}

type (
	setQueryEvent struct {
		text string
	}
	keyEvent struct {
		key Key
	}
	submitEvent          struct{}
	selectEvent          struct{ index int }
	selectRecentEvent    struct{ index int }
	addFavouriteEvent    struct{ label string }
	removeFavouriteEvent struct{ label string }
	selectFavouriteEvent struct{ index int }
	clearEvent           struct{}
	focusEvent           struct{}
	useLocationEvent     struct{}
	busyEvent            struct{ busy bool }
	snapshotEvent        struct{ reply chan<- State }

	// debounceEvent fires once the query has been stable for the debounce interval.
	debounceEvent struct {
		seq   uint64
		query string
	}
	// resultEvent carries the merged suggestions for the query issued with seq.
	resultEvent struct {
		seq         uint64
		query       string
		suggestions []geocode.Suggestion
	}
	locationEvent struct {
		coord geo.Coordinate
		err   error
	}
)

func (c *Controller) handle(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case setQueryEvent:
		c.setQuery(ev.text)
	case keyEvent:
		c.press(ev.key)
	case submitEvent:
		c.submit()
	case selectEvent:
		c.selectSuggestion(ev.index)
	case selectRecentEvent:
		c.selectRecent(ev.index)
	case addFavouriteEvent:
		c.addFavourite(ev.label)
	case removeFavouriteEvent:
		c.removeFavourite(ev.label)
	case selectFavouriteEvent:
		c.selectFavourite(ev.index)
	case clearEvent:
		c.clear()
	case focusEvent:
		c.state.Open = true
	case useLocationEvent:
		c.useLocation(ctx)
	case busyEvent:
		c.state.Busy = ev.busy
	case snapshotEvent:
		ev.reply <- c.snapshot()
		return
	case debounceEvent:
		c.dispatch(ctx, ev)
	case resultEvent:
		c.applyResults(ev)
	case locationEvent:
		c.applyLocation(ev)
	default:
		c.logger.Warn("ignoring unknown event", slog.Any("event", ev))
		return
	}
	c.publish()
}

// setQuery invalidates every pending debounce and in-flight fetch. Only a query that
// stays unchanged for the debounce interval reaches the providers.
func (c *Controller) setQuery(text string) {
	c.seq++
	c.stopTimer()
	c.state.Query = text
	c.state.Notice = ""
	c.state.Cursor = -1
	c.state.Searching = false
	c.state.NoResults = false

	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < c.config.MinQueryLength {
		c.state.Suggestions = nil
		return
	}
	c.state.Open = true

	seq := c.seq
	c.timer = time.AfterFunc(c.config.Debounce, func() {
		c.post(debounceEvent{seq: seq, query: trimmed})
	})
}

func (c *Controller) dispatch(ctx context.Context, ev debounceEvent) {
	if ev.seq != c.seq {
		return
	}
	c.timer = nil
	c.state.Searching = true
	c.logger.Debug("dispatching suggestion search", slog.String("query", ev.query),
		slog.Uint64("seq", ev.seq))
	go c.fetch(ctx, ev.seq, ev.query)
}

// fetch queries both providers concurrently. A failing provider contributes no results
// and does not cancel the other one.
func (c *Controller) fetch(ctx context.Context, seq uint64, query string) {
	var primary, secondary []geocode.Suggestion
	var group errgroup.Group

	group.Go(func() error {
		primary = c.search(ctx, c.primary, query, c.config.PrimaryResults)
		return nil
	})
	if c.secondary != nil {
		group.Go(func() error {
			secondary = c.search(ctx, c.secondary, query, c.config.SecondaryResults)
			return nil
		})
	}
	_ = group.Wait()

	merged := geocode.Merge(primary, secondary, c.config.PrimaryResults, c.config.MaxResults)
	c.post(resultEvent{seq: seq, query: query, suggestions: merged})
}

func (c *Controller) search(ctx context.Context, searcher geocode.Searcher, query string, limit int) []geocode.Suggestion {
	results, err := searcher.Search(ctx, query, limit)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("suggestion search failed", slog.String("provider", searcher.Name()),
				slog.String("query", query), logger.Err(err))
		}
		return nil
	}
	return results
}

// applyResults leaves the open state alone, so a list closed while the search was in
// flight stays closed.
func (c *Controller) applyResults(ev resultEvent) {
	if ev.seq != c.seq || ev.query != strings.TrimSpace(c.state.Query) {
		c.logger.Debug("discarding stale suggestions", slog.String("query", ev.query),
			slog.Uint64("seq", ev.seq), slog.Uint64("current", c.seq))
		return
	}
	c.state.Suggestions = ev.suggestions
	c.state.Cursor = -1
	c.state.Searching = false
	c.state.NoResults = len(ev.suggestions) == 0
}

func (c *Controller) press(key Key) {
	count := len(c.state.Suggestions)
	switch key {
	case KeyDown:
		if count == 0 {
			return
		}
		c.state.Open = true
		if c.state.Cursor < count-1 {
			c.state.Cursor++
			return
		}
		c.state.Cursor = 0
	case KeyUp:
		if count == 0 {
			return
		}
		c.state.Open = true
		if c.state.Cursor > 0 {
			c.state.Cursor--
			return
		}
		c.state.Cursor = count - 1
	case KeyEnter:
		if c.state.Cursor >= 0 && c.state.Cursor < count {
			c.selectSuggestion(c.state.Cursor)
			return
		}
		c.submit()
	case KeyEscape:
		c.state.Open = false
		c.state.Cursor = -1
	}
}

// submit commits the raw query unless it is empty, already committed or the host is busy.
func (c *Controller) submit() {
	label := strings.TrimSpace(c.state.Query)
	if label == "" || c.state.Busy {
		return
	}
	c.commit(label, true)
}

func (c *Controller) selectSuggestion(index int) {
	if index < 0 || index >= len(c.state.Suggestions) {
		return
	}
	label := c.state.Suggestions[index].Label()
	c.state.Query = label
	c.state.Suggestions = nil
	c.commit(label, true)
}

// selectRecent commits a stored label verbatim. The recent list keeps its order.
func (c *Controller) selectRecent(index int) {
	if index < 0 || index >= len(c.state.Recent) {
		return
	}
	label := c.state.Recent[index]
	c.state.Query = label
	c.state.Suggestions = nil
	c.commit(label, false)
}

// favouriteLabel falls back to the committed city for a blank label.
func (c *Controller) favouriteLabel(label string) string {
	if label = strings.TrimSpace(label); label != "" {
		return label
	}
	return c.state.Committed
}

func (c *Controller) addFavourite(label string) {
	label = c.favouriteLabel(label)
	if c.favourites == nil || label == "" {
		return
	}
	c.state.Notice = ""
	added, err := c.favourites.Add(label)
	switch {
	case errors.Is(err, favourites.ErrFull):
		c.state.Notice = NoticeFavouritesFull
		return
	case err != nil:
		c.logger.Error("failed to persist favourites", logger.Err(err))
	}
	if added {
		c.logger.Info("favourite saved", slog.String("label", label))
	}
	c.state.Favourites = c.favourites.Items()
}

func (c *Controller) removeFavourite(label string) {
	label = c.favouriteLabel(label)
	if c.favourites == nil || label == "" {
		return
	}
	removed, err := c.favourites.Remove(label)
	if err != nil {
		c.logger.Error("failed to persist favourites", logger.Err(err))
	}
	if removed {
		c.logger.Info("favourite removed", slog.String("label", label))
	}
	c.state.Favourites = c.favourites.Items()
}

// selectFavourite commits a saved city verbatim without touching the recent searches.
func (c *Controller) selectFavourite(index int) {
	if index < 0 || index >= len(c.state.Favourites) {
		return
	}
	label := c.state.Favourites[index]
	c.state.Query = label
	c.state.Suggestions = nil
	c.commit(label, false)
}

func (c *Controller) clear() {
	c.invalidate()
	c.state.Query = ""
	c.state.Suggestions = nil
	c.state.Cursor = -1
	c.state.NoResults = false
	c.state.Notice = ""
}

// invalidate drops the pending debounce and marks in-flight results as stale.
func (c *Controller) invalidate() {
	c.seq++
	c.stopTimer()
	c.state.Searching = false
}

// commit hands label to the commit callback exactly once per distinct label. The
// dropdown closes and pending searches are dropped in either case.
func (c *Controller) commit(label string, remember bool) {
	c.invalidate()
	c.state.Open = false
	c.state.Cursor = -1
	if label == c.state.Committed {
		c.logger.Debug("ignoring duplicate commit", slog.String("label", label))
		return
	}
	c.state.Committed = label
	if remember {
		if err := c.history.Add(label); err != nil {
			c.logger.Error("failed to persist recent searches", logger.Err(err))
		}
		c.state.Recent = c.history.Items()
	}
	c.logger.Info("search committed", slog.String("label", label))
	c.onCommit(label)
}

func (c *Controller) useLocation(ctx context.Context) {
	if c.state.Locating {
		return
	}
	c.state.Notice = ""
	if c.locator == nil {
		c.state.Notice = NoticeLocationUnavailable
		return
	}
	c.state.Locating = true
	locator := c.locator
	go func() {
		coord, err := locator.Locate(ctx)
		c.post(locationEvent{coord: coord, err: err})
	}()
}

func (c *Controller) applyLocation(ev locationEvent) {
	c.state.Locating = false
	switch {
	case errors.Is(ev.err, geolocation.ErrDenied):
		c.logger.Warn("location access denied", logger.Err(ev.err))
		c.state.Notice = NoticeLocationDenied
		return
	case ev.err != nil:
		c.logger.Error("failed to determine location", logger.Err(ev.err))
		c.state.Notice = NoticeLocationUnavailable
		return
	}
	c.commit(ev.coord.String(), false)
}
