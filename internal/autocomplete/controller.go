// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package autocomplete implements the city search box: a debounced, dual-provider
// suggestion list with keyboard selection, commit handling and recent searches.
//
// All state is owned by the goroutine running Controller.Run. The exported methods
// only post events to it and never block on the presentation layer.
package autocomplete

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/wneessen/climatix/internal/favourites"
	"github.com/wneessen/climatix/internal/geocode"
	"github.com/wneessen/climatix/internal/geolocation"
	"github.com/wneessen/climatix/internal/logger"
	"github.com/wneessen/climatix/internal/recent"
)

const eventBuffer = 64

// User visible notices.
const (
	NoticeLocationDenied      = "Location access denied. Please enable location permissions."
	NoticeLocationUnavailable = "Unable to determine your location."
	NoticeFavouritesFull      = "Favourites list is full."
)

var ErrStopped = errors.New("autocomplete controller is not running")

// Key is a navigation key understood by the controller.
type Key int

const (
	KeyUp Key = iota + 1
	KeyDown
	KeyEnter
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Config holds the tunables of the suggestion search.
type Config struct {
	Debounce         time.Duration
	MinQueryLength   int
	PrimaryResults   int
	SecondaryResults int
	MaxResults       int
}

func DefaultConfig() Config {
	return Config{
		Debounce:         time.Millisecond * 300,
		MinQueryLength:   2,
		PrimaryResults:   5,
		SecondaryResults: 5,
		MaxResults:       8,
	}
}

// State is a snapshot of the controller as seen by the presentation layer.
type State struct {
	Query       string
	Suggestions []geocode.Suggestion
	// Cursor is the selected suggestion index, -1 when nothing is selected.
	Cursor    int
	Open      bool
	Searching bool
	Locating  bool
	NoResults bool
	Busy      bool
	Committed string
	Notice    string
	Recent    []string
	// Favourites is empty when the controller runs without a favourites list.
	Favourites []string
}

// Selected returns the suggestion under the cursor.
func (s State) Selected() (geocode.Suggestion, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Suggestions) {
		return geocode.Suggestion{}, false
	}
	return s.Suggestions[s.Cursor], true
}

// CommitFunc receives every committed label. It runs on the controller goroutine and
// must not block.
type CommitFunc func(label string)

type Option func(*Controller)

func WithConfig(config Config) Option {
	return func(c *Controller) {
		c.config = config
	}
}

// WithSecondary adds the comprehensive provider whose results are merged after the
// primary ones.
func WithSecondary(searcher geocode.Searcher) Option {
	return func(c *Controller) {
		c.secondary = searcher
	}
}

func WithLocator(locator geolocation.Locator) Option {
	return func(c *Controller) {
		c.locator = locator
	}
}

// WithFavourites enables saving, removing and picking favourite cities.
func WithFavourites(list *favourites.List) Option {
	return func(c *Controller) {
		c.favourites = list
	}
}

func WithCommitFunc(fn CommitFunc) Option {
	return func(c *Controller) {
		c.onCommit = fn
	}
}

type Controller struct {
	logger    *logger.Logger
	config    Config
	primary   geocode.Searcher
	secondary geocode.Searcher
	locator   geolocation.Locator
	history   *recent.List
	onCommit  CommitFunc

	favourites *favourites.List

	events chan event
	states chan State
	done   chan struct{}

	// owned by Run
	state State
	seq   uint64
	timer *time.Timer
}

// New returns a Controller searching primary and recording commits in history.
func New(log *logger.Logger, primary geocode.Searcher, history *recent.List, opts ...Option) *Controller {
	c := &Controller{
		logger:   log.Component("autocomplete"),
		config:   DefaultConfig(),
		primary:  primary,
		history:  history,
		onCommit: func(string) {},
		events:   make(chan event, eventBuffer),
		states:   make(chan State, 1),
		done:     make(chan struct{}),
		state:    State{Cursor: -1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuery replaces the query text, as on every keystroke.
func (c *Controller) SetQuery(text string) { c.post(setQueryEvent{text: text}) }

// Press handles a navigation key.
func (c *Controller) Press(key Key) { c.post(keyEvent{key: key}) }

// Submit commits the raw trimmed query.
func (c *Controller) Submit() { c.post(submitEvent{}) }

// Select commits the suggestion at index, as on a pointer click.
func (c *Controller) Select(index int) { c.post(selectEvent{index: index}) }

// SelectRecent commits the recent search at index verbatim.
func (c *Controller) SelectRecent(index int) { c.post(selectRecentEvent{index: index}) }

// AddFavourite saves label as a favourite. A blank label saves the committed city.
func (c *Controller) AddFavourite(label string) { c.post(addFavouriteEvent{label: label}) }

// RemoveFavourite drops label from the favourites. A blank label drops the committed city.
func (c *Controller) RemoveFavourite(label string) { c.post(removeFavouriteEvent{label: label}) }

// SelectFavourite commits the favourite at index verbatim.
func (c *Controller) SelectFavourite(index int) { c.post(selectFavouriteEvent{index: index}) }

// Clear resets query, suggestions and cursor.
func (c *Controller) Clear() { c.post(clearEvent{}) }

// Focus opens the dropdown.
func (c *Controller) Focus() { c.post(focusEvent{}) }

// UseLocation asks the locator for the current position and commits it as "lat, lon".
func (c *Controller) UseLocation() { c.post(useLocationEvent{}) }

// SetBusy marks whether the host is processing a commit. Manual submits are ignored
// while busy.
func (c *Controller) SetBusy(busy bool) { c.post(busyEvent{busy: busy}) }

// States returns the mailbox that always holds the latest published state.
func (c *Controller) States() <-chan State {
	return c.states
}

// Snapshot returns the current state.
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	select {
	case c.events <- snapshotEvent{reply: reply}:
	case <-c.done:
		return State{}, ErrStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
	select {
	case state := <-reply:
		return state, nil
	case <-c.done:
		return State{}, ErrStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Run processes events until ctx is canceled. It must be called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.stopTimer()

	c.state.Recent = c.history.Items()
	if c.favourites != nil {
		c.state.Favourites = c.favourites.Items()
	}
	c.publish()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// publish replaces the mailbox content with the current state.
func (c *Controller) publish() {
	select {
	case <-c.states:
	default:
	}
	select {
	case c.states <- c.snapshot():
	default:
	}
}

func (c *Controller) snapshot() State {
	state := c.state
	state.Suggestions = slices.Clone(c.state.Suggestions)
	state.Recent = slices.Clone(c.state.Recent)
	state.Favourites = slices.Clone(c.state.Favourites)
	return state
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
