// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires configuration, providers, the autocomplete controller and the
// terminal UI into the running application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/wneessen/climatix/internal/autocomplete"
	"github.com/wneessen/climatix/internal/config"
	"github.com/wneessen/climatix/internal/favourites"
	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geocode"
	"github.com/wneessen/climatix/internal/geolocation"
	"github.com/wneessen/climatix/internal/i18n"
	"github.com/wneessen/climatix/internal/logger"
	"github.com/wneessen/climatix/internal/presenter"
	"github.com/wneessen/climatix/internal/recent"
	"github.com/wneessen/climatix/internal/store"
	"github.com/wneessen/climatix/internal/tui"
	"github.com/wneessen/climatix/internal/weather"
)

const DesktopID = "climatix"

// target is the place the current report is about.
type target struct {
	label string
	coord geo.Coordinate
}

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	localizer *spreak.Localizer
	lang      language.Tag
	scheduler gocron.Scheduler
	presenter *presenter.Presenter
	SignalSrc signalSource

	kv         store.KV
	file       *store.File
	history    *recent.List
	favourites *favourites.List

	primary    geocode.Searcher
	secondary  geocode.Searcher
	locator    geolocation.Locator
	weather    weather.Provider
	controller *autocomplete.Controller

	lookups chan string
	reports chan tui.Report

	targetLock sync.RWMutex
	target     *target
}

func New(conf *config.Config, log *logger.Logger, loc *spreak.Localizer) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	pres, err := presenter.New(conf, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		localizer: loc,
		lang:      i18n.Tag(conf.Locale),
		scheduler: scheduler,
		presenter: pres,
		SignalSrc: stdLibSignalSource{},
		lookups:   make(chan string, 1),
		reports:   make(chan tui.Report, 1),
	}
	service.openStore()

	if service.primary, service.secondary, err = service.selectGeocodeProviders(); err != nil {
		return nil, err
	}
	if service.weather, err = service.selectWeatherProvider(); err != nil {
		return nil, err
	}
	if locators := service.selectLocators(); len(locators) > 0 {
		service.locator = geolocation.NewChain(log.Component("geolocation"), geolocation.DefaultTimeout, locators...)
	}

	service.controller = service.newController()

	return service, nil
}

// newController builds the autocomplete controller over the selected providers. Commits
// are handed to the lookup worker.
func (s *Service) newController() *autocomplete.Controller {
	opts := []autocomplete.Option{
		autocomplete.WithConfig(autocomplete.Config{
			Debounce:         s.config.Search.Debounce,
			MinQueryLength:   s.config.Search.MinQueryLength,
			PrimaryResults:   s.config.Search.PrimaryResults,
			SecondaryResults: s.config.Search.SecondaryResults,
			MaxResults:       s.config.Search.MaxResults,
		}),
		autocomplete.WithCommitFunc(s.enqueueLookup),
		autocomplete.WithFavourites(s.favourites),
	}
	if s.secondary != nil {
		opts = append(opts, autocomplete.WithSecondary(s.secondary))
	}
	if s.locator != nil {
		opts = append(opts, autocomplete.WithLocator(s.locator))
	}
	return autocomplete.New(s.logger, s.primary, s.history, opts...)
}

// openStore opens the persistent key/value store. An unreadable store is replaced by an
// in-memory one so that the search box keeps working.
func (s *Service) openStore() {
	file, err := store.OpenFile(s.config.Storage.File)
	if err != nil {
		s.logger.Warn("failed to open store, recent searches will not be persisted",
			slog.String("file", s.config.Storage.File), logger.Err(err))
		s.kv = store.NewMemory()
	} else {
		s.file = file
		s.kv = file
	}

	s.history = recent.New(s.kv, s.config.Search.RecentLimit)
	if err = s.history.Load(); err != nil {
		s.logger.Warn("failed to load recent searches", logger.Err(err))
	}
	s.favourites = favourites.New(s.kv)
	if err = s.favourites.Load(); err != nil {
		s.logger.Warn("failed to load favourites", logger.Err(err))
	}
}

// Start launches the background parts of the service: scheduled jobs, the controller
// loop, the lookup worker and the system event watchers.
func (s *Service) Start(ctx context.Context) error {
	if err := s.createScheduledJob(ctx, s.config.Intervals.StoreFlush, s.flushStore,
		"store_flush_job"); err != nil {
		return err
	}
	if err := s.createScheduledJob(ctx, s.config.Intervals.WeatherUpdate, s.refreshWeather,
		"weather_update_job"); err != nil {
		return err
	}
	s.scheduler.Start()

	go func() {
		if err := s.controller.Run(ctx); err != nil {
			s.logger.Error("autocomplete controller stopped", logger.Err(err))
		}
	}()
	go s.processLookups(ctx)
	go s.monitorSleepResume(ctx)

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer s.SignalSrc.Stop(sigChan)
		s.HandleSignals(ctx, sigChan)
	}()

	switch {
	case s.config.Location.UseLocation:
		s.controller.UseLocation()
	case s.config.Location.DefaultCity != "":
		s.enqueueLookup(s.config.Location.DefaultCity)
	}
	return nil
}

// Shutdown stops the scheduler and persists pending store changes.
func (s *Service) Shutdown() error {
	var errs []error
	if err := s.scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down scheduler: %w", err))
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run starts the service and blocks in the terminal UI until the user quits or ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.Start(ctx); err != nil {
		return err
	}
	model := tui.New(s.controller, s.reports, s.localizer, tui.WithMinQueryLength(s.config.Search.MinQueryLength))
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	cancel()

	if shutdownErr := s.Shutdown(); shutdownErr != nil {
		s.logger.Error("failed to shut down cleanly", logger.Err(shutdownErr))
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// flushStore writes pending recent search and favourite changes to disk.
func (s *Service) flushStore(context.Context) {
	if s.file == nil || !s.file.Dirty() {
		return
	}
	if err := s.file.Flush(); err != nil {
		s.logger.Error("failed to flush store", slog.String("file", s.config.Storage.File), logger.Err(err))
		return
	}
	s.logger.Debug("store flushed", slog.String("file", s.config.Storage.File))
}
