// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/climatix/internal/logger"
)

const (
	login1Interface = "org.freedesktop.login1.Manager"
	login1Member    = "PrepareForSleep"

	resumeDebounce   = time.Second * 2
	signalBufferSize = 8

	busReconnectDelay  = 5 * time.Second
	networkWakeupDelay = 10 * time.Second
)

// busConn is the part of a dbus connection the resume watcher needs.
type busConn interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Close() error
}

// resumeWatcher calls onResume after the system woke up from suspend.
type resumeWatcher struct {
	logger      *logger.Logger
	connect     func() (busConn, error)
	onResume    func(context.Context)
	wakeupDelay time.Duration
	lastResume  time.Time
}

func newResumeWatcher(log *logger.Logger, onResume func(context.Context)) *resumeWatcher {
	return &resumeWatcher{
		logger: log.Component("resume"),
		connect: func() (busConn, error) {
			return dbus.ConnectSystemBus()
		},
		onResume:    onResume,
		wakeupDelay: networkWakeupDelay,
	}
}

func (s *Service) monitorSleepResume(ctx context.Context) {
	newResumeWatcher(s.logger, s.refreshWeather).watch(ctx)
}

// watch subscribes to login1's PrepareForSleep signal and keeps reconnecting to the system
// bus until ctx is canceled.
func (w *resumeWatcher) watch(ctx context.Context) {
	for {
		if err := w.session(ctx); err != nil {
			w.logger.Debug("system bus session ended", logger.Err(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(busReconnectDelay):
		}
	}
}

// session runs one bus connection until it breaks or ctx is canceled.
func (w *resumeWatcher) session(ctx context.Context) error {
	conn, err := w.connect()
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			w.logger.Error("failed to close system bus connection", logger.Err(err))
		}
	}()

	if err = conn.AddMatchSignal(dbus.WithMatchInterface(login1Interface), dbus.WithMatchMember(login1Member)); err != nil {
		w.logger.Error("failed to subscribe to dbus signal", slog.String("interface", login1Interface),
			slog.String("member", login1Member), logger.Err(err))
		return err
	}
	signals := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)
	w.logger.Debug("subscribed to dbus signal", slog.String("interface", login1Interface),
		slog.String("member", login1Member))

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			if resumed(sig) {
				w.handleResume(ctx)
			}
		}
	}
}

// resumed reports whether sig is a PrepareForSleep(false), which login1 emits on wakeup.
func resumed(sig *dbus.Signal) bool {
	if sig == nil || len(sig.Body) != 1 {
		return false
	}
	sleeping, ok := sig.Body[0].(bool)
	return ok && !sleeping
}

func (w *resumeWatcher) handleResume(ctx context.Context) {
	now := time.Now()
	if now.Sub(w.lastResume) < resumeDebounce {
		return
	}
	w.lastResume = now

	// the network usually needs a moment after wakeup
	select {
	case <-ctx.Done():
		return
	case <-time.After(w.wakeupDelay):
	}
	w.logger.Debug("resumed from sleep, refreshing weather report")
	w.onResume(ctx)
}
