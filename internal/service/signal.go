// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals refreshes the report on SIGUSR1 and logs the current target on SIGUSR2.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.logger.Debug("refresh requested via signal")
				s.refreshWeather(ctx)
			case syscall.SIGUSR2:
				s.targetLock.RLock()
				current := s.target
				s.targetLock.RUnlock()
				if current == nil {
					s.logger.Info("no city selected yet")
					continue
				}
				s.logger.Info("currently selected city", slog.String("label", current.label),
					slog.Float64("latitude", current.coord.Lat), slog.Float64("longitude", current.coord.Lon))
			}
		}
	}
}
