// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"testing/synctest"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/vorlif/spreak"

	"github.com/wneessen/climatix/internal/config"
	"github.com/wneessen/climatix/internal/favourites"
	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geocode"
	"github.com/wneessen/climatix/internal/i18n"
	"github.com/wneessen/climatix/internal/logger"
	"github.com/wneessen/climatix/internal/recent"
	"github.com/wneessen/climatix/internal/tui"
	"github.com/wneessen/climatix/internal/weather"
)

func TestNew(t *testing.T) {
	t.Run("new service succeeds", func(t *testing.T) {
		serv, err := testService(t, nil)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if serv.controller == nil {
			t.Fatal("expected controller to be non-nil")
		}
		if serv.primary.Name() != "open-meteo" {
			t.Errorf("expected open-meteo as primary geocoder, got %s", serv.primary.Name())
		}
	})
	t.Run("initializing service with different secondary geocoders", func(t *testing.T) {
		tests := []struct {
			name     string
			conf     func(*config.Config)
			wantName string
			wantFail bool
		}{
			{"osm-nominatim", func(c *config.Config) { c.Geocoder.Secondary = "nominatim" }, "osm-nominatim", false},
			{"disabled", func(c *config.Config) { c.Geocoder.Secondary = "none" }, "", false},
			{"opencage without api-key", func(c *config.Config) { c.Geocoder.Secondary = "opencage" }, "", true},
			{
				"opencage with api-key",
				func(c *config.Config) { c.Geocoder.Secondary, c.Geocoder.APIKey = "opencage", "abc" },
				"opencage", false,
			},
			{
				"geocode.earth without api-key",
				func(c *config.Config) { c.Geocoder.Secondary = "geocode-earth" }, "", true,
			},
			{
				"geocode.earth with api-key",
				func(c *config.Config) { c.Geocoder.Secondary, c.Geocoder.APIKey = "geocode-earth", "abc" },
				"geocode-earth", false,
			},
			{"unsupported provider", func(c *config.Config) { c.Geocoder.Secondary = "invalid" }, "", true},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				serv, err := testService(t, tc.conf)
				if tc.wantFail {
					if err == nil {
						t.Fatal("expected service creation to fail")
					}
					return
				}
				if err != nil {
					t.Fatalf("failed to create service: %s", err)
				}
				if tc.wantName == "" {
					if serv.secondary != nil {
						t.Errorf("expected no secondary geocoder, got %s", serv.secondary.Name())
					}
					return
				}
				if serv.secondary == nil || serv.secondary.Name() != tc.wantName {
					t.Errorf("expected secondary geocoder %s, got %v", tc.wantName, serv.secondary)
				}
			})
		}
	})
	t.Run("unsupported weather provider fails", func(t *testing.T) {
		_, err := testService(t, func(c *config.Config) { c.Weather.Provider = "invalid" })
		if err == nil {
			t.Fatal("expected service creation to fail")
		}
		if !strings.Contains(err.Error(), "unsupported weather provider") {
			t.Errorf("unexpected error: %s", err)
		}
	})
	t.Run("invalid template configuration fails", func(t *testing.T) {
		_, err := testService(t, func(c *config.Config) { c.Templates.Report = "{{invalid" })
		if err == nil {
			t.Fatal("expected service creation to fail")
		}
	})
	t.Run("nil logger fails", func(t *testing.T) {
		conf, err := config.New()
		if err != nil {
			t.Fatalf("failed to create config: %s", err)
		}
		if _, err = New(conf, nil, testLocalizer(t)); err == nil {
			t.Fatal("expected service creation to fail")
		}
	})
	t.Run("malformed store falls back to memory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
			t.Fatalf("failed to write store file: %s", err)
		}
		serv, err := testService(t, func(c *config.Config) { c.Storage.File = path })
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if serv.file != nil {
			t.Error("expected no file store")
		}
		if serv.kv == nil {
			t.Error("expected a memory store")
		}
	})
	t.Run("stored favourites are loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		data := `{"` + favourites.StoreKey + `":"[\"Hyderabad, India\",\"Mumbai, India\"]"}`
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatalf("failed to write store file: %s", err)
		}
		serv, err := testService(t, func(c *config.Config) { c.Storage.File = path })
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if got := serv.favourites.Items(); len(got) != 2 || got[1] != "Mumbai, India" {
			t.Errorf("expected stored favourites, got %v", got)
		}
	})
	t.Run("stored recent searches are loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		data := `{"` + recent.StoreKey + `":"[\"Oslo, Norway\",\"Rome, Lazio, Italy\"]"}`
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatalf("failed to write store file: %s", err)
		}
		serv, err := testService(t, func(c *config.Config) { c.Storage.File = path })
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if got := serv.history.Items(); len(got) != 2 || got[0] != "Oslo, Norway" {
			t.Errorf("expected stored recent searches, got %v", got)
		}
	})
}

func TestService_selectLocators(t *testing.T) {
	t.Run("all locators disabled", func(t *testing.T) {
		serv, err := testService(t, nil)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if locators := serv.selectLocators(); len(locators) != 0 {
			t.Errorf("expected no locators, got %d", len(locators))
		}
		if serv.locator != nil {
			t.Error("expected no locator chain")
		}
	})
	t.Run("enabled locators are selected in order", func(t *testing.T) {
		serv, err := testService(t, func(c *config.Config) {
			c.GeoLocation.DisableGeolocationFile = false
			c.GeoLocation.DisableGeoIP = false
			c.GeoLocation.DisableGeoAPI = false
		})
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		locators := serv.selectLocators()
		var names []string
		for _, locator := range locators {
			names = append(names, locator.Name())
		}
		want := "geolocation_file,geoip,geoapi"
		if got := strings.Join(names, ","); got != want {
			t.Errorf("expected locators %s, got %s", want, got)
		}
		if serv.locator == nil {
			t.Error("expected a locator chain")
		}
	})
}

func TestService_resolve(t *testing.T) {
	cologne := geocode.Suggestion{
		ID: "open-meteo:2886242", Name: "Cologne", Admin: "North Rhine-Westphalia", Country: "Germany",
		Latitude: 50.93333, Longitude: 6.95,
	}
	cologneMN := geocode.Suggestion{
		ID: "open-meteo:5020420", Name: "Cologne", Admin: "Minnesota", Country: "United States",
		Latitude: 44.77163, Longitude: -93.78164,
	}

	t.Run("coordinate labels are parsed", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		coord, err := serv.resolve(t.Context(), "52.52, 13.405")
		if err != nil {
			t.Fatalf("failed to resolve: %s", err)
		}
		if coord.Lat != 52.52 || coord.Lon != 13.405 {
			t.Errorf("unexpected coordinate: %+v", coord)
		}
	})
	t.Run("exact primary label match wins", func(t *testing.T) {
		primary := &fakeSearcher{results: []geocode.Suggestion{cologne, cologneMN}}
		serv := testServiceWithFakes(t, primary, &fakeSearcher{err: geocode.ErrNetwork}, &fakeWeather{})
		coord, err := serv.resolve(t.Context(), "cologne, minnesota, united states")
		if err != nil {
			t.Fatalf("failed to resolve: %s", err)
		}
		if coord.Lat != cologneMN.Latitude {
			t.Errorf("expected Cologne, Minnesota, got %+v", coord)
		}
		if got := primary.Queries(); len(got) != 1 || got[0] != "cologne" {
			t.Errorf("expected primary to be searched by name, got %v", got)
		}
	})
	t.Run("secondary provider resolves free text", func(t *testing.T) {
		primary := &fakeSearcher{results: []geocode.Suggestion{cologne}}
		secondary := &fakeSearcher{results: []geocode.Suggestion{{Name: "Köln", Latitude: 50.9, Longitude: 6.9}}}
		serv := testServiceWithFakes(t, primary, secondary, &fakeWeather{})
		coord, err := serv.resolve(t.Context(), "Köln Altstadt")
		if err != nil {
			t.Fatalf("failed to resolve: %s", err)
		}
		if coord.Lat != 50.9 {
			t.Errorf("expected secondary result, got %+v", coord)
		}
	})
	t.Run("first primary candidate is the last resort", func(t *testing.T) {
		primary := &fakeSearcher{results: []geocode.Suggestion{cologne}}
		serv := testServiceWithFakes(t, primary, nil, &fakeWeather{})
		coord, err := serv.resolve(t.Context(), "Cologne, Germany")
		if err != nil {
			t.Fatalf("failed to resolve: %s", err)
		}
		if coord.Lat != cologne.Latitude {
			t.Errorf("expected first candidate, got %+v", coord)
		}
	})
	t.Run("unknown cities fail", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{err: geocode.ErrNetwork}, &fakeSearcher{}, &fakeWeather{})
		if _, err := serv.resolve(t.Context(), "Atlantis"); !errors.Is(err, ErrUnknownCity) {
			t.Errorf("expected error to be %s, got %v", ErrUnknownCity, err)
		}
	})
}

func TestService_lookup(t *testing.T) {
	t.Run("successful lookup publishes a report and sets the target", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		serv.lookup(t.Context(), "50.9375, 6.9603")
		report := <-serv.reports
		if report.Err != nil {
			t.Fatalf("unexpected report error: %s", report.Err)
		}
		if !strings.Contains(report.Text, "50.9375, 6.9603") || !strings.Contains(report.Text, "20.0°C") {
			t.Errorf("unexpected report text: %q", report.Text)
		}
		if serv.target == nil || serv.target.label != "50.9375, 6.9603" {
			t.Errorf("expected target to be set, got %+v", serv.target)
		}
	})
	t.Run("weather failures are reported", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{shouldFail: true})
		serv.lookup(t.Context(), "50.9375, 6.9603")
		if report := <-serv.reports; report.Err == nil {
			t.Error("expected report error")
		}
	})
	t.Run("unresolvable labels are reported", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		serv.lookup(t.Context(), "Atlantis")
		report := <-serv.reports
		if !errors.Is(report.Err, ErrUnknownCity) {
			t.Errorf("expected error to be %s, got %v", ErrUnknownCity, report.Err)
		}
		if serv.target != nil {
			t.Errorf("expected no target, got %+v", serv.target)
		}
	})
	t.Run("refresh without target does nothing", func(t *testing.T) {
		weatherProv := &fakeWeather{}
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, weatherProv)
		serv.refreshWeather(t.Context())
		if weatherProv.Calls() != 0 {
			t.Errorf("expected no weather fetch, got %d", weatherProv.Calls())
		}
		select {
		case report := <-serv.reports:
			t.Errorf("expected no report, got %+v", report)
		default:
		}
	})
	t.Run("refresh fetches the current target again", func(t *testing.T) {
		weatherProv := &fakeWeather{}
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, weatherProv)
		serv.lookup(t.Context(), "50.9375, 6.9603")
		<-serv.reports
		serv.refreshWeather(t.Context())
		if report := <-serv.reports; report.Label != "50.9375, 6.9603" {
			t.Errorf("unexpected refreshed report: %+v", report)
		}
		if weatherProv.Calls() != 2 {
			t.Errorf("expected 2 weather fetches, got %d", weatherProv.Calls())
		}
	})
	t.Run("only the latest pending lookup is kept", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		serv.enqueueLookup("Oslo")
		serv.enqueueLookup("Rome")
		if got := <-serv.lookups; got != "Rome" {
			t.Errorf("expected Rome, got %q", got)
		}
	})
	t.Run("only the latest report is kept", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		serv.publishReport(tui.Report{Label: "Oslo"})
		serv.publishReport(tui.Report{Label: "Rome"})
		if got := <-serv.reports; got.Label != "Rome" {
			t.Errorf("expected Rome, got %q", got.Label)
		}
	})
}

func TestService_Start(t *testing.T) {
	t.Run("committed search produces a weather report", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		if err := serv.Start(ctx); err != nil {
			t.Fatalf("failed to start service: %s", err)
		}
		serv.controller.SetQuery("50.9375, 6.9603")
		serv.controller.Submit()

		select {
		case report := <-serv.reports:
			if report.Err != nil {
				t.Fatalf("unexpected report error: %s", report.Err)
			}
		case <-time.After(time.Second * 5):
			t.Fatal("timed out waiting for report")
		}
		if got := serv.history.Items(); len(got) != 1 || got[0] != "50.9375, 6.9603" {
			t.Errorf("expected submit to be remembered, got %v", got)
		}
		cancel()
		if err := serv.Shutdown(); err != nil {
			t.Errorf("failed to shut down: %s", err)
		}
		if _, err := os.Stat(serv.config.Storage.File); err != nil {
			t.Errorf("expected store file to be written on shutdown: %s", err)
		}
	})
	t.Run("default city is looked up on start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		serv.config.Location.DefaultCity = "48.8566, 2.3522"
		if err := serv.Start(ctx); err != nil {
			t.Fatalf("failed to start service: %s", err)
		}
		select {
		case report := <-serv.reports:
			if report.Label != "48.8566, 2.3522" {
				t.Errorf("unexpected report label: %q", report.Label)
			}
		case <-time.After(time.Second * 5):
			t.Fatal("timed out waiting for report")
		}
		cancel()
		_ = serv.Shutdown()
	})
	t.Run("invalid job intervals fail", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		serv.config.Intervals.StoreFlush = 0
		if err := serv.Start(t.Context()); err == nil {
			t.Error("expected start to fail")
		}
	})
}

func TestService_flushStore(t *testing.T) {
	t.Run("dirty store is written", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		if err := serv.history.Add("Oslo, Norway"); err != nil {
			t.Fatalf("failed to add recent search: %s", err)
		}
		serv.flushStore(t.Context())
		data, err := os.ReadFile(serv.config.Storage.File)
		if err != nil {
			t.Fatalf("failed to read store file: %s", err)
		}
		if !bytes.Contains(data, []byte("Oslo, Norway")) {
			t.Errorf("expected store file to contain the recent search, got %s", data)
		}
		if serv.file.Dirty() {
			t.Error("expected store to be clean after flush")
		}
	})
	t.Run("clean store is not written", func(t *testing.T) {
		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		serv.flushStore(t.Context())
		if _, err := os.Stat(serv.config.Storage.File); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected no store file, got %v", err)
		}
	})
}

func TestService_HandleSignals(t *testing.T) {
	t.Run("USR1 refreshes the report", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		serv.target = &target{label: "Oslo", coord: geo.Coordinate{Lat: 59.91, Lon: 10.75}}
		sigChan := make(chan os.Signal, 1)
		go serv.HandleSignals(ctx, sigChan)

		sigChan <- syscall.SIGUSR1
		select {
		case report := <-serv.reports:
			if report.Label != "Oslo" {
				t.Errorf("unexpected report label: %q", report.Label)
			}
		case <-time.After(time.Second * 5):
			t.Fatal("timed out waiting for report")
		}
	})
	t.Run("USR2 logs the current target", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		serv := testServiceWithFakes(t, &fakeSearcher{}, nil, &fakeWeather{})
		buf := &syncBuffer{buf: bytes.NewBuffer(nil)}
		serv.logger = logger.NewLogger(slog.LevelInfo, buf)
		sigChan := make(chan os.Signal)
		go serv.HandleSignals(ctx, sigChan)

		sigChan <- syscall.SIGUSR2
		serv.targetLock.Lock()
		serv.target = &target{label: "Oslo", coord: geo.Coordinate{Lat: 59.91, Lon: 10.75}}
		serv.targetLock.Unlock()
		sigChan <- syscall.SIGUSR2
		cancel()

		deadline := time.Now().Add(time.Second * 5)
		for time.Now().Before(deadline) && !strings.Contains(buf.String(), `label=Oslo`) {
			time.Sleep(time.Millisecond * 10)
		}
		for _, want := range []string{`msg="no city selected yet"`, `msg="currently selected city" label=Oslo`} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected log to contain %q, got %q", want, buf.String())
			}
		}
	})
}

func TestResumeWatcher(t *testing.T) {
	t.Run("resume signals trigger a debounced refresh", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			conn := &fakeBus{}
			var mu sync.Mutex
			resumes := 0
			watcher := newResumeWatcher(logger.Discard(), func(context.Context) {
				mu.Lock()
				resumes++
				mu.Unlock()
			})
			watcher.connect = func() (busConn, error) { return conn, nil }
			watcher.wakeupDelay = time.Second

			done := make(chan struct{})
			go func() {
				_ = watcher.session(ctx)
				close(done)
			}()
			synctest.Wait()

			conn.emit(&dbus.Signal{Body: []any{true}})
			conn.emit(&dbus.Signal{Body: []any{false}})
			conn.emit(&dbus.Signal{Body: []any{false}})
			time.Sleep(time.Second * 3)
			synctest.Wait()
			mu.Lock()
			if resumes != 1 {
				t.Errorf("expected a single refresh, got %d", resumes)
			}
			mu.Unlock()

			time.Sleep(resumeDebounce)
			conn.emit(&dbus.Signal{Body: []any{false}})
			time.Sleep(time.Second * 2)
			synctest.Wait()
			mu.Lock()
			if resumes != 2 {
				t.Errorf("expected a second refresh after the debounce window, got %d", resumes)
			}
			mu.Unlock()

			cancel()
			<-done
			if !conn.closed {
				t.Error("expected bus connection to be closed")
			}
		})
	})
	t.Run("failing subscription ends the session", func(t *testing.T) {
		conn := &fakeBus{matchErr: errors.New("intentionally failing")}
		watcher := newResumeWatcher(logger.Discard(), func(context.Context) {})
		watcher.connect = func() (busConn, error) { return conn, nil }
		if err := watcher.session(t.Context()); err == nil {
			t.Error("expected session to fail")
		}
		if !conn.closed {
			t.Error("expected bus connection to be closed")
		}
	})
	t.Run("only PrepareForSleep(false) counts as resume", func(t *testing.T) {
		tests := []struct {
			sig  *dbus.Signal
			want bool
		}{
			{nil, false},
			{&dbus.Signal{Body: []any{}}, false},
			{&dbus.Signal{Body: []any{"false"}}, false},
			{&dbus.Signal{Body: []any{true}}, false},
			{&dbus.Signal{Body: []any{false}}, true},
		}
		for _, tc := range tests {
			if got := resumed(tc.sig); got != tc.want {
				t.Errorf("expected %t for %+v, got %t", tc.want, tc.sig, got)
			}
		}
	})
}

type (
	fakeSearcher struct {
		results []geocode.Suggestion
		err     error

		mu      sync.Mutex
		queries []string
	}
	fakeWeather struct {
		shouldFail bool

		mu    sync.Mutex
		calls int
	}
	fakeBus struct {
		matchErr error

		mu      sync.Mutex
		signals chan<- *dbus.Signal
		closed  bool
	}
	syncBuffer struct {
		mu  sync.Mutex
		buf *bytes.Buffer
	}
)

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) ([]geocode.Suggestion, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeSearcher) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (w *fakeWeather) Name() string { return "mock weather provider" }

func (w *fakeWeather) GetWeather(_ context.Context, coords geo.Coordinate) (*weather.Data, error) {
	w.mu.Lock()
	w.calls++
	w.mu.Unlock()
	if w.shouldFail {
		return nil, errors.New("intentionally failing")
	}
	data := weather.NewData()
	data.GeneratedAt = time.Now()
	data.Coordinates = coords
	data.Current = weather.Instant{
		InstantTime: time.Now(),
		Temperature: 20.0,
		WeatherCode: 0,
		IsDay:       true,
		Units:       weather.Units{Temperature: "°C", Humidity: "%", WindSpeed: "km/h"},
	}
	return data, nil
}

func (w *fakeWeather) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

func (b *fakeBus) AddMatchSignal(...dbus.MatchOption) error { return b.matchErr }

func (b *fakeBus) Signal(ch chan<- *dbus.Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals = ch
}

func (b *fakeBus) RemoveSignal(chan<- *dbus.Signal) {}

func (b *fakeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBus) emit(sig *dbus.Signal) {
	b.mu.Lock()
	ch := b.signals
	b.mu.Unlock()
	ch <- sig
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// testService creates a service with all system geolocation sources disabled and the
// store in a temporary directory.
func testService(t *testing.T, modify func(*config.Config)) (*Service, error) {
	t.Helper()
	conf, err := config.New()
	if err != nil {
		t.Fatalf("failed to create config: %s", err)
	}
	conf.Locale = "en"
	conf.Storage.File = filepath.Join(t.TempDir(), "store.json")
	conf.GeoLocation.DisableGeolocationFile = true
	conf.GeoLocation.DisableGeoClue = true
	conf.GeoLocation.DisableGPSD = true
	conf.GeoLocation.DisableGeoIP = true
	conf.GeoLocation.DisableGeoAPI = true
	conf.GeoLocation.DisableICHNAEA = true
	if modify != nil {
		modify(conf)
	}
	return New(conf, logger.Discard(), testLocalizer(t))
}

// testServiceWithFakes replaces the network backed providers of a fresh service. The
// controller is rebuilt so that it searches the fake providers.
func testServiceWithFakes(t *testing.T, primary, secondary *fakeSearcher, weatherProv *fakeWeather) *Service {
	t.Helper()
	serv, err := testService(t, nil)
	if err != nil {
		t.Fatalf("failed to create service: %s", err)
	}
	serv.primary = primary
	serv.secondary = nil
	if secondary != nil {
		serv.secondary = secondary
	}
	serv.weather = weatherProv
	serv.controller = serv.newController()
	return serv
}

func testLocalizer(t *testing.T) *spreak.Localizer {
	t.Helper()
	loc, err := i18n.New("en")
	if err != nil {
		t.Fatalf("failed to create i18n provider: %s", err)
	}
	return loc
}
