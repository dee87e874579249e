package results

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neexbeast/citycast/internal/history"
	"github.com/neexbeast/citycast/internal/weather"
)

// ErrSuperseded is returned when a newer refresh for the same client started
// before this one finished. Its result must not be shown.
var ErrSuperseded = errors.New("refresh superseded by a newer search")

// WeatherClient is the provider surface the screen drives.
type WeatherClient interface {
	FetchCurrent(ctx context.Context, city string) (*weather.Conditions, error)
	FetchForecast(ctx context.Context, city string) ([]weather.ForecastSlot, error)
}

// HistoryStore is the history surface the screen reads and records into.
type HistoryStore interface {
	Load(ctx context.Context, client string) history.List
	Record(ctx context.Context, client string, e history.Entry) (history.List, error)
	Clear(ctx context.Context, client string) error
}

// State is the phase of one results refresh.
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateReady   State = "ready"
)

// View is everything the results page renders.
type View struct {
	State               State                  `json:"state"`
	City                string                 `json:"city"`
	Message             string                 `json:"message,omitempty"`
	Theme               Theme                  `json:"theme"`
	Current             *weather.Conditions    `json:"current,omitempty"`
	Forecast            []weather.ForecastSlot `json:"forecast"`
	ForecastUnavailable bool                   `json:"forecast_unavailable"`
	History             history.List           `json:"history"`
}

// Loading is the view shown while a refresh for city is in flight.
func Loading(city string) View {
	return View{
		State:    StateLoading,
		City:     city,
		Theme:    ThemeDefault,
		Forecast: []weather.ForecastSlot{},
		History:  history.List{},
	}
}

// Screen runs the results refresh cycle: current conditions, history
// record, forecast.
type Screen struct {
	weather WeatherClient
	history HistoryStore
	log     *slog.Logger
	now     func() time.Time
	tracker *tracker
	shown   *shownViews
}

// Option configures a Screen.
type Option func(*Screen)

// WithClock overrides the clock used to stamp history entries.
func WithClock(now func() time.Time) Option {
	return func(s *Screen) { s.now = now }
}

// NewScreen constructs a Screen.
func NewScreen(wc WeatherClient, hs HistoryStore, log *slog.Logger, opts ...Option) *Screen {
	s := &Screen{
		weather: wc,
		history: hs,
		log:     log,
		now:     time.Now,
		tracker: newTracker(),
		shown:   newShownViews(maxShownViews),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh takes client's view for city from Loading to Ready or Error.
// A refresh overtaken by a newer one for the same client is cancelled and
// returns ErrSuperseded instead of a view.
func (s *Screen) Refresh(ctx context.Context, client, city string) (View, error) {
	ctx, seq, done := s.tracker.begin(ctx, client)
	defer done()

	view := Loading(city)
	log := s.log.With("client", client, "city", city, "seq", seq)

	cond, err := s.weather.FetchCurrent(ctx, city)
	if err != nil {
		if !s.tracker.current(client, seq) {
			return View{}, fmt.Errorf("current conditions for %s: %w", city, ErrSuperseded)
		}
		log.Info("current conditions failed", "err", err)
		return View{State: StateError, City: city, Message: errorMessage(err), Theme: ThemeDefault}, nil
	}

	list, err := s.history.Record(ctx, client, history.NewEntry(city, cond, s.now()))
	if err != nil {
		log.Warn("history record failed", "err", err)
		list = s.history.Load(ctx, client)
	}

	slots, err := s.weather.FetchForecast(ctx, city)
	if err != nil {
		log.Warn("forecast degraded", "err", err)
		view.ForecastUnavailable = true
		slots = nil
	}
	if slots == nil {
		slots = []weather.ForecastSlot{}
	}

	if !s.tracker.current(client, seq) {
		return View{}, fmt.Errorf("refresh for %s: %w", city, ErrSuperseded)
	}

	view.State = StateReady
	view.Theme = ThemeFor(cond.Main)
	view.Current = cond
	view.Forecast = slots
	view.History = list
	s.shown.put(client, view)
	return view, nil
}

// ClearHistory empties client's history. When a Ready view was shown to the
// client, it is returned with an empty history panel and ok set.
func (s *Screen) ClearHistory(ctx context.Context, client string) (View, bool, error) {
	if err := s.history.Clear(ctx, client); err != nil {
		return View{}, false, fmt.Errorf("clearing history: %w", err)
	}
	view, ok := s.shown.clearHistory(client)
	return view, ok, nil
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, weather.ErrCityNotFound):
		return "City not found"
	case errors.Is(err, weather.ErrUnavailable):
		return "Weather service is temporarily unavailable"
	default:
		return "Could not reach the weather service"
	}
}
