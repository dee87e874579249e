package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	httpTimeout = 10 * time.Second

	// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	units = "metric"
)

var (
	// ErrCityNotFound is returned when the provider answers the current
	// conditions request with a non-success status, whatever the code.
	ErrCityNotFound = errors.New("city not found")

	// ErrUnavailable is returned while the provider circuit breaker is open.
	ErrUnavailable = errors.New("weather service unavailable")

	errServerStatus = errors.New("provider server error")
)

// Client fetches current conditions and forecasts from OpenWeatherMap.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRateLimit caps outbound requests at rps with the given burst.
// A non-positive rps leaves the client unlimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient constructs a Client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		limiter: rate.NewLimiter(rate.Inf, 0),
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "openweathermap",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL, apiKey string) *Client {
	return NewClient(apiKey, WithBaseURL(baseURL))
}

type currentResponse struct {
	Name     string `json:"name"`
	Timezone int    `json:"timezone"`
	Sys      struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  int      `json:"humidity"`
		Pressure  int      `json:"pressure"`
	} `json:"main"`
	Weather []conditionItem `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type conditionItem struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type forecastResponse struct {
	List []struct {
		Dt    int64  `json:"dt"`
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []conditionItem `json:"weather"`
	} `json:"list"`
}

// FetchCurrent retrieves current conditions for the given city.
func (c *Client) FetchCurrent(ctx context.Context, city string) (*Conditions, error) {
	resp, err := c.get(ctx, c.endpoint("weather", city))
	if err != nil {
		if errors.Is(err, errServerStatus) {
			return nil, fmt.Errorf("current conditions for %s: %w: %v", city, ErrCityNotFound, err)
		}
		return nil, fmt.Errorf("current conditions for %s: %w", city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("current conditions for %s returned status %d: %w", city, resp.StatusCode, ErrCityNotFound)
	}

	var raw currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding current conditions for %s: %w", city, err)
	}

	zone := time.FixedZone("", raw.Timezone)
	cond := &Conditions{
		Name:        raw.Name,
		Country:     raw.Sys.Country,
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		Humidity:    raw.Main.Humidity,
		Pressure:    raw.Main.Pressure,
		WindSpeed:   raw.Wind.Speed,
		Sunrise:     unixIn(raw.Sys.Sunrise, zone),
		Sunset:      unixIn(raw.Sys.Sunset, zone),
	}
	if len(raw.Weather) > 0 {
		cond.Main = raw.Weather[0].Main
		cond.Description = raw.Weather[0].Description
		cond.Icon = raw.Weather[0].Icon
	}

	return cond, nil
}

// FetchForecast retrieves the 3-hour forecast series for the given city and
// keeps one noon sample per day. The response status is not inspected: an
// error body carries no samples and yields an empty slice.
func (c *Client) FetchForecast(ctx context.Context, city string) ([]ForecastSlot, error) {
	resp, err := c.get(ctx, c.endpoint("forecast", city))
	if err != nil {
		return nil, fmt.Errorf("forecast for %s: %w", city, err)
	}
	defer resp.Body.Close()

	var raw forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding forecast for %s: %w", city, err)
	}

	slots := make([]ForecastSlot, 0, len(raw.List))
	for _, item := range raw.List {
		slot := ForecastSlot{
			Label:       item.DtTxt,
			Time:        labelTime(item.DtTxt, item.Dt),
			Temperature: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			slot.Icon = item.Weather[0].Icon
			slot.Main = item.Weather[0].Main
			slot.Description = item.Weather[0].Description
		}
		slots = append(slots, slot)
	}

	return NoonSlots(slots), nil
}

func (c *Client) endpoint(path, city string) string {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", units)
	return c.baseURL + "/" + path + "?" + q.Encode()
}

// get waits on the limiter and performs the request through the circuit
// breaker. Only transport errors and 5xx responses count as breaker failures.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d", errServerStatus, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	return resp, nil
}

func unixIn(sec int64, zone *time.Location) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).In(zone)
}

// labelTime parses the provider's "2006-01-02 15:04:05" label, falling back
// to the epoch timestamp.
func labelTime(label string, dt int64) time.Time {
	if t, err := time.Parse(time.DateTime, label); err == nil {
		return t
	}
	return time.Unix(dt, 0).UTC()
}
