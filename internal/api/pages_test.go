package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/citycast/internal/api"
	"github.com/neexbeast/citycast/internal/history"
	"github.com/neexbeast/citycast/internal/results"
	"github.com/neexbeast/citycast/internal/weather"
)

// provider fakes the two OpenWeatherMap endpoints. Unknown cities get a 404.
func provider(t *testing.T) *httptest.Server {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Paris" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":    "Paris",
			"sys":     map[string]any{"country": "FR", "sunrise": 1700000000, "sunset": 1700040000},
			"main":    map[string]any{"temp": 21.6, "feels_like": 20.2, "humidity": 60, "pressure": 1012},
			"weather": []map[string]any{{"main": "Clouds", "description": "broken clouds", "icon": "04d"}},
			"wind":    map[string]any{"speed": 3.5},
		})
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		list := make([]map[string]any, 0, 40)
		for i := 0; i < 40; i++ {
			ts := start.Add(time.Duration(i*3) * time.Hour)
			list = append(list, map[string]any{
				"dt":      ts.Unix(),
				"dt_txt":  ts.Format(time.DateTime),
				"main":    map[string]any{"temp": 15.5},
				"weather": []map[string]any{{"main": "Rain", "description": "light rain", "icon": "10d"}},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"list": list})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func buildApp(t *testing.T) http.Handler {
	t.Helper()
	log := discardLogger()
	store := history.NewStore(history.NewMemoryBackend(), log)
	screen := results.NewScreen(weather.NewClientWithURL(provider(t).URL, "key"), store, log)
	handlers := api.NewHandlers(screen, store, log)
	return api.NewRouter(handlers, history.NewMemoryBackend(), api.RouterConfig{RateLimitPerMinute: 1000}, log)
}

func page(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("X-Client-ID", testClient)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSearchPage(t *testing.T) {
	w := page(t, buildApp(t), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `action="/search"`)
	assert.Contains(t, w.Body.String(), `class="default-bg"`)
}

func TestSearch_RedirectsToResults(t *testing.T) {
	w := page(t, buildApp(t), http.MethodPost, "/search", url.Values{"city": {"  Rio de Janeiro "}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/weather?city=Rio+de+Janeiro", w.Header().Get("Location"))
}

func TestSearch_BlankIsNoop(t *testing.T) {
	w := page(t, buildApp(t), http.MethodPost, "/search", url.Values{"city": {"   "}})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

func TestResultsPage_SearchThenReady(t *testing.T) {
	app := buildApp(t)

	w := page(t, app, http.MethodPost, "/search", url.Values{"city": {"Paris"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = page(t, app, http.MethodGet, w.Header().Get("Location"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `class="clouds-bg"`)
	assert.Contains(t, body, "Paris, FR")
	assert.Contains(t, body, "22°C")
	assert.Contains(t, body, "Recent Cities")
	assert.Equal(t, 1, strings.Count(body, `class="history-city"`))
	assert.Equal(t, 5, strings.Count(body, `class="forecast-day"`))
	assert.Contains(t, body, "16°C", "forecast temperatures are rounded half up")
	assert.Contains(t, body, "https://openweathermap.org/img/wn/04d@2x.png")
	assert.NotContains(t, body, "No searches yet.")
	assert.Contains(t, body, `value="Paris"`, "search field starts with the active city")
}

func TestResultsPage_RepeatSearchDoesNotDuplicateHistory(t *testing.T) {
	app := buildApp(t)

	page(t, app, http.MethodGet, "/weather?city=Paris", nil)
	w := page(t, app, http.MethodGet, "/weather?city=Paris", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(w.Body.String(), `class="history-city"`))
}

func TestResultsPage_CityNotFound(t *testing.T) {
	w := page(t, buildApp(t), http.MethodGet, "/weather?city=Atlantis", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "City not found")
	assert.Contains(t, body, `href="/"`)
	assert.NotContains(t, body, "Recent Cities")
}

func TestResultsPage_MissingCityRedirectsHome(t *testing.T) {
	w := page(t, buildApp(t), http.MethodGet, "/weather", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestClearHistoryPage_EmptiesPanel(t *testing.T) {
	app := buildApp(t)

	w := page(t, app, http.MethodGet, "/weather?city=Paris", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = page(t, app, http.MethodPost, "/history/clear", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "No searches yet.")
	assert.Zero(t, strings.Count(body, `class="history-city"`))
	assert.NotContains(t, body, `action="/history/clear"`, "clear control is hidden when history is empty")
	assert.Contains(t, body, "22°C", "current card stays on screen")
}

func TestClearHistoryPage_NothingShownRedirectsHome(t *testing.T) {
	w := page(t, buildApp(t), http.MethodPost, "/history/clear", url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestStaticAssets(t *testing.T) {
	w := page(t, buildApp(t), http.MethodGet, "/static/style.css", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".rain-bg")
}
