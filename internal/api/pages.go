package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neexbeast/citycast/internal/results"
)

//go:embed assets
var assets embed.FS

var funcs = template.FuncMap{
	"temp":      results.FormatTemp,
	"round":     results.RoundTemp,
	"icon":      results.IconURL,
	"largeIcon": results.LargeIconURL,
	"clock":     results.FormatClock,
	"weekday":   results.Weekday,
	"recordedAt": func(t time.Time) string {
		return results.FormatRecordedAt(t, time.Local)
	},
}

type pages struct {
	search  *template.Template
	results *template.Template
	failure *template.Template
}

type pageData struct {
	Title string
	Query string
	View  results.View
}

func mustParsePages() *pages {
	parse := func(name string) *template.Template {
		return template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(assets, "assets/templates/layout.html", "assets/templates/"+name))
	}
	return &pages{
		search:  parse("search.html"),
		results: parse("results.html"),
		failure: parse("error.html"),
	}
}

func staticFS() fs.FS {
	sub, err := fs.Sub(assets, "assets/static")
	if err != nil {
		panic(err)
	}
	return sub
}

func resultsURL(city string) string {
	return "/weather?city=" + url.QueryEscape(city)
}

// render executes t into a buffer first so a template error never leaves a
// half-written page behind.
func (h *Handlers) render(w http.ResponseWriter, status int, t *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.log.Error("rendering page failed", "template", t.Name(), "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// SearchPage handles GET /.
func (h *Handlers) SearchPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.pages.search, pageData{Title: "Weather"})
}

// Search handles POST /search. Blank input answers 204 so the browser stays
// on the current page.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	city := strings.TrimSpace(r.PostForm.Get("city"))
	if city == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Redirect(w, r, resultsURL(city), http.StatusSeeOther)
}

// ResultsPage handles GET /weather?city=.
func (h *Handlers) ResultsPage(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	view, err := h.screen.Refresh(r.Context(), ClientFromContext(r.Context()), city)
	if err != nil {
		if errors.Is(err, results.ErrSuperseded) {
			http.Error(w, "superseded by a newer search", http.StatusConflict)
			return
		}
		h.log.Error("refresh failed", "city", city, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if view.State == results.StateError {
		h.render(w, http.StatusNotFound, h.pages.failure, pageData{Title: "Weather", Query: city, View: view})
		return
	}

	h.render(w, http.StatusOK, h.pages.results, pageData{Title: view.Current.Name, Query: city, View: view})
}

// ClearHistoryPage handles POST /history/clear. The results page the client
// was looking at is re-rendered with an empty history panel.
func (h *Handlers) ClearHistoryPage(w http.ResponseWriter, r *http.Request) {
	client := ClientFromContext(r.Context())
	view, ok, err := h.screen.ClearHistory(r.Context(), client)
	if err != nil {
		h.log.Error("clear history failed", "client", client, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, h.pages.results, pageData{Title: view.Current.Name, Query: view.City, View: view})
}
