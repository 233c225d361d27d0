package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm/inertia"
	inertiachi "github.com/pthm/inertia/adapters/chi"
	"github.com/pthm/inertia/example/pages"
	"github.com/pthm/inertia/lib/vite"
)

var errNotFound = errors.New("todo not found")

// timelinePageSize is how many todos each "load more" appends.
const timelinePageSize = 2

// server wires the store to Inertia pages.
type server struct {
	app    *inertia.Inertia
	assets *vite.Vite // nil when assets are served elsewhere
	store  *Store
	gather prometheus.Gatherer
	logger *slog.Logger
}

func (s *server) routes() http.Handler {
	s.app.OnError = s.serveError

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	inertiachi.Use(r, s.app)

	if s.assets != nil {
		inertiachi.MountAssets(r, s.assets)
	}
	if s.gather != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}

	inertiachi.Page(r, "/", s.app, pages.PageTodosIndex, s.index)
	inertiachi.Page(r, "/todos/{id}", s.app, pages.PageTodosShow, s.show)
	r.Post("/todos", s.create)
	r.Put("/todos/{id}/toggle", s.toggle)
	r.Delete("/todos/{id}", s.delete)
	r.Get("/docs", s.docs)
	return r
}

func (s *server) index(r *http.Request) (inertia.Props, error) {
	q := r.URL.Query()
	status := Status(q.Get("status"))
	var tags []Tag
	for _, t := range q["tag"] {
		tags = append(tags, Tag(t))
	}

	page, _ := strconv.Atoi(q.Get("page"))
	page = max(page, 1)

	filters := map[string]any{"status": status, "tags": tags}
	if err := inertia.Share(r.Context(), "filters", filters); err != nil {
		return nil, err
	}

	return inertia.Props{
		"todos": func() any {
			return s.store.List(status, tags)
		},
		"tags": AllTags,
		"stats": inertia.Defer(func() any {
			return s.store.Stats()
		}, "sidebar"),
		"timeline": inertia.Merge(func() []Todo {
			items, _ := s.store.Page(page, timelinePageSize)
			return items
		}).MatchOn("id"),
		"timelineNext": func() any {
			if _, more := s.store.Page(page, timelinePageSize); more {
				return page + 1
			}
			return nil
		},
	}, nil
}

func (s *server) show(r *http.Request) (inertia.Props, error) {
	todo, ok := s.store.Get(inertiachi.Param(r, "id"))
	if !ok {
		return nil, errNotFound
	}
	return inertia.Props{
		"todo": todo,
		"tags": inertia.Optional(AllTags),
	}, nil
}

type todoForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        []Tag  `json:"tags"`
}

// decodeForm accepts the JSON body Inertia's form helper sends as well as a
// plain HTML form post.
func decodeForm(r *http.Request) (todoForm, error) {
	var f todoForm
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&f)
		return f, err
	}
	if err := r.ParseForm(); err != nil {
		return f, err
	}
	f.Title = r.PostForm.Get("title")
	f.Description = r.PostForm.Get("description")
	for _, t := range r.PostForm["tags"] {
		f.Tags = append(f.Tags, Tag(t))
	}
	return f, nil
}

func (s *server) create(w http.ResponseWriter, r *http.Request) {
	f, err := decodeForm(r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	todo, err := s.store.Add(f.Title, f.Description, f.Tags)
	if err != nil {
		s.flash(w, r, inertia.FlashError, err.Error())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.logger.InfoContext(r.Context(), "todo created", "id", todo.ID)
	s.flash(w, r, inertia.FlashSuccess, "Added “"+todo.Title+"”.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) toggle(w http.ResponseWriter, r *http.Request) {
	todo, ok := s.store.Toggle(chi.URLParam(r, "id"))
	if !ok {
		s.serveError(w, r, errNotFound)
		return
	}
	s.flash(w, r, inertia.FlashInfo, "Marked “"+todo.Title+"” "+string(todo.Status)+".")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *server) delete(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(chi.URLParam(r, "id")) {
		s.serveError(w, r, errNotFound)
		return
	}
	s.flash(w, r, inertia.FlashSuccess, "Todo deleted.")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *server) docs(w http.ResponseWriter, r *http.Request) {
	s.app.Location(w, r, "https://inertiajs.com")
}

// flash records a message for the next page. Store failures are logged and
// the request carries on.
func (s *server) flash(w http.ResponseWriter, r *http.Request, key, msg string) {
	if err := s.app.Flash(w, r, key, msg); err != nil {
		s.logger.WarnContext(r.Context(), "flash failed", "error", err)
	}
}

func (s *server) serveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, vite.ErrAssetNotFound):
		s.logger.ErrorContext(r.Context(), "asset missing", "error", err)
		http.Error(w, "Asset not found", http.StatusInternalServerError)
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
