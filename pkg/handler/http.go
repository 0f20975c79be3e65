package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/foomo/flatfileserver/content"
	"github.com/foomo/flatfileserver/pkg/metrics"
	"github.com/foomo/flatfileserver/pkg/site"
	"github.com/foomo/flatfileserver/pkg/snapshot"
	"github.com/foomo/flatfileserver/responses"
	httputils "github.com/foomo/keel/utils/net/http"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	ErrorCodeNotFound = iota + 1
	ErrorCodeNotLoaded
)

type (
	HTTP struct {
		l       *zap.Logger
		path    string
		site    *site.Site
		history *snapshot.History
		mux     *http.ServeMux
	}
	HTTPOption func(*HTTP)
	// Reply envelope of every api response
	Reply struct {
		Reply any `json:"reply"`
	}
	// replied an error whose reply has already been written
	replied struct {
		error
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns a shiny new web server
func NewHTTP(l *zap.Logger, s *site.Site, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:    l.Named("http"),
		site: s,
		mux:  http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(inst)
	}

	routes := map[Route]func(w http.ResponseWriter, r *http.Request) error{
		RoutePage:     inst.handlePage,
		RouteFile:     inst.handleFile,
		RouteFind:     inst.handleFind,
		RouteChildren: inst.handleChildren,
		RouteSite:     inst.handleSite,
		RouteUpdate:   inst.handleUpdate,
		RouteTitle:    inst.handleTitle,
		RouteRobots:   inst.handleRobots,
		RouteSitemap:  inst.handleSitemap,
	}
	for route, fn := range routes {
		inst.mux.HandleFunc(route.Pattern(inst.path), inst.handle(route, fn))
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithPath base path of all routes
func WithPath(v string) HTTPOption {
	return func(o *HTTP) {
		o.path = strings.TrimSuffix(v, "/")
	}
}

// WithHistory serves the latest snapshot while the site is not loaded
func WithHistory(v *snapshot.History) HTTPOption {
	return func(o *HTTP) {
		o.history = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// handle refreshes the site before every request and records the outcome
func (h *HTTP) handle(route Route, fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if route != RouteUpdate {
			if changed, err := h.site.Refresh(r.Context()); err != nil {
				h.l.Warn("failed to refresh site", zap.String("route", string(route)), zap.Error(err))
			} else if len(changed) > 0 {
				h.l.Debug("refreshed site", zap.Strings("changed", changed))
			}
		}

		result := "success"
		if err := fn(w, r); err != nil {
			var (
				replyErr *responses.Error
				done     replied
			)
			switch {
			case errors.As(err, &done):
				result = "error"
			case errors.As(err, &replyErr):
				if replyErr.Code == ErrorCodeNotFound {
					result = "not_found"
				} else {
					result = "error"
				}
				h.writeReply(w, replyErr.Status, replyErr)
			default:
				result = "error"
				httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
			}
		}

		metrics.ServiceRequestCounter.WithLabelValues(string(route), result).Inc()
		metrics.ServiceRequestDuration.WithLabelValues(string(route), result).Observe(time.Since(start).Seconds())
	}
}

func (h *HTTP) handlePage(w http.ResponseWriter, r *http.Request) error {
	search := r.PathValue("search")
	m, ok := h.site.Page(search, r.URL.Query().Get("lang"))
	if !ok {
		return notFound(search)
	}
	h.writeReply(w, http.StatusOK, m)
	return nil
}

func (h *HTTP) handleFile(w http.ResponseWriter, r *http.Request) error {
	search := r.PathValue("search")
	m, ok := h.site.File(search)
	if !ok {
		return notFound(search)
	}
	h.writeReply(w, http.StatusOK, m)
	return nil
}

func (h *HTTP) handleFind(w http.ResponseWriter, r *http.Request) error {
	search := r.PathValue("search")
	m, ok := h.site.Find(search)
	if !ok {
		return notFound(search)
	}
	h.writeReply(w, http.StatusOK, m)
	return nil
}

func (h *HTTP) handleChildren(w http.ResponseWriter, r *http.Request) error {
	search := r.PathValue("search")
	m, ok := h.site.Find(search)
	if !ok {
		return notFound(search)
	}
	children := h.site.Children(m)
	switch r.URL.Query().Get("listed") {
	case "true":
		children = site.Listed(children, true)
	case "false":
		children = site.Listed(children, false)
	}
	if children == nil {
		children = []*content.Model{}
	}
	h.writeReply(w, http.StatusOK, children)
	return nil
}

func (h *HTTP) handleSite(w http.ResponseWriter, r *http.Request) error {
	if h.site.Loaded() {
		w.Header().Set("Content-Type", "application/json")
		return h.site.WriteExport(w)
	}
	if h.history == nil {
		return responses.NewError(http.StatusServiceUnavailable, ErrorCodeNotLoaded, "site not loaded yet")
	}
	w.Header().Set("Content-Type", "application/json")
	if err := h.history.Current(r.Context(), w); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return responses.NewError(http.StatusServiceUnavailable, ErrorCodeNotLoaded, "site not loaded yet")
		}
		return errors.Wrap(err, "failed to read current snapshot")
	}
	return nil
}

func (h *HTTP) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	resp := h.site.Update(r.Context())
	if !resp.Success {
		h.writeReply(w, http.StatusInternalServerError, resp)
		return replied{errors.New(resp.ErrorMessage)}
	}
	h.writeReply(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) handleTitle(w http.ResponseWriter, r *http.Request) error {
	search := r.PathValue("search")
	m, ok := h.site.Page(search, r.URL.Query().Get("lang"))
	if !ok {
		return notFound(search)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(m.Title()))
	return err
}

func (h *HTTP) handleRobots(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	body := "User-agent: *\nAllow: /\n"
	if h.site.BaseURL() != "" {
		body += fmt.Sprintf("\nSitemap: %s/sitemap.xml\n", h.site.BaseURL())
	}
	_, err := w.Write([]byte(body))
	return err
}

type (
	sitemapURL struct {
		Loc     string `xml:"loc"`
		LastMod string `xml:"lastmod,omitempty"`
	}
	sitemap struct {
		XMLName xml.Name     `xml:"urlset"`
		XMLNS   string       `xml:"xmlns,attr"`
		URLs    []sitemapURL `xml:"url"`
	}
)

func (h *HTTP) handleSitemap(w http.ResponseWriter, r *http.Request) error {
	doc := sitemap{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, m := range h.site.Models() {
		if m.Kind() != content.KindPage || !m.IsListed() || !m.IsPublished() {
			continue
		}
		u := sitemapURL{Loc: h.site.URL(m)}
		if !m.LastModified().IsZero() {
			u.LastMod = m.LastModified().UTC().Format(time.DateOnly)
		}
		doc.URLs = append(doc.URLs, u)
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	return errors.Wrap(xml.NewEncoder(w).Encode(doc), "failed to encode sitemap")
}

// writeReply encodes reply within the {"reply": ...} envelope
func (h *HTTP) writeReply(w http.ResponseWriter, status int, reply any) {
	bytes, err := json.Marshal(Reply{Reply: reply})
	if err != nil {
		h.l.Error("could not encode reply", zap.Error(err))
		http.Error(w, "could not encode reply", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(bytes)
}

func notFound(search string) error {
	return responses.NewErrorf(http.StatusNotFound, ErrorCodeNotFound, "nothing found for %q", search)
}
