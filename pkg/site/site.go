// Package site holds the in-memory index of a flat-file site and keeps it in
// sync with its backend.
package site

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foomo/flatfileserver/content"
	"github.com/foomo/flatfileserver/pkg/metrics"
	"github.com/foomo/flatfileserver/responses"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Site the shared index. Lookups take the read lock, loads the write lock.
	Site struct {
		l            *zap.Logger
		backend      Backend
		dir          string
		baseURL      string
		home         string
		poll         bool
		pollInterval time.Duration
		onLoaded     func()
		loaded       *atomic.Bool
		index        *Index
		lock         sync.RWMutex
	}
	Option func(*Site)
	// Export json representation of the whole index
	Export struct {
		Dir     string                    `json:"dir"`
		BaseURL string                    `json:"baseUrl"`
		Models  map[string]*content.Model `json:"models"`
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, backend Backend, opts ...Option) *Site {
	inst := &Site{
		l:            l.Named("site"),
		backend:      backend,
		home:         content.HomePath,
		pollInterval: time.Minute,
		loaded:       &atomic.Bool{},
		index:        NewIndex(),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithDir site root directory
func WithDir(v string) Option {
	return func(o *Site) {
		o.dir = v
	}
}

func WithBaseURL(v string) Option {
	return func(o *Site) {
		o.baseURL = strings.TrimSuffix(v, "/")
	}
}

// WithHome path the empty route resolves to
func WithHome(v string) Option {
	return func(o *Site) {
		o.home = strings.Trim(v, content.PathSeparator)
	}
}

// WithModels prefills the index
func WithModels(v ...*content.Model) Option {
	return func(o *Site) {
		for _, m := range v {
			o.index.Put(m)
		}
	}
}

func WithPoll(v bool) Option {
	return func(o *Site) {
		o.poll = v
	}
}

func WithPollInterval(v time.Duration) Option {
	return func(o *Site) {
		o.pollInterval = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (s *Site) Dir() string {
	return s.dir
}

func (s *Site) BaseURL() string {
	return s.baseURL
}

func (s *Site) Home() string {
	return s.home
}

// Loaded has the backend been loaded successfully at least once
func (s *Site) Loaded() bool {
	return s.loaded.Load()
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// OnLoaded registers a callback that runs after every successful load
func (s *Site) OnLoaded(fn func()) {
	s.onLoaded = fn
}

// Changes asks the backend for changed directories under the read lock
func (s *Site) Changes(ctx context.Context) ([]string, error) {
	if s.backend == nil {
		return nil, ErrNoBackend
	}
	start := time.Now()

	s.lock.RLock()
	changed, err := s.backend.Changes(ctx, s.index)
	s.lock.RUnlock()

	metrics.ChangesDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrap(err, "failed to detect changes")
	}
	metrics.ChangedDirectoriesCounter.WithLabelValues().Add(float64(len(changed)))
	return changed, nil
}

// Load lets the backend read the changed directories, or everything if none
// are given, under the write lock. On failure the previous index stays.
func (s *Site) Load(ctx context.Context, changed []string) error {
	return s.load(ctx, uuid.New().String(), changed)
}

// Refresh polls for changes and loads them. Polling and loading are separate
// lock sections: a change that happens in between is picked up by the next
// call.
func (s *Site) Refresh(ctx context.Context) ([]string, error) {
	if !s.Loaded() {
		return nil, s.Load(ctx, nil)
	}
	changed, err := s.Changes(ctx)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return nil, nil
	}
	return changed, s.Load(ctx, changed)
}

// Update forces a full load and reports on it
func (s *Site) Update(ctx context.Context) *responses.Update {
	runID := uuid.New().String()
	s.l.Info("update triggered", zap.String("run_id", runID))

	start := time.Now()
	err := s.load(ctx, runID, nil)
	loadRuntime := time.Since(start)

	resp := &responses.Update{RunID: runID}
	resp.Stats.LoadRuntime = loadRuntime.Seconds()
	if err != nil {
		resp.Success = false
		resp.ErrorMessage = err.Error()
		resp.Stats.NumberOfModels = -1
	} else {
		resp.Success = true
		s.Each(func(m *content.Model) bool {
			resp.Stats.NumberOfModels++
			switch m.Kind() {
			case content.KindPage:
				resp.Stats.NumberOfPages++
			case content.KindFile:
				resp.Stats.NumberOfFiles++
			}
			return true
		})
		resp.Stats.NumberOfLanguages = len(s.Languages())
	}
	resp.Stats.OwnRuntime = time.Since(start).Seconds() - resp.Stats.LoadRuntime
	return resp
}

// Start loads the site and runs the poll routine if enabled
func (s *Site) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	l := s.l.Named("start")

	if s.poll {
		g.Go(func() error {
			l.Debug("starting poll routine")
			return s.PollRoutine(gCtx)
		})
	}

	if !s.Loaded() {
		l.Debug("trying to load initial state")
		if resp := s.Update(gCtx); !resp.Success {
			l.Error("failed to load initial state",
				zap.String("error", resp.ErrorMessage),
				zap.String("run_id", resp.RunID),
				zap.Float64("load_runtime", resp.Stats.LoadRuntime),
			)
		}
	}

	return g.Wait()
}

func (s *Site) PollRoutine(ctx context.Context) error {
	l := s.l.Named("routine.poll")
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			changed, err := s.Refresh(ctx)
			if err != nil {
				l.Error("refresh failed", zap.Error(err))
			} else if len(changed) > 0 {
				l.Info("refresh success", zap.Strings("changed", changed))
			}
		}
	}
}

// Page looks up a page by path or uuid. An empty language matches every language.
func (s *Site) Page(search, language string) (*content.Model, bool) {
	return s.lookup(content.KindPage, s.key(search, language), search, func(m *content.Model) bool {
		return language == "" || m.Language() == language
	})
}

// File looks up a file by path or uuid
func (s *Site) File(search string) (*content.Model, bool) {
	return s.lookup(content.KindFile, s.key(search, ""), search, nil)
}

// Find looks up a model of any kind by path or uuid
func (s *Site) Find(search string) (*content.Model, bool) {
	return s.lookup(content.KindNone, s.key(search, ""), search, nil)
}

// Get exact index lookup
func (s *Site) Get(path string) (*content.Model, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.index.Get(path)
}

// SiteModel the site root model of a language
func (s *Site) SiteModel(language string) (*content.Model, bool) {
	return s.Get(content.ComposePath(language, content.SiteKey))
}

func (s *Site) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.index.Len()
}

// Each iterates under the read lock, fn must not call back into the site
func (s *Site) Each(fn func(m *content.Model) bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	s.index.Each(fn)
}

// Models sorted by path
func (s *Site) Models() []*content.Model {
	s.lock.RLock()
	defer s.lock.RUnlock()
	models := make([]*content.Model, 0, s.index.Len())
	for _, k := range s.index.Keys() {
		m, _ := s.index.Get(k)
		models = append(models, m)
	}
	return models
}

// Languages distinct languages of all models, sorted
func (s *Site) Languages() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	set := map[string]struct{}{}
	s.index.Each(func(m *content.Model) bool {
		if m.Language() != "" {
			set[m.Language()] = struct{}{}
		}
		return true
	})
	languages := make([]string, 0, len(set))
	for language := range set {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	return languages
}

func (s *Site) Parent(m *content.Model) (*content.Model, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return m.Parent(s.index)
}

// Children every model below m, listed first
func (s *Site) Children(m *content.Model) []*content.Model {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return m.Children(s.index)
}

// Siblings the children of m's parent without m itself
func (s *Site) Siblings(m *content.Model) []*content.Model {
	s.lock.RLock()
	defer s.lock.RUnlock()
	parent, ok := m.Parent(s.index)
	if !ok {
		return nil
	}
	var siblings []*content.Model
	for _, child := range parent.Children(s.index) {
		if child.Path() != m.Path() {
			siblings = append(siblings, child)
		}
	}
	return siblings
}

// Listed filters models by their listed state
func Listed(models []*content.Model, listed bool) []*content.Model {
	var ret []*content.Model
	for _, m := range models {
		if m.IsListed() == listed {
			ret = append(ret, m)
		}
	}
	return ret
}

// URL absolute url of a model
func (s *Site) URL(m *content.Model) string {
	return s.baseURL + content.PathSeparator + m.Path()
}

// Export snapshot of the index
func (s *Site) Export() *Export {
	s.lock.RLock()
	defer s.lock.RUnlock()
	export := &Export{
		Dir:     s.dir,
		BaseURL: s.baseURL,
		Models:  make(map[string]*content.Model, s.index.Len()),
	}
	s.index.Each(func(m *content.Model) bool {
		export.Models[m.Path()] = m
		return true
	})
	return export
}

// WriteExport encodes the index as json
func (s *Site) WriteExport(w io.Writer) error {
	return errors.Wrap(json.NewEncoder(w).Encode(s.Export()), "failed to encode site export")
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (s *Site) load(ctx context.Context, runID string, changed []string) error {
	if s.backend == nil {
		return ErrNoBackend
	}
	start := time.Now()
	l := s.l.With(zap.String("run_id", runID), zap.Int("num_changed", len(changed)))
	l.Debug("load started")

	s.lock.Lock()
	next := s.index.Clone()
	err := s.backend.Load(ctx, next, changed)
	if err == nil {
		s.index = next
		s.updateGauges()
	}
	s.lock.Unlock()

	metrics.LoadDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoadsFailedCounter.WithLabelValues().Inc()
		l.Error("load failed", zap.Error(err))
		return errors.Wrap(err, "failed to load site")
	}
	metrics.LoadsCompletedCounter.WithLabelValues().Inc()

	if !s.loaded.Swap(true) {
		l.Info("initial load success", zap.Int("num_models", s.Len()))
	} else {
		l.Info("load success", zap.Strings("changed", changed))
	}
	if s.onLoaded != nil {
		s.onLoaded()
	}
	return nil
}

// key trims exactly one leading and trailing separator, maps the empty search
// to home and folds home into the empty path
func (s *Site) key(search, language string) string {
	search = strings.TrimPrefix(search, content.PathSeparator)
	search = strings.TrimSuffix(search, content.PathSeparator)
	if search == "" {
		search = s.home
	}
	key := content.FoldHome(search)
	switch {
	case language == "":
		return key
	case key == "":
		return language
	default:
		return language + content.PathSeparator + key
	}
}

// lookup exact key first, then a scan for uuid or path equality
func (s *Site) lookup(kind content.Kind, key, search string, filter func(m *content.Model) bool) (*content.Model, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	accept := func(m *content.Model) bool {
		return (kind == content.KindNone || m.Kind() == kind) && (filter == nil || filter(m))
	}

	if m, ok := s.index.Get(key); ok && accept(m) {
		metrics.LookupCounter.WithLabelValues(kind.String(), "found").Inc()
		return m, true
	}

	var (
		trimmed = strings.TrimSuffix(strings.TrimPrefix(search, content.PathSeparator), content.PathSeparator)
		id      = content.NewField("uuid", trimmed).ID()
		found   *content.Model
	)
	s.index.Each(func(m *content.Model) bool {
		if !accept(m) {
			return true
		}
		if matchesID(m, trimmed, id) || m.Path() == trimmed {
			found = m
			return false
		}
		return true
	})
	if found == nil {
		metrics.LookupCounter.WithLabelValues(kind.String(), "not_found").Inc()
		return nil, false
	}
	metrics.LookupCounter.WithLabelValues(kind.String(), "found").Inc()
	return found, true
}

func (s *Site) updateGauges() {
	counts := map[content.Kind]int{}
	s.index.Each(func(m *content.Model) bool {
		counts[m.Kind()]++
		return true
	})
	for _, kind := range []content.Kind{content.KindPage, content.KindSite, content.KindFile, content.KindUser} {
		metrics.ModelsGauge.WithLabelValues(kind.String()).Set(float64(counts[kind]))
	}
}

func matchesID(m *content.Model, search, id string) bool {
	if search == "" || !m.Content().Has("uuid") {
		return false
	}
	return m.UUID() == search || m.Content().Get("uuid").ID() == id
}
