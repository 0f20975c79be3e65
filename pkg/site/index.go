package site

import (
	"sort"
	"time"

	"github.com/foomo/flatfileserver/content"
	"github.com/pkg/errors"
)

// ErrPathMismatch is returned when a model is stored under a key that differs
// from its computed path
var ErrPathMismatch = errors.New("model path does not match index key")

// Index path → model map. It is not safe for concurrent use, the Site guards
// it with its lock.
type Index struct {
	models map[string]*content.Model
}

func NewIndex(models ...*content.Model) *Index {
	idx := &Index{
		models: make(map[string]*content.Model, len(models)),
	}
	for _, m := range models {
		idx.Put(m)
	}
	return idx
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (idx *Index) Get(path string) (*content.Model, bool) {
	m, ok := idx.models[path]
	return m, ok
}

// Put stores m under its computed path, replacing any previous model
func (idx *Index) Put(m *content.Model) {
	idx.models[m.Path()] = m
}

// Set stores m under key, which has to equal the computed path of m
func (idx *Index) Set(key string, m *content.Model) error {
	if p := m.Path(); p != key {
		return errors.Wrapf(ErrPathMismatch, "key %q, path %q", key, p)
	}
	idx.models[key] = m
	return nil
}

// Upsert stores m under its computed path. If a model is already stored there
// the new model carries the old content merged with its own, incoming values
// win. The stored model is never mutated.
func (idx *Index) Upsert(m *content.Model) *content.Model {
	p := m.Path()
	existing, ok := idx.models[p]
	if !ok {
		idx.models[p] = m
		return m
	}
	cfg := m.Config()
	cfg.Content = existing.Content().Clone().Merge(m.Content())
	merged := content.NewModel(cfg)
	idx.models[p] = merged
	return merged
}

func (idx *Index) Delete(path string) {
	delete(idx.models, path)
}

// Each iterates in unspecified order until fn returns false
func (idx *Index) Each(fn func(m *content.Model) bool) {
	for _, m := range idx.models {
		if !fn(m) {
			return
		}
	}
}

func (idx *Index) Len() int {
	return len(idx.models)
}

// Keys sorted
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.models))
	for k := range idx.models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sources source file → last modification of every model
func (idx *Index) Sources() map[string]time.Time {
	sources := make(map[string]time.Time, len(idx.models))
	for _, m := range idx.models {
		if m.RootPath() != "" {
			sources[m.RootPath()] = m.LastModified()
		}
	}
	return sources
}

// Clone shallow copy, models are shared
func (idx *Index) Clone() *Index {
	clone := &Index{
		models: make(map[string]*content.Model, len(idx.models)),
	}
	for k, m := range idx.models {
		clone.models[k] = m
	}
	return clone
}
