package content

import (
	"sort"
	"strings"
	"time"
)

const (
	// SiteKey reserved key of the site model. NUL can not appear in a file
	// name, so no page or file path collides with it.
	SiteKey = "\x00site"
	// HomePath raw path that is folded into the empty path
	HomePath = "home"
	// DraftMarker directory name that marks everything below it as a draft
	DraftMarker = "_drafts"
)

type (
	// Model a content node: a page, a file, the site root or a user
	Model struct {
		kind         Kind
		language     string
		rawPath      string
		filename     string
		sortNumber   uint64
		sorted       bool
		template     string
		content      *Content
		rootPath     string
		lastModified time.Time
	}
	// ModelConfig named construction parameters for a Model
	ModelConfig struct {
		Kind     Kind
		Language string
		// RawPath path relative to the content root, ordering prefixes stripped
		RawPath  string
		Filename string
		// SortNumber only counts if Sorted is set
		SortNumber uint64
		Sorted     bool
		Template   string
		Content    *Content
		// RootPath absolute path of the source file
		RootPath     string
		LastModified time.Time
	}
	// Index resolves models by path, implemented by the site index
	Index interface {
		Get(path string) (*Model, bool)
		Each(fn func(m *Model) bool)
	}
)

// NewModel constructor
func NewModel(cfg ModelConfig) *Model {
	c := cfg.Content
	if c == nil {
		c = NewContent()
	}
	return &Model{
		kind:         cfg.Kind,
		language:     cfg.Language,
		rawPath:      strings.Trim(cfg.RawPath, PathSeparator),
		filename:     cfg.Filename,
		sortNumber:   cfg.SortNumber,
		sorted:       cfg.Sorted,
		template:     cfg.Template,
		content:      c,
		rootPath:     cfg.RootPath,
		lastModified: cfg.LastModified,
	}
}

// Config returns the parameters the model was built from, handy to derive a
// modified copy.
func (m *Model) Config() ModelConfig {
	return ModelConfig{
		Kind:         m.kind,
		Language:     m.language,
		RawPath:      m.rawPath,
		Filename:     m.filename,
		SortNumber:   m.sortNumber,
		Sorted:       m.sorted,
		Template:     m.template,
		Content:      m.content,
		RootPath:     m.rootPath,
		LastModified: m.lastModified,
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (m *Model) Kind() Kind {
	return m.kind
}

func (m *Model) Language() string {
	return m.language
}

func (m *Model) RawPath() string {
	return m.rawPath
}

func (m *Model) Filename() string {
	return m.filename
}

func (m *Model) Content() *Content {
	return m.content
}

func (m *Model) RootPath() string {
	return m.rootPath
}

func (m *Model) LastModified() time.Time {
	return m.lastModified
}

// Template explicit template or the "template" field
func (m *Model) Template() string {
	if m.template != "" {
		return m.template
	}
	return m.content.Value("template")
}

// SortNumber explicit number or, for files, the "sort" field
func (m *Model) SortNumber() (uint64, bool) {
	if m.sorted {
		return m.sortNumber, true
	}
	if m.kind == KindFile && m.content.Has("sort") {
		num, err := m.content.Get("sort").Int()
		if err == nil && num >= 0 {
			return uint64(num), true
		}
	}
	return 0, false
}

func (m *Model) Title() string {
	return m.content.Value("title")
}

func (m *Model) UUID() string {
	return m.content.Value("uuid")
}

// ------------------------------------------------------------------------------------------------
// ~ Derived state
// ------------------------------------------------------------------------------------------------

// Path index key: language prefixed, "home" folded to empty, the site forced
// to SiteKey and files extended by their file name.
func (m *Model) Path() string {
	var p string
	switch m.kind {
	case KindSite:
		p = SiteKey
	case KindFile:
		p = joinPath(FoldHome(m.rawPath), m.filename)
	default:
		p = FoldHome(m.rawPath)
	}
	return ComposePath(m.language, p)
}

// IsDraft is the source below a draft folder
func (m *Model) IsDraft() bool {
	for _, segment := range strings.Split(m.rawPath, PathSeparator) {
		if segment == DraftMarker {
			return true
		}
	}
	return false
}

// IsListed has the model a sort number
func (m *Model) IsListed() bool {
	_, ok := m.SortNumber()
	return ok
}

func (m *Model) IsPublished() bool {
	return !m.IsDraft()
}

// ------------------------------------------------------------------------------------------------
// ~ Relations
// ------------------------------------------------------------------------------------------------

// Parent the page one raw path segment up, for files the page they belong to.
// Top level pages have home as their parent, home and the site have none.
func (m *Model) Parent(idx Index) (*Model, bool) {
	if m.kind == KindSite {
		return nil, false
	}
	raw := m.rawPath
	if m.kind != KindFile {
		if FoldHome(raw) == "" {
			return nil, false
		}
		i := strings.LastIndex(raw, PathSeparator)
		if i < 0 {
			i = 0
		}
		raw = raw[:i]
	}
	return idx.Get(ComposePath(m.language, FoldHome(raw)))
}

// Children every model whose path lies below this model's path. This is not
// limited to one level, callers filter further if needed.
func (m *Model) Children(idx Index) []*Model {
	p := m.Path()
	var children []*Model
	idx.Each(func(other *Model) bool {
		op := other.Path()
		if op != p && other.kind != KindSite && (p == "" || strings.HasPrefix(op, p+PathSeparator)) {
			children = append(children, other)
		}
		return true
	})
	SortModels(children)
	return children
}

// SortModels listed models first by sort number, then by path
func SortModels(models []*Model) {
	sort.SliceStable(models, func(i, j int) bool {
		ni, li := models[i].SortNumber()
		nj, lj := models[j].SortNumber()
		if li != lj {
			return li
		}
		if li && ni != nj {
			return ni < nj
		}
		return models[i].Path() < models[j].Path()
	})
}

// ComposePath prefixes p with the language and trims separators
func ComposePath(language, p string) string {
	if language != "" {
		p = language + PathSeparator + p
	}
	return strings.Trim(p, PathSeparator)
}

// FoldHome "home" → ""
func FoldHome(p string) string {
	if p == HomePath {
		return ""
	}
	return p
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + PathSeparator + name
}
