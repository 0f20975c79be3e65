// Package flatfile loads a directory tree of kirby style text files into a
// site index.
package flatfile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/foomo/flatfileserver/content"
	"github.com/foomo/flatfileserver/pkg/site"
	"github.com/foomo/flatfileserver/pkg/watcher"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultExtension   = ".txt"
	DefaultVersionsDir = "_versions"
)

// ErrPath is returned for a path that can not be expressed relative to the
// content root
var ErrPath = errors.New("path outside of content root")

type (
	// Backend flat file content source
	Backend struct {
		l             *zap.Logger
		dir           string
		multiLanguage bool
		extensions    []string
		versionsDir   string
		detector      *watcher.Detector
		detectorLock  sync.Mutex
	}
	Option func(*Backend)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, dir string, opts ...Option) *Backend {
	inst := &Backend{
		l:           l.Named("flatfile"),
		dir:         absDir(dir),
		extensions:  []string{DefaultExtension},
		versionsDir: DefaultVersionsDir,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// absDir source paths of models are absolute, fall back to the cleaned dir
// if the working directory can not be resolved
func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// ContentDir the conventional content root below a site directory
func ContentDir(siteDir string) string {
	return filepath.Join(siteDir, "storage", "content")
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithMultiLanguage file names carry a language segment
func WithMultiLanguage(v bool) Option {
	return func(o *Backend) {
		o.multiLanguage = v
	}
}

func WithExtensions(v ...string) Option {
	return func(o *Backend) {
		if len(v) > 0 {
			o.extensions = v
		}
	}
}

// WithVersionsDir name of the directories that are never entered
func WithVersionsDir(v string) Option {
	return func(o *Backend) {
		o.versionsDir = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (b *Backend) Dir() string {
	return b.dir
}

func (b *Backend) MultiLanguage() bool {
	return b.multiLanguage
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Changes directories below the content root that changed since the last load
func (b *Backend) Changes(ctx context.Context, idx *site.Index) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.watcher(idx).Changes()
}

// Load walks the changed directories, or the whole content root, and upserts
// the models into idx. Models whose source lived in a walked directory and was
// not read again are deleted. The first error aborts the load.
func (b *Backend) Load(ctx context.Context, idx *site.Index, changed []string) error {
	d := b.watcher(idx)

	roots := changed
	if len(roots) == 0 {
		roots = []string{b.dir}
	}

	var (
		staged []*content.Model
		read   = map[string]time.Time{}
	)
	for _, root := range roots {
		root = filepath.Clean(root)
		if _, err := b.rel(root); err != nil {
			return err
		}
		err := b.walk(ctx, root, func(m *content.Model) {
			staged = append(staged, m)
			read[m.RootPath()] = m.LastModified()
		})
		if err != nil {
			return err
		}
	}

	var stale []string
	idx.Each(func(m *content.Model) bool {
		if _, ok := read[m.RootPath()]; !ok && m.RootPath() != "" && withinAny(roots, m.RootPath()) {
			stale = append(stale, m.Path())
		}
		return true
	})
	for _, p := range stale {
		b.l.Debug("removing model", zap.String("path", p))
		idx.Delete(p)
	}

	for _, m := range staged {
		idx.Upsert(m)
	}

	for _, root := range roots {
		d.Forget(filepath.Clean(root))
	}
	for path, modTime := range read {
		d.Add(path, modTime)
	}

	b.l.Debug("loaded",
		zap.Strings("roots", roots),
		zap.Int("num_read", len(staged)),
		zap.Int("num_removed", len(stale)),
	)
	return nil
}

// ReadModel reads a single content file
func (b *Backend) ReadModel(path string) (*content.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	rel, err := b.rel(path)
	if err != nil {
		return nil, err
	}

	cfg := content.ExtractComponents(filepath.ToSlash(rel), b.multiLanguage).ModelConfig()
	cfg.Content = ParseContent(data)
	cfg.RootPath = path
	cfg.LastModified = info.ModTime()
	return content.NewModel(cfg), nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// watcher lazily creates the detector seeded from the loaded models
func (b *Backend) watcher(idx *site.Index) *watcher.Detector {
	b.detectorLock.Lock()
	defer b.detectorLock.Unlock()
	if b.detector == nil {
		b.detector = watcher.NewDetector(b.l, b.dir,
			watcher.WithState(idx.Sources()),
			watcher.WithExtensions(b.extensions...),
			watcher.WithSkipDirs(b.versionsDir),
		)
	}
	return b.detector
}

// walk depth first below root, a root that does not exist is an empty tree
func (b *Backend) walk(ctx context.Context, root string, fn func(m *content.Model)) error {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) && root != b.dir {
		b.l.Debug("directory vanished", zap.String("dir", root))
		return nil
	}
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}
		if entry.IsDir() {
			if entry.Name() == b.versionsDir {
				return filepath.SkipDir
			}
			return ctx.Err()
		}
		if !b.isContentFile(entry.Name()) {
			return nil
		}
		m, err := b.ReadModel(path)
		if err != nil {
			return err
		}
		fn(m)
		return nil
	})
}

func (b *Backend) rel(path string) (string, error) {
	rel, err := filepath.Rel(b.dir, path)
	if err != nil {
		return "", errors.Wrapf(ErrPath, "%s: %s", path, err.Error())
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrPath, "%s", path)
	}
	return rel, nil
}

func (b *Backend) isContentFile(name string) bool {
	for _, ext := range b.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func withinAny(dirs []string, path string) bool {
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
