// Package watcher detects changed directories below a root by diffing a
// remembered file state against the filesystem. It polls, nothing is pushed.
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	// Detector remembers absolute file path → modification time and reports the
	// directories whose immediate files differ from that state.
	Detector struct {
		l          *zap.Logger
		dir        string
		state      map[string]time.Time
		extensions []string
		skipDirs   map[string]struct{}
		changed    []string
		lock       sync.Mutex
	}
	Option func(*Detector)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewDetector(l *zap.Logger, dir string, opts ...Option) *Detector {
	inst := &Detector{
		l:        l.Named("watcher"),
		dir:      filepath.Clean(dir),
		state:    map[string]time.Time{},
		skipDirs: map[string]struct{}{},
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithState seeds the remembered state, e.g. from the loaded models
func WithState(v map[string]time.Time) Option {
	return func(o *Detector) {
		for path, modTime := range v {
			o.state[filepath.Clean(path)] = modTime
		}
	}
}

// WithExtensions restricts tracking to files with one of the given extensions
func WithExtensions(v ...string) Option {
	return func(o *Detector) {
		o.extensions = append(o.extensions, v...)
	}
}

// WithSkipDirs directory names that are never entered
func WithSkipDirs(v ...string) Option {
	return func(o *Detector) {
		for _, name := range v {
			o.skipDirs[name] = struct{}{}
		}
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (d *Detector) Dir() string {
	return d.dir
}

// State copy of the remembered state
func (d *Detector) State() map[string]time.Time {
	d.lock.Lock()
	defer d.lock.Unlock()
	state := make(map[string]time.Time, len(d.state))
	for k, v := range d.state {
		state[k] = v
	}
	return state
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (d *Detector) Add(path string, modTime time.Time) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.state[filepath.Clean(path)] = modTime
}

func (d *Detector) Remove(path string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	delete(d.state, filepath.Clean(path))
}

// Forget drops the remembered state of every file below dir
func (d *Detector) Forget(dir string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.forget(filepath.Clean(dir))
}

// Scan re-baselines the state below dir from the filesystem. A directory that
// no longer exists simply leaves no state behind.
func (d *Detector) Scan(dir string) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.scan(filepath.Clean(dir))
}

// ScanEach re-baselines every given directory, typically the result of Changes
func (d *Detector) ScanEach(dirs []string) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	for _, dir := range dirs {
		if err := d.scan(filepath.Clean(dir)); err != nil {
			return err
		}
	}
	return nil
}

// Changes walks the tree top-down and returns the changed directories. A
// changed directory is not descended into. Every call starts from scratch.
func (d *Detector) Changes() ([]string, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.changed = nil

	if _, err := os.Stat(d.dir); err != nil {
		return nil, errors.Wrap(err, "failed to stat watched directory")
	}

	v := d.view()
	if err := d.walk(d.dir, v); err != nil {
		return nil, err
	}

	changed := make([]string, len(d.changed))
	copy(changed, d.changed)
	return changed, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// view remembered state grouped per directory
type view struct {
	files   map[string]map[string]time.Time
	subdirs map[string]map[string]struct{}
}

func (d *Detector) view() view {
	v := view{
		files:   map[string]map[string]time.Time{},
		subdirs: map[string]map[string]struct{}{},
	}
	for path, modTime := range d.state {
		dir := filepath.Dir(path)
		if !within(d.dir, dir) {
			continue
		}
		if v.files[dir] == nil {
			v.files[dir] = map[string]time.Time{}
		}
		v.files[dir][path] = modTime
		for dir != d.dir {
			parent := filepath.Dir(dir)
			if v.subdirs[parent] == nil {
				v.subdirs[parent] = map[string]struct{}{}
			}
			v.subdirs[parent][dir] = struct{}{}
			dir = parent
		}
	}
	return v
}

func (d *Detector) walk(dir string, v view) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir != d.dir && errors.Is(err, fs.ErrNotExist) {
			d.l.Debug("directory missing", zap.String("dir", dir))
			d.changed = append(d.changed, dir)
			return nil
		}
		return errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var (
		subdirs []string
		present = map[string]struct{}{}
	)
	if d.directoryChanged(dir, entries, v, present, &subdirs) {
		d.changed = append(d.changed, dir)
		return nil
	}

	// remembered sub directories that vanished
	var vanished []string
	for sub := range v.subdirs[dir] {
		if _, ok := present[sub]; !ok {
			vanished = append(vanished, sub)
		}
	}
	sort.Strings(vanished)
	for _, sub := range vanished {
		d.l.Debug("directory missing", zap.String("dir", sub))
		d.changed = append(d.changed, sub)
	}

	for _, sub := range subdirs {
		if err := d.walk(sub, v); err != nil {
			return err
		}
	}
	return nil
}

// directoryChanged compares the immediate files of dir with the remembered
// state and stops at the first difference. Sub directories are collected on
// the way.
func (d *Detector) directoryChanged(dir string, entries []fs.DirEntry, v view, present map[string]struct{}, subdirs *[]string) bool {
	remembered := v.files[dir]
	seen := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if _, skip := d.skipDirs[entry.Name()]; skip {
				continue
			}
			present[path] = struct{}{}
			*subdirs = append(*subdirs, path)
			continue
		}
		if !d.tracked(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed while listing
			continue
		}
		modTime, ok := remembered[path]
		if !ok {
			d.l.Debug("new file detected", zap.String("path", path))
			return true
		}
		if !modTime.Equal(info.ModTime()) {
			d.l.Debug("file changed", zap.String("path", path))
			return true
		}
		seen++
	}
	if seen != len(remembered) {
		for path := range remembered {
			if _, err := os.Stat(path); err != nil {
				d.l.Debug("file missing", zap.String("path", path))
				break
			}
		}
		return true
	}
	return false
}

func (d *Detector) scan(dir string) error {
	d.forget(dir)
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if entry.IsDir() {
			if _, skip := d.skipDirs[entry.Name()]; skip && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.tracked(entry.Name()) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		d.state[path] = info.ModTime()
		return nil
	})
	return errors.Wrapf(err, "failed to scan %s", dir)
}

func (d *Detector) forget(dir string) {
	for path := range d.state {
		if within(dir, path) {
			delete(d.state, path)
		}
	}
}

func (d *Detector) tracked(name string) bool {
	if len(d.extensions) == 0 {
		return true
	}
	for _, ext := range d.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// within is path equal to or below dir
func within(dir, path string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
