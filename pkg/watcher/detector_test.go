package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, path, data string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestDetector_Changes(t *testing.T) {
	var (
		l    = zaptest.NewLogger(t)
		dir  = t.TempDir()
		base = time.Now().Add(-time.Hour).Truncate(time.Second)
		d    = NewDetector(l, dir)
	)

	changes, err := d.Changes()
	require.NoError(t, err)
	assert.Empty(t, changes)

	// new file
	file := filepath.Join(dir, "test.txt")
	writeFile(t, file, "Hello, world!", base)
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Equal(t, []string{d.Dir()}, changes)

	require.NoError(t, d.ScanEach(changes))
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Empty(t, changes)

	// modified file
	writeFile(t, file, "Hello, world! Modified", base.Add(time.Second))
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Len(t, changes, 1)
	require.NoError(t, d.ScanEach(changes))

	// removed file
	require.NoError(t, os.Remove(file))
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Equal(t, []string{d.Dir()}, changes)
	require.NoError(t, d.ScanEach(changes))
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Empty(t, changes)

	// new nested directory
	nested := filepath.Join(dir, "test2_dir")
	writeFile(t, filepath.Join(nested, "test-2.txt"), "Hello, world! 2", base)
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Equal(t, []string{nested}, changes)
	require.NoError(t, d.ScanEach(changes))

	// removed nested directory
	require.NoError(t, os.RemoveAll(nested))
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Equal(t, []string{nested}, changes)
}

func TestDetector_Changes_Pruning(t *testing.T) {
	var (
		l    = zaptest.NewLogger(t)
		dir  = t.TempDir()
		base = time.Now().Add(-time.Hour).Truncate(time.Second)
	)
	writeFile(t, filepath.Join(dir, "a", "page.txt"), "a", base)
	writeFile(t, filepath.Join(dir, "a", "b", "page.txt"), "b", base)
	writeFile(t, filepath.Join(dir, "c", "page.txt"), "c", base)

	d := NewDetector(l, dir)
	require.NoError(t, d.Scan(dir))

	changes, err := d.Changes()
	require.NoError(t, err)
	assert.Empty(t, changes)

	// both a and a/b change, only a is reported
	writeFile(t, filepath.Join(dir, "a", "page.txt"), "a2", base.Add(time.Second))
	writeFile(t, filepath.Join(dir, "a", "b", "new.txt"), "b2", base)
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(d.Dir(), "a")}, changes)

	// the accumulator is reset on every call
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestDetector_WithState(t *testing.T) {
	var (
		l    = zaptest.NewLogger(t)
		dir  = t.TempDir()
		base = time.Now().Add(-time.Hour).Truncate(time.Second)
		file = filepath.Join(dir, "home", "home.txt")
	)
	writeFile(t, file, "Title: Home", base)

	d := NewDetector(l, dir, WithState(map[string]time.Time{file: base}))
	changes, err := d.Changes()
	require.NoError(t, err)
	assert.Empty(t, changes)

	d = NewDetector(l, dir, WithState(map[string]time.Time{file: base.Add(-time.Minute)}))
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(d.Dir(), "home")}, changes)
}

func TestDetector_Filters(t *testing.T) {
	var (
		l    = zaptest.NewLogger(t)
		dir  = t.TempDir()
		base = time.Now().Add(-time.Hour).Truncate(time.Second)
		d    = NewDetector(l, dir, WithExtensions(".txt"), WithSkipDirs("_versions"))
	)
	require.NoError(t, d.Scan(dir))

	writeFile(t, filepath.Join(dir, "about", "photo.jpg"), "binary", base)
	writeFile(t, filepath.Join(dir, "about", "_versions", "old.txt"), "old", base)
	changes, err := d.Changes()
	require.NoError(t, err)
	assert.Empty(t, changes)

	writeFile(t, filepath.Join(dir, "about", "default.txt"), "Title: About", base)
	changes, err = d.Changes()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(d.Dir(), "about")}, changes)

	require.NoError(t, d.ScanEach(changes))
	assert.Len(t, d.State(), 1)
}

func TestDetector_AddRemoveForget(t *testing.T) {
	var (
		l   = zaptest.NewLogger(t)
		dir = t.TempDir()
		d   = NewDetector(l, dir)
		now = time.Now()
	)
	d.Add(filepath.Join(dir, "a", "one.txt"), now)
	d.Add(filepath.Join(dir, "a", "b", "two.txt"), now)
	d.Add(filepath.Join(dir, "ab", "three.txt"), now)
	assert.Len(t, d.State(), 3)

	d.Remove(filepath.Join(dir, "ab", "three.txt"))
	assert.Len(t, d.State(), 2)

	d.Forget(filepath.Join(dir, "a"))
	assert.Empty(t, d.State())
}

func TestDetector_MissingRoot(t *testing.T) {
	d := NewDetector(zaptest.NewLogger(t), filepath.Join(t.TempDir(), "missing"))
	_, err := d.Changes()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, d.Scan(d.Dir()))
}
