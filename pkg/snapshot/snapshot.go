// Package snapshot keeps json exports of the site index. Snapshots are written
// only, the index is always rebuilt from its backend.
package snapshot

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	KeyPrefix  = "flatfile-snapshot-"
	KeySuffix  = ".json"
	CurrentKey = KeyPrefix + "current" + KeySuffix

	// fixed width so that keys sort chronologically
	keyTimeLayout = "20060102T150405.000000000Z"
)

type (
	// Exporter writes a json export of itself
	Exporter interface {
		WriteExport(w io.Writer) error
	}
	// History a current snapshot plus a limited number of timestamped ones
	History struct {
		l       *zap.Logger
		storage Storage
		dir     string
		limit   int
		now     func() time.Time
		lock    sync.RWMutex
	}
	Option func(*History)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithLimit number of timestamped snapshots to keep
func WithLimit(v int) Option {
	return func(o *History) {
		o.limit = v
	}
}

// WithDir directory of the default filesystem storage
func WithDir(v string) Option {
	return func(o *History) {
		o.dir = v
	}
}

func WithStorage(v Storage) Option {
	return func(o *History) {
		o.storage = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, opts ...Option) (*History, error) {
	inst := &History{
		l:     l.Named("snapshot"),
		dir:   "/var/lib/flatfileserver",
		limit: 2,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.storage == nil {
		storage, err := NewFilesystemStorage(inst.dir)
		if err != nil {
			return nil, err
		}
		inst.storage = storage
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Persist exports e and adds it as the current snapshot
func (h *History) Persist(ctx context.Context, e Exporter) error {
	var buf bytes.Buffer
	if err := e.WriteExport(&buf); err != nil {
		return err
	}
	return h.Add(ctx, buf.Bytes())
}

// Add stores data as a timestamped and as the current snapshot, then drops
// timestamped snapshots beyond the limit
func (h *History) Add(ctx context.Context, data []byte) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	key := KeyPrefix + h.now().UTC().Format(keyTimeLayout) + KeySuffix
	h.l.Debug("writing snapshot", zap.String("key", key), zap.Int("size", len(data)))

	if err := h.storage.Write(ctx, key, data); err != nil {
		return errors.Wrap(err, "failed to write snapshot")
	}
	if err := h.storage.Write(ctx, CurrentKey, data); err != nil {
		return errors.Wrap(err, "failed to write current snapshot")
	}
	return errors.Wrap(h.cleanup(ctx), "failed to clean up snapshots")
}

// Current copies the current snapshot to w, os.ErrNotExist if there is none
func (h *History) Current(ctx context.Context, w io.Writer) error {
	h.lock.RLock()
	defer h.lock.RUnlock()
	data, err := h.storage.Read(ctx, CurrentKey)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Keys timestamped snapshot keys, newest first
func (h *History) Keys(ctx context.Context) ([]string, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.keys(ctx)
}

func (h *History) Close() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.storage.Close()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *History) keys(ctx context.Context) ([]string, error) {
	all, err := h.storage.List(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, key := range all {
		if key != CurrentKey && strings.HasSuffix(key, KeySuffix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (h *History) cleanup(ctx context.Context) error {
	keys, err := h.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) <= h.limit {
		return nil
	}
	var errs error
	for _, key := range keys[h.limit:] {
		h.l.Debug("removing outdated snapshot", zap.String("key", key))
		errs = multierr.Append(errs, h.storage.Delete(ctx, key))
	}
	return errs
}
