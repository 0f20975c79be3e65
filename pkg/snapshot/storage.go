package snapshot

import (
	"context"

	"github.com/pkg/errors"
)

const (
	StorageTypeFilesystem = "fs"
	StorageTypeBlob       = "blob"
)

var ErrInvalidKey = errors.New("invalid snapshot key")

// Storage persists snapshots by key. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Write stores data under key, replacing existing data
	Write(ctx context.Context, key string, data []byte) error
	// Read returns os.ErrNotExist for an unknown key
	Read(ctx context.Context, key string) ([]byte, error)
	// List keys with the given prefix, newest (alphabetically last) first
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete is a no-op for an unknown key
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewStorage opens the storage of the given type: a directory for "fs", a
// gocloud bucket url like "gs://bucket" for "blob"
func NewStorage(ctx context.Context, typ, dir, bucketURL, prefix string) (Storage, error) {
	switch typ {
	case "", StorageTypeFilesystem:
		return NewFilesystemStorage(dir)
	case StorageTypeBlob:
		return NewBlobStorage(ctx, bucketURL, prefix)
	default:
		return nil, errors.Errorf("unknown snapshot storage type %q", typ)
	}
}
