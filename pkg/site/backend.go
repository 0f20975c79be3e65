package site

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNoBackend = errors.New("site has no backend")

// Backend content source of a site
type Backend interface {
	// Load reads the given directories, or everything if none are given, into idx
	Load(ctx context.Context, idx *Index, changed []string) error
	// Changes lists the directories that need to be loaded again
	Changes(ctx context.Context, idx *Index) ([]string, error)
}
