package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalAssetFetcher serves assets from a directory, typically the frontend's
// public folder.
type LocalAssetFetcher struct {
	root string
}

func NewLocalAssetFetcher(root string) *LocalAssetFetcher {
	return &LocalAssetFetcher{root: root}
}

func (l *LocalAssetFetcher) Fetch(ctx context.Context, assetPath string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := cleanPath(assetPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(l.root, filepath.FromSlash(p)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	return readBlob(p, f)
}
