// Package storage fetches static template and reference images by catalog path.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"go-shoe-studio/internal/catalog"
)

// MaxAssetSize bounds how much of a single asset is read.
const MaxAssetSize = 20 << 20

var (
	ErrNotFound    = errors.New("asset not found")
	ErrInvalidPath = errors.New("invalid asset path")
	ErrNotAnImage  = errors.New("asset is not a recognised image")
	ErrTooLarge    = errors.New("asset exceeds size limit")
)

// Blob is a fetched asset.
type Blob struct {
	Name     string
	MimeType string
	Data     []byte
}

// AssetFetcher resolves a catalog path such as /materials/leather1.jpeg.
type AssetFetcher interface {
	Fetch(ctx context.Context, assetPath string) (*Blob, error)
}

// cleanPath returns the rooted, cleaned form of p and rejects escapes.
func cleanPath(p string) (string, error) {
	if p == "" {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

func readBlob(assetPath string, r io.Reader) (*Blob, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", assetPath, err)
	}
	if len(data) > MaxAssetSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, assetPath)
	}
	mime := catalog.DetectMimeType(assetPath, data)
	if mime == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, assetPath)
	}
	return &Blob{Name: path.Base(assetPath), MimeType: mime, Data: data}, nil
}
