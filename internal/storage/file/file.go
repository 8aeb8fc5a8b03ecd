// Package file implements directory-based image storage
package file

import (
	"context"
	"os"
	"path/filepath"
)

// Provider implements a file-based image storage
type Provider struct {
	path string
}

// New returns a new Provider instance rooted at the given directory
func New(path string) (*Provider, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	return &Provider{
		path,
	}, nil
}

// Put writes the image data under the given key
func (p *Provider) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return os.WriteFile(filepath.Join(p.path, key), data, 0o644)
}
