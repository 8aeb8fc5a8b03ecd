// Package storage provides destinations for fetched map images
package storage

import (
	"context"
)

// Provider is an interface for storing fetched images
type Provider interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
