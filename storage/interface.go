package storage

import (
	"context"

	"github.com/pmalinen/EncryptBin/models"
)

// PasteStore defines the interface for paste storage backends.
//
// A paste is two blobs addressed by its id: an opaque content blob and a
// JSON metadata blob. Absence is reported as (nil, nil), never as an
// error; errors mean the backend itself failed. Implementations must be
// safe for concurrent use and must keep Delete idempotent, since lazy
// expiry, burn-after-read and the cleanup sweeper may all race on the
// same id.
type PasteStore interface {
	// StoreMeta writes the metadata blob, overwriting any previous one.
	StoreMeta(ctx context.Context, paste *models.Paste) error

	// GetMeta retrieves the metadata blob, or (nil, nil) if absent.
	GetMeta(ctx context.Context, id string) (*models.Paste, error)

	// StoreContent writes the raw content blob for a paste.
	StoreContent(ctx context.Context, id string, content []byte) error

	// GetContent retrieves the raw content blob, or (nil, nil) if absent.
	GetContent(ctx context.Context, id string) ([]byte, error)

	// Delete removes both blobs. Deleting an absent id succeeds silently.
	Delete(ctx context.Context, id string) error

	// List enumerates all stored paste ids. Used by the cleanup sweeper.
	List(ctx context.Context) ([]string, error)

	// Close releases the backend connection, if any.
	Close() error
}
