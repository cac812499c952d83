package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pmalinen/EncryptBin/config"
	"github.com/pmalinen/EncryptBin/internal/token"
	"github.com/pmalinen/EncryptBin/metrics"
	"github.com/pmalinen/EncryptBin/models"
	"github.com/pmalinen/EncryptBin/storage"
)

// PasteService implements the paste lifecycle: save, read, title update
// and delete, with expiry and burn-after-read applied uniformly over
// whichever storage backend is configured. It holds no per-paste state
// between calls; every call re-reads from the backend.
type PasteService struct {
	store    storage.PasteStore
	auth     EditAuthorizer
	maxBytes int64
	now      func() int64
}

// NewPasteService creates a new paste service.
func NewPasteService(store storage.PasteStore, cfg *config.Config) *PasteService {
	return &PasteService{
		store:    store,
		auth:     NewAuthorizer(cfg.EditTokens),
		maxBytes: cfg.MaxPasteBytes,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// CreateRequest carries the input for a new paste. Exactly one of
// Plaintext and Encrypted must be set.
type CreateRequest struct {
	Plaintext     string
	Encrypted     *models.EncryptedPayload
	Title         string
	ExpiresChoice string
	BurnAfter     bool
}

// CreateResult is the caller's handle on a freshly stored paste.
type CreateResult struct {
	ID      string
	EditKey string
	Expires int64
}

// PasteView is a retrieved paste: its metadata plus the raw content blob.
type PasteView struct {
	Meta    *models.Paste
	Content []byte
}

// Create validates the payload, persists content and metadata, and
// returns the new id with its edit key. Oversized input is rejected
// before any storage I/O.
func (s *PasteService) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	var content []byte
	encrypted := req.Encrypted != nil

	if encrypted {
		if req.Encrypted.CiphertextB64 == "" || req.Encrypted.IVB64 == "" {
			return nil, models.ErrInvalidInput
		}
		if req.Encrypted.Alg == "" {
			req.Encrypted.Alg = "AES-GCM"
		}
		data, err := json.Marshal(req.Encrypted)
		if err != nil {
			return nil, models.ErrInvalidInput
		}
		content = data
	} else {
		if strings.TrimSpace(req.Plaintext) == "" {
			return nil, models.ErrInvalidInput
		}
		content = []byte(req.Plaintext)
	}

	if int64(len(content)) > s.maxBytes {
		return nil, models.ErrPayloadTooLarge
	}

	id, err := token.NewPasteID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate paste id: %w", err)
	}
	created := s.now()
	paste := &models.Paste{
		ID:        id,
		Title:     models.TruncateTitle(req.Title),
		Created:   created,
		Expires:   models.ComputeExpiry(created, req.ExpiresChoice),
		Encrypted: encrypted,
		BurnAfter: req.BurnAfter,
		EditKey:   token.NewEditKey(),
	}
	if encrypted {
		paste.Alg = req.Encrypted.Alg
	}

	if err := s.store.StoreContent(ctx, id, content); err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}
	if err := s.store.StoreMeta(ctx, paste); err != nil {
		return nil, fmt.Errorf("failed to store metadata: %w", err)
	}

	metrics.PastesCreated.Inc()
	return &CreateResult{ID: id, EditKey: paste.EditKey, Expires: paste.Expires}, nil
}

// Read retrieves a paste. Absent, expired and burned pastes are all
// reported as ErrNotFound. Expired pastes found on the read path are
// deleted in passing; burn-after-read pastes are deleted before the
// content is returned. Two concurrent readers of a burn-after-read paste
// may both see the content; the guarantee is best-effort, not atomic.
func (s *PasteService) Read(ctx context.Context, id string) (*PasteView, error) {
	meta, err := s.store.GetMeta(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve metadata: %w", err)
	}
	if meta == nil {
		return nil, models.ErrNotFound
	}
	if meta.IsExpired(s.now()) {
		if err := s.store.Delete(ctx, id); err != nil {
			log.Printf("[WARN] Read: failed to lazily delete expired paste %s: %v", id, err)
		}
		metrics.PastesExpired.Inc()
		return nil, models.ErrNotFound
	}

	content, err := s.store.GetContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve content: %w", err)
	}
	if content == nil {
		return nil, models.ErrNotFound
	}

	if meta.BurnAfter {
		// Delete before returning so this call leaves nothing behind.
		if err := s.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to burn paste: %w", err)
		}
		metrics.PastesBurned.Inc()
	}

	metrics.PastesRead.Inc()
	return &PasteView{Meta: meta, Content: content}, nil
}

// UpdateTitle changes a paste's title, the only mutable metadata field.
// The presented token is checked by the configured authorization policy.
func (s *PasteService) UpdateTitle(ctx context.Context, id, newTitle, presented string) error {
	meta, err := s.store.GetMeta(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to retrieve metadata: %w", err)
	}
	if meta == nil {
		return models.ErrNotFound
	}
	if meta.IsExpired(s.now()) {
		if err := s.store.Delete(ctx, id); err != nil {
			log.Printf("[WARN] UpdateTitle: failed to lazily delete expired paste %s: %v", id, err)
		}
		return models.ErrNotFound
	}
	if !s.auth.Authorize(meta, presented) {
		return models.ErrUnauthorized
	}

	meta.Title = models.TruncateTitle(newTitle)
	if err := s.store.StoreMeta(ctx, meta); err != nil {
		return fmt.Errorf("failed to store metadata: %w", err)
	}
	return nil
}

// Delete removes a paste outright. Used by the lazy-expiry and burn paths
// internally and exposed for administrative use.
func (s *PasteService) Delete(ctx context.Context, id string) error {
	meta, err := s.store.GetMeta(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to retrieve metadata: %w", err)
	}
	if meta == nil {
		return models.ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete paste: %w", err)
	}
	return nil
}

// DeleteAuthorized is the externally exposed delete: the presented token
// must pass the same policy that guards title updates.
func (s *PasteService) DeleteAuthorized(ctx context.Context, id, presented string) error {
	meta, err := s.store.GetMeta(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to retrieve metadata: %w", err)
	}
	if meta == nil {
		return models.ErrNotFound
	}
	if !s.auth.Authorize(meta, presented) {
		return models.ErrUnauthorized
	}
	return s.Delete(ctx, id)
}
