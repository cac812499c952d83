package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pmalinen/EncryptBin/config"
	"github.com/pmalinen/EncryptBin/models"
	"github.com/pmalinen/EncryptBin/storage"
)

func newTestService(t *testing.T, cfg *config.Config) (*PasteService, storage.PasteStore) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	store, err := storage.NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create filesystem store: %v", err)
	}
	return NewPasteService(store, cfg), store
}

func TestCreateAndReadPlaintext(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateRequest{
		Plaintext:     "hello world",
		ExpiresChoice: models.ExpireNever,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.ID == "" || result.EditKey == "" {
		t.Fatalf("expected id and edit key, got %+v", result)
	}
	if result.Expires != 0 {
		t.Errorf("expected no expiry, got %d", result.Expires)
	}

	view, err := svc.Read(ctx, result.ID)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(view.Content) != "hello world" {
		t.Errorf("expected content %q, got %q", "hello world", view.Content)
	}
	if view.Meta.Encrypted {
		t.Error("expected encrypted=false")
	}
}

func TestCreateAndReadEncrypted(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	fixedNow := int64(1700000000)
	svc.now = func() int64 { return fixedNow }

	result, err := svc.Create(ctx, CreateRequest{
		Encrypted: &models.EncryptedPayload{
			CiphertextB64: "ZHVtbXk=",
			IVB64:         "aXY=",
			Alg:           "AES-GCM",
		},
		Title:         "secret notes",
		ExpiresChoice: models.ExpireOneDay,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.Expires != fixedNow+86400 {
		t.Errorf("expected expires %d, got %d", fixedNow+86400, result.Expires)
	}

	view, err := svc.Read(ctx, result.ID)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !view.Meta.Encrypted || view.Meta.Alg != "AES-GCM" {
		t.Errorf("expected encrypted AES-GCM meta, got %+v", view.Meta)
	}
	var payload models.EncryptedPayload
	if err := json.Unmarshal(view.Content, &payload); err != nil {
		t.Fatalf("content is not an encrypted payload: %v", err)
	}
	if payload.CiphertextB64 != "ZHVtbXk=" || payload.IVB64 != "aXY=" {
		t.Errorf("payload did not round-trip: %+v", payload)
	}
}

func TestReadExpiredDeletesAndNotFound(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	created := int64(1700000000)
	svc.now = func() int64 { return created }

	result, err := svc.Create(ctx, CreateRequest{
		Plaintext:     "short lived",
		ExpiresChoice: models.ExpireOneDay,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// One second before expiry: still readable
	svc.now = func() int64 { return created + 86400 }
	if _, err := svc.Read(ctx, result.ID); err != nil {
		t.Fatalf("Read at expiry instant failed: %v", err)
	}

	// One second past expiry: gone, and physically deleted
	svc.now = func() int64 { return created + 86401 }
	if _, err := svc.Read(ctx, result.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound past expiry, got %v", err)
	}
	meta, err := store.GetMeta(ctx, result.ID)
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if meta != nil {
		t.Error("expected expired paste to be lazily deleted")
	}
}

func TestBurnAfterRead(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateRequest{
		Plaintext:     "secret",
		ExpiresChoice: models.ExpireNever,
		BurnAfter:     true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	view, err := svc.Read(ctx, result.ID)
	if err != nil {
		t.Fatalf("first Read failed: %v", err)
	}
	if string(view.Content) != "secret" {
		t.Errorf("expected content %q, got %q", "secret", view.Content)
	}

	// Deleted synchronously by the first read
	meta, err := store.GetMeta(ctx, result.ID)
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if meta != nil {
		t.Error("expected burned paste to be deleted after first read")
	}
	if _, err := svc.Read(ctx, result.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second read, got %v", err)
	}
}

func TestCreateRejectsOversized(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxPasteBytes = 16
	svc, store := newTestService(t, cfg)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{
		Plaintext:     "this is definitely longer than sixteen bytes",
		ExpiresChoice: models.ExpireNever,
	})
	if !errors.Is(err, models.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}

	// Rejected before any I/O: nothing stored
	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty store after rejected create, got %v", ids)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"empty plaintext", CreateRequest{Plaintext: ""}},
		{"whitespace plaintext", CreateRequest{Plaintext: "   \n\t"}},
		{"missing ciphertext", CreateRequest{Encrypted: &models.EncryptedPayload{IVB64: "aXY="}}},
		{"missing iv", CreateRequest{Encrypted: &models.EncryptedPayload{CiphertextB64: "ZHVtbXk="}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.req); !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateDefaultsAlg(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateRequest{
		Encrypted: &models.EncryptedPayload{CiphertextB64: "ZHVtbXk=", IVB64: "aXY="},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	view, err := svc.Read(ctx, result.ID)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if view.Meta.Alg != "AES-GCM" {
		t.Errorf("expected default alg AES-GCM, got %q", view.Meta.Alg)
	}
}

func TestUpdateTitle(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateRequest{
		Plaintext:     "body",
		Title:         "before",
		ExpiresChoice: models.ExpireOneMonth,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	orig, err := store.GetMeta(ctx, result.ID)
	if err != nil || orig == nil {
		t.Fatalf("GetMeta failed: %v", err)
	}

	// Wrong token leaves the record unchanged
	err = svc.UpdateTitle(ctx, result.ID, "hijacked", "wrong-token")
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	unchanged, _ := store.GetMeta(ctx, result.ID)
	if unchanged.Title != "before" {
		t.Errorf("title changed on unauthorized update: %q", unchanged.Title)
	}

	// Correct token changes only the title
	if err := svc.UpdateTitle(ctx, result.ID, "after", result.EditKey); err != nil {
		t.Fatalf("UpdateTitle failed: %v", err)
	}
	updated, _ := store.GetMeta(ctx, result.ID)
	if updated.Title != "after" {
		t.Errorf("expected title %q, got %q", "after", updated.Title)
	}
	if updated.Created != orig.Created || updated.Expires != orig.Expires ||
		updated.EditKey != orig.EditKey || updated.Encrypted != orig.Encrypted {
		t.Errorf("update touched more than the title: %+v vs %+v", updated, orig)
	}
	content, _ := store.GetContent(ctx, result.ID)
	if string(content) != "body" {
		t.Errorf("content changed on title update: %q", content)
	}
}

func TestUpdateTitleTruncates(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateRequest{Plaintext: "body"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	long := strings.Repeat("t", 300)
	if err := svc.UpdateTitle(ctx, result.ID, long, result.EditKey); err != nil {
		t.Fatalf("UpdateTitle failed: %v", err)
	}
	meta, _ := store.GetMeta(ctx, result.ID)
	if n := utf8.RuneCountInString(meta.Title); n != models.MaxTitleLen {
		t.Errorf("expected title truncated to %d characters, got %d", models.MaxTitleLen, n)
	}
}

func TestUpdateTitleNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil)
	err := svc.UpdateTitle(context.Background(), "missing000000", "t", "k")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSharedTokenMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EditTokens = []string{"ops-token-1", "ops-token-2"}
	svc, _ := newTestService(t, cfg)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateRequest{Plaintext: "body"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// In allowlist mode the per-paste key is not a valid credential
	if err := svc.UpdateTitle(ctx, result.ID, "x", result.EditKey); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected per-paste key rejected in allowlist mode, got %v", err)
	}
	if err := svc.UpdateTitle(ctx, result.ID, "x", "ops-token-2"); err != nil {
		t.Errorf("expected allowlist token accepted, got %v", err)
	}
}

func TestDeleteAuthorized(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateRequest{Plaintext: "body"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.DeleteAuthorized(ctx, result.ID, "bogus"); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.DeleteAuthorized(ctx, result.ID, result.EditKey); err != nil {
		t.Fatalf("DeleteAuthorized failed: %v", err)
	}
	if _, err := svc.Read(ctx, result.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, result.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting absent paste, got %v", err)
	}
}
