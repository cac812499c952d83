package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pmalinen/EncryptBin/models"
)

const (
	contentFile = "content.txt"
	metaFile    = "meta.json"
)

// FilesystemStore keeps each paste in its own directory under dataDir,
// as a content blob next to a meta.json blob.
type FilesystemStore struct {
	dataDir string
}

// NewFilesystemStore creates a filesystem-backed paste store rooted at
// dataDir, creating the directory if needed.
func NewFilesystemStore(dataDir string) (*FilesystemStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory must not be empty")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dataDir, err)
	}
	return &FilesystemStore{dataDir: dataDir}, nil
}

func (fs *FilesystemStore) pasteDir(id string) string {
	return filepath.Join(fs.dataDir, id)
}

// writeFileAtomic writes data to a temp file in the paste directory and
// renames it into place, so a crash mid-write never leaves a blob that
// reads back partially.
func (fs *FilesystemStore) writeFileAtomic(id, name string, data []byte) error {
	dir := fs.pasteDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func (fs *FilesystemStore) StoreMeta(ctx context.Context, paste *models.Paste) error {
	metaData, err := json.MarshalIndent(paste, "", "  ")
	if err != nil {
		return err
	}
	if err := fs.writeFileAtomic(paste.ID, metaFile, metaData); err != nil {
		log.Printf("[ERROR] FS StoreMeta: failed to write metadata for %s: %v", paste.ID, err)
		return err
	}
	return nil
}

func (fs *FilesystemStore) GetMeta(ctx context.Context, id string) (*models.Paste, error) {
	metaData, err := os.ReadFile(filepath.Join(fs.pasteDir(id), metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		log.Printf("[ERROR] FS GetMeta: failed to read metadata for %s: %v", id, err)
		return nil, err
	}
	var paste models.Paste
	if err := json.Unmarshal(metaData, &paste); err != nil {
		log.Printf("[ERROR] FS GetMeta: failed to unmarshal metadata for %s: %v", id, err)
		return nil, err
	}
	return &paste, nil
}

func (fs *FilesystemStore) StoreContent(ctx context.Context, id string, content []byte) error {
	if err := fs.writeFileAtomic(id, contentFile, content); err != nil {
		log.Printf("[ERROR] FS StoreContent: failed to write content for %s: %v", id, err)
		return err
	}
	return nil
}

func (fs *FilesystemStore) GetContent(ctx context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(fs.pasteDir(id), contentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		log.Printf("[ERROR] FS GetContent: failed to read content for %s: %v", id, err)
		return nil, err
	}
	return data, nil
}

// Delete removes the whole paste directory. Absent ids are a no-op.
func (fs *FilesystemStore) Delete(ctx context.Context, id string) error {
	if err := os.RemoveAll(fs.pasteDir(id)); err != nil {
		log.Printf("[ERROR] FS Delete: failed to remove %s: %v", id, err)
		return err
	}
	return nil
}

func (fs *FilesystemStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(fs.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

func (fs *FilesystemStore) Close() error {
	return nil
}
