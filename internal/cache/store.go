package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cachedplayer/cachedplayer/filesystem"
)

// BlobStore holds cached media artifacts keyed by normalized source URL.
type BlobStore interface {
	// PresentPath returns the local path of the artifact for key, if one is stored.
	PresentPath(key string) (string, bool, error)

	// Fetch downloads key into the store. Callers run it detached.
	Fetch(ctx context.Context, key string, headers map[string]string) error

	// Evict removes the artifact for key. Evicting an absent key is not an error.
	Evict(key string) error

	// Clear removes every artifact.
	Clear() error
}

// FileStore is a BlobStore writing one file per key into a directory of the virtualized filesystem.
type FileStore struct {
	dir    string
	client *http.Client
}

// NewFileStore returns a store rooted at dir that downloads with client.
func NewFileStore(dir string, client *http.Client) *FileStore {
	return &FileStore{dir: dir, client: client}
}

// Dir returns the directory holding the artifacts.
func (s *FileStore) Dir() string {
	return s.dir
}

// pathFor derives a stable file name from the key, keeping a short extension so
// players can still sniff the container from the name.
func (s *FileStore) pathFor(key string) string {
	hash := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(hash[:])

	if u, err := url.Parse(key); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		if len(ext) > 1 && len(ext) <= 6 && !strings.ContainsAny(ext, `/\`) {
			name += ext
		}
	}

	return filepath.Join(s.dir, name)
}

func (s *FileStore) PresentPath(key string) (string, bool, error) {
	p := s.pathFor(key)

	info, err := filesystem.API().Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if info.IsDir() || info.Size() == 0 {
		return "", false, nil
	}

	return p, true, nil
}

// Fetch writes to a temporary sibling first and renames it into place,
// so a concurrent PresentPath never sees a partial artifact.
func (s *FileStore) Fetch(ctx context.Context, key string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	api := filesystem.API()
	if err := api.MkdirAll(s.dir, os.ModePerm); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	final := s.pathFor(key)
	tmp, err := api.TempFile(s.dir, filepath.Base(final)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = api.Remove(tmpPath)
		return fmt.Errorf("write artifact: %w", err)
	}

	if err := api.Rename(tmpPath, final); err != nil {
		_ = api.Remove(tmpPath)
		return fmt.Errorf("commit artifact: %w", err)
	}

	return nil
}

func (s *FileStore) Evict(key string) error {
	err := filesystem.API().Remove(s.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) Clear() error {
	api := filesystem.API()
	if err := api.RemoveAll(s.dir); err != nil {
		return err
	}
	return api.MkdirAll(s.dir, os.ModePerm)
}
