package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/filmscatalog/backend/internal/config"
	"github.com/filmscatalog/backend/pkg/apperr"
	"github.com/google/uuid"
)

// allowedExtensions is the closed set of accepted poster extensions.
// Keys are the canonical (lowercase) forms.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// PosterStore keeps poster images on local disk under cfg.PosterStoragePath.
// Objects are named {film-id-hex}{ext} and exposed at the public logical
// path cfg.PosterPublicPath (default /filmPics).
type PosterStore struct {
	cfg *config.Config
}

func NewPosterStore(cfg *config.Config) *PosterStore {
	// ensure local path exists
	_ = os.MkdirAll(cfg.PosterStoragePath, 0o755)
	return &PosterStore{cfg: cfg}
}

// CanonicalExtension lowercases ext and checks it against the allowed set.
func CanonicalExtension(ext string) (string, error) {
	canonical := strings.ToLower(strings.TrimSpace(ext))
	if !allowedExtensions[canonical] {
		return "", apperr.Invalid("file", fmt.Sprintf("unsupported poster extension: %q (allowed: .jpg, .jpeg, .png, .gif)", ext))
	}
	return canonical, nil
}

// ObjectName derives the storage name for a film id and canonical extension.
func ObjectName(id uuid.UUID, ext string) string {
	return hex.EncodeToString(id[:]) + ext
}

// LogicalPath builds the public path under which an object is served.
func (s *PosterStore) LogicalPath(name string) string {
	return path.Join(s.cfg.PosterPublicPath, name)
}

// AbsolutePath resolves a logical path to a file inside the storage root.
// Only the basename is used, so a crafted path cannot escape the root.
func (s *PosterStore) AbsolutePath(logicalPath string) string {
	return filepath.Join(s.cfg.PosterStoragePath, path.Base(logicalPath))
}

// Exists reports whether an object is present at the logical path.
func (s *PosterStore) Exists(logicalPath string) bool {
	if logicalPath == "" {
		return false
	}
	_, err := os.Stat(s.AbsolutePath(logicalPath))
	return err == nil
}

// Save writes poster content for a film and returns the logical path.
// The extension must be in the allowed set and the target location must
// be free: create never silently overwrites.
func (s *PosterStore) Save(ctx context.Context, id uuid.UUID, ext string, content io.Reader) (string, error) {
	canonical, err := CanonicalExtension(ext)
	if err != nil {
		return "", err
	}

	name := ObjectName(id, canonical)
	absPath := filepath.Join(s.cfg.PosterStoragePath, name)
	if _, err := os.Stat(absPath); err == nil {
		return "", fmt.Errorf("poster %s: %w", name, apperr.ErrDuplicateAsset)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat poster location: %w", err)
	}

	if err := s.writeAtomic(absPath, content); err != nil {
		return "", err
	}

	return s.LogicalPath(name), nil
}

// Replace swaps a film's poster: validates the new extension first, then
// deletes the old object (missing tolerated) and saves the new content.
// A disallowed extension fails before the old asset is touched.
func (s *PosterStore) Replace(ctx context.Context, id uuid.UUID, oldPath, newExt string, content io.Reader) (string, error) {
	canonical, err := CanonicalExtension(newExt)
	if err != nil {
		return "", err
	}

	if err := s.Delete(ctx, oldPath); err != nil {
		return "", err
	}

	return s.Save(ctx, id, canonical, content)
}

// Delete removes the object at the logical path. Missing files are
// tolerated; deletion is idempotent. An empty path is a no-op.
func (s *PosterStore) Delete(ctx context.Context, logicalPath string) error {
	if logicalPath == "" {
		return nil
	}
	if err := os.Remove(s.AbsolutePath(logicalPath)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete poster %s: %w", logicalPath, err)
	}
	return nil
}

// writeAtomic streams content to a .part file and renames it into place.
func (s *PosterStore) writeAtomic(absPath string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return err
	}

	tmp := absPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := f.Sync(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}
