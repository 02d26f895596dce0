package storefs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/goliatone/go-gridexport/export"
)

const metaSuffix = ".meta.json"

// Store keeps export artifacts on disk. Metadata lives next to each
// artifact in a <name>.meta.json sidecar.
type Store struct {
	Root string
	Now  func() time.Time
}

// NewStore creates a filesystem-backed artifact store.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

type metaFile struct {
	ContentType string        `json:"content_type,omitempty"`
	Size        int64         `json:"size"`
	Filename    string        `json:"filename,omitempty"`
	Format      export.Format `json:"format,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Put stores an artifact on disk. The artifact is written to a temp file and
// renamed into place.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta export.ArtifactMeta) (export.ArtifactRef, error) {
	if err := s.check(ctx, key); err != nil {
		return export.ArtifactRef{}, err
	}
	if r == nil {
		return export.ArtifactRef{}, export.NewError(export.KindValidation, "artifact reader is required", nil)
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return export.ArtifactRef{}, err
	}

	dir := filepath.Dir(pathOnDisk)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return export.ArtifactRef{}, export.NewError(export.KindDelivery, "artifact dir create failed", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return export.ArtifactRef{}, export.NewError(export.KindDelivery, "artifact temp file create failed", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return export.ArtifactRef{}, export.NewError(export.KindDelivery, "artifact write failed", err)
	}
	if err := tmp.Sync(); err != nil {
		return export.ArtifactRef{}, export.NewError(export.KindDelivery, "artifact sync failed", err)
	}
	if err := tmp.Close(); err != nil {
		return export.ArtifactRef{}, export.NewError(export.KindDelivery, "artifact close failed", err)
	}
	if err := os.Rename(tmp.Name(), pathOnDisk); err != nil {
		return export.ArtifactRef{}, export.NewError(export.KindDelivery, "artifact rename failed", err)
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(pathOnDisk))
	}
	if meta.Filename == "" {
		meta.Filename = path.Base(key)
	}

	if err := s.writeMeta(pathOnDisk, meta); err != nil {
		return export.ArtifactRef{}, err
	}
	return export.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact from disk.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, export.ArtifactMeta, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, export.ArtifactMeta{}, err
	}

	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return nil, export.ArtifactMeta{}, err
	}

	file, err := os.Open(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, export.ArtifactMeta{}, export.NewError(export.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, export.ArtifactMeta{}, export.NewError(export.KindDelivery, "artifact open failed", err)
	}

	meta := s.readMeta(pathOnDisk)
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(pathOnDisk))
	}
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	return file, meta, nil
}

// Delete removes an artifact and its metadata. Missing artifacts are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	pathOnDisk, err := s.resolvePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(pathOnDisk); err != nil && !os.IsNotExist(err) {
		return export.NewError(export.KindDelivery, "artifact delete failed", err)
	}
	_ = os.Remove(pathOnDisk + metaSuffix)
	return nil
}

// Keys lists stored artifact keys under prefix in lexical order.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if s == nil {
		return nil, export.NewError(export.KindInternal, "store is nil", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, export.NewError(export.KindValidation, "invalid store root", err)
	}

	keys := []string{}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return fs.SkipAll
			}
			return err
		}
		name := d.Name()
		if d.IsDir() || strings.HasSuffix(name, metaSuffix) || strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, export.NewError(export.KindDelivery, "artifact listing failed", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) check(ctx context.Context, key string) error {
	if s == nil {
		return export.NewError(export.KindInternal, "store is nil", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if s.Root == "" {
		return export.NewError(export.KindValidation, "store root is required", nil)
	}
	if strings.TrimSpace(key) == "" {
		return export.NewError(export.KindValidation, "artifact key is required", nil)
	}
	return nil
}

func (s *Store) resolvePath(key string) (string, error) {
	clean := path.Clean("/" + key)
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", export.NewError(export.KindValidation, "invalid artifact key", nil)
	}
	if strings.HasSuffix(rel, metaSuffix) {
		return "", export.NewError(export.KindValidation, "artifact key uses a reserved suffix", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", export.NewError(export.KindValidation, "invalid store root", err)
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", export.NewError(export.KindValidation, "artifact key escapes root", nil)
	}
	return target, nil
}

func (s *Store) writeMeta(pathOnDisk string, meta export.ArtifactMeta) error {
	payload, err := json.Marshal(metaFile{
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Filename:    meta.Filename,
		Format:      meta.Format,
		CreatedAt:   meta.CreatedAt,
	})
	if err != nil {
		return export.NewError(export.KindInternal, "artifact meta encode failed", err)
	}
	if err := os.WriteFile(pathOnDisk+metaSuffix, payload, 0o644); err != nil {
		return export.NewError(export.KindDelivery, "artifact meta write failed", err)
	}
	return nil
}

func (s *Store) readMeta(pathOnDisk string) export.ArtifactMeta {
	data, err := os.ReadFile(pathOnDisk + metaSuffix)
	if err != nil {
		return export.ArtifactMeta{}
	}
	var meta metaFile
	if err := json.Unmarshal(data, &meta); err != nil {
		return export.ArtifactMeta{}
	}
	return export.ArtifactMeta{
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Filename:    meta.Filename,
		Format:      meta.Format,
		CreatedAt:   meta.CreatedAt,
	}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

var _ export.ArtifactStore = (*Store)(nil)
