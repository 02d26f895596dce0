package export

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WriterDownloader copies downloads into an io.Writer.
type WriterDownloader struct {
	W io.Writer
}

// Download implements Downloader.
func (d WriterDownloader) Download(ctx context.Context, src DataSource, filename string, format DownloadFormat) error {
	_ = filename
	_ = format
	if d.W == nil {
		return NewError(KindDelivery, "writer is required", nil)
	}
	if src == nil {
		return NewError(KindDelivery, "data source is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	reader, err := src.Open()
	if err != nil {
		return NewError(KindDelivery, "open data source failed", err)
	}
	defer reader.Close()
	if _, err := io.Copy(d.W, reader); err != nil {
		return NewError(KindDelivery, "write download failed", err)
	}
	return nil
}

// FileDownloader writes downloads into Dir. Name overrides the generated
// file name. The file only appears once it is completely written.
type FileDownloader struct {
	Dir  string
	Name string

	written string
}

// Download implements Downloader.
func (d *FileDownloader) Download(ctx context.Context, src DataSource, filename string, format DownloadFormat) error {
	_ = format
	if d == nil {
		return NewError(KindDelivery, "file downloader is nil", nil)
	}
	if src == nil {
		return NewError(KindDelivery, "data source is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	name := d.Name
	if name == "" {
		name = filename
	}
	if name == "" {
		return NewError(KindDelivery, "file name is required", nil)
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewError(KindDelivery, "create output dir failed", err)
	}

	tmp, err := os.CreateTemp(dir, ".gridexport-*")
	if err != nil {
		return NewError(KindDelivery, "create output file failed", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	reader, err := src.Open()
	if err != nil {
		return NewError(KindDelivery, "open data source failed", err)
	}
	defer reader.Close()
	if _, err := io.Copy(tmp, reader); err != nil {
		return NewError(KindDelivery, "write output file failed", err)
	}
	if err := tmp.Close(); err != nil {
		return NewError(KindDelivery, "close output file failed", err)
	}
	target := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return NewError(KindDelivery, "move output file failed", err)
	}
	d.written = target
	return nil
}

// Path returns the last written file path.
func (d *FileDownloader) Path() string {
	if d == nil {
		return ""
	}
	return d.written
}

// StoreDownloader delivers downloads into an ArtifactStore under a generated key.
type StoreDownloader struct {
	Store  ArtifactStore
	Prefix string
	Now    func() time.Time
	KeyGen func() string

	mu   sync.Mutex
	refs []ArtifactRef
}

// NewStoreDownloader creates a downloader backed by store.
func NewStoreDownloader(store ArtifactStore, prefix string) *StoreDownloader {
	return &StoreDownloader{Store: store, Prefix: prefix, Now: time.Now, KeyGen: uuid.NewString}
}

// Download implements Downloader.
func (d *StoreDownloader) Download(ctx context.Context, src DataSource, filename string, format DownloadFormat) error {
	if d == nil || d.Store == nil {
		return NewError(KindDelivery, "artifact store is required", nil)
	}
	if src == nil {
		return NewError(KindDelivery, "data source is required", nil)
	}

	keyGen := d.KeyGen
	if keyGen == nil {
		keyGen = uuid.NewString
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	key := path.Join(d.Prefix, keyGen(), filename)
	reader, err := src.Open()
	if err != nil {
		return NewError(KindDelivery, "open data source failed", err)
	}
	defer reader.Close()

	ref, err := d.Store.Put(ctx, key, reader, ArtifactMeta{
		ContentType: format.ContentType,
		Size:        src.Size(),
		Filename:    filename,
		Format:      format.Format,
		CreatedAt:   now(),
	})
	if err != nil {
		return NewError(KindDelivery, "store artifact failed", err)
	}

	d.mu.Lock()
	d.refs = append(d.refs, ref)
	d.mu.Unlock()
	return nil
}

// Artifacts returns the artifacts stored so far.
func (d *StoreDownloader) Artifacts() []ArtifactRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ArtifactRef, len(d.refs))
	copy(out, d.refs)
	return out
}

// Last returns the most recently stored artifact.
func (d *StoreDownloader) Last() (ArtifactRef, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.refs) == 0 {
		return ArtifactRef{}, false
	}
	return d.refs[len(d.refs)-1], true
}
