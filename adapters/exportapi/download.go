package exportapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-gridexport/export"
)

// DefaultMaxBufferBytes is the fallback buffer limit when streaming is unavailable.
const DefaultMaxBufferBytes int64 = 8 * 1024 * 1024

// ResponseDownloader delivers exports as attachment responses.
type ResponseDownloader struct {
	Res            Response
	MaxBufferBytes int64
}

// NewResponseDownloader creates a downloader writing to res.
func NewResponseDownloader(res Response) ResponseDownloader {
	return ResponseDownloader{Res: res, MaxBufferBytes: DefaultMaxBufferBytes}
}

// Download implements export.Downloader.
func (d ResponseDownloader) Download(ctx context.Context, src export.DataSource, filename string, format export.DownloadFormat) error {
	if d.Res == nil {
		return export.NewError(export.KindDelivery, "response is required", nil)
	}
	if src == nil {
		return export.NewError(export.KindDelivery, "data source is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	maxBuffer := d.MaxBufferBytes
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferBytes
	}
	writer, streaming := d.Res.Writer()
	if !streaming && src.Size() > maxBuffer {
		return export.NewError(export.KindDelivery, "download exceeds buffer limit", nil)
	}

	reader, err := src.Open()
	if err != nil {
		return export.NewError(export.KindDelivery, "open data source failed", err)
	}
	defer reader.Close()

	setDownloadHeaders(d.Res, sanitizeFilename(filename, format.Format), format.ContentType)
	if size := src.Size(); size > 0 {
		d.Res.SetHeader("Content-Length", strconv.FormatInt(size, 10))
	}
	d.Res.WriteHeader(http.StatusOK)

	if streaming {
		if _, err := io.Copy(writer, reader); err != nil {
			return export.NewError(export.KindDelivery, "write download failed", err)
		}
		return nil
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		return export.NewError(export.KindDelivery, "read data source failed", err)
	}
	if _, err := d.Res.Write(payload); err != nil {
		return export.NewError(export.KindDelivery, "write download failed", err)
	}
	return nil
}

func sanitizeFilename(filename string, format export.Format) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		if format != "" {
			name = fmt.Sprintf("export.%s", format)
		} else {
			name = "export"
		}
	}
	return name
}

func setDownloadHeaders(res Response, filename, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
}

var _ export.Downloader = ResponseDownloader{}
