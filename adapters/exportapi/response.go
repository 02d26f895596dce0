package exportapi

import (
	"io"
	"time"
)

// Response provides a minimal response interface for transport adapters.
type Response interface {
	SetHeader(name, value string)
	DelHeader(name string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
	Writer() (io.Writer, bool)
}

// ListResponse lists the exportable grids.
type ListResponse struct {
	Grids   []string `json:"grids"`
	Formats []string `json:"formats"`
}

// PreviewResponse describes an export without rendering it.
type PreviewResponse struct {
	Grid     string   `json:"grid"`
	Caption  string   `json:"caption"`
	Filename string   `json:"filename"`
	Format   string   `json:"format"`
	Mode     string   `json:"mode"`
	Columns  []string `json:"columns"`
	Records  int      `json:"records"`
}

// ArtifactResponse describes a stored export.
type ArtifactResponse struct {
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	DownloadURL string    `json:"download_url"`
}

// ErrorResponse describes JSON error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
