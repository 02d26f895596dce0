package export

import (
	"bytes"
	"strings"
	"text/template"
	"time"
)

const defaultFilenameBase = "export"

type filenameData struct {
	Grid      string
	Format    string
	Timestamp string
	Date      string
}

// renderFilename resolves `<base>.<ext>` for a grid download. The base is the
// grid name unless tmpl is set.
func renderFilename(tmpl string, grid string, format DownloadFormat, now time.Time) (string, error) {
	base := strings.TrimSpace(grid)
	if strings.TrimSpace(tmpl) != "" {
		data := filenameData{
			Grid:      grid,
			Format:    string(format.Format),
			Timestamp: now.UTC().Format("20060102T150405Z"),
			Date:      now.UTC().Format("20060102"),
		}

		parsed, err := template.New("filename").Parse(tmpl)
		if err != nil {
			return "", NewError(KindValidation, "invalid filename template", err)
		}

		var buf bytes.Buffer
		if err := parsed.Execute(&buf, data); err != nil {
			return "", NewError(KindValidation, "filename template failed", err)
		}
		base = strings.TrimSpace(buf.String())
	}

	base = sanitizeFilenameBase(base)
	if base == "" {
		base = defaultFilenameBase
	}

	ext := strings.TrimPrefix(format.Extension, ".")
	if ext == "" {
		ext = string(format.Format)
	}
	if ext == "" {
		return base, nil
	}
	if strings.HasSuffix(strings.ToLower(base), "."+strings.ToLower(ext)) {
		return base, nil
	}
	return base + "." + ext, nil
}

func sanitizeFilenameBase(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "\"", "", "\x00", "")
	return strings.TrimSpace(replacer.Replace(name))
}
