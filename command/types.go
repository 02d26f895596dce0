package command

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
	"golang.org/x/text/language"
)

// ExportGrid renders a grid and hands it to a downloader.
type ExportGrid struct {
	Grid       string
	Format     export.Format
	Mode       export.SelectionMode
	Selected   []string
	Locale     language.Tag
	Timezone   string
	Configure  export.SerializerConfigurer
	Downloader export.Downloader
	Result     *export.Result
}

func (ExportGrid) Type() string { return "gridexport:export" }

func (msg ExportGrid) Validate() error {
	if strings.TrimSpace(msg.Grid) == "" {
		return errors.New("grid name is required", errors.CategoryValidation).
			WithTextCode("GRID_REQUIRED")
	}
	if msg.Downloader == nil {
		return errors.New("downloader is required", errors.CategoryValidation).
			WithTextCode("DOWNLOADER_REQUIRED")
	}
	return nil
}

// CleanupArtifacts removes stored artifacts under Prefix created before
// Now minus OlderThan. A zero OlderThan removes everything under Prefix.
type CleanupArtifacts struct {
	Prefix    string
	OlderThan time.Duration
	Now       time.Time
	Result    *int
}

func (CleanupArtifacts) Type() string { return "gridexport:cleanup" }

func (msg CleanupArtifacts) Validate() error {
	if msg.OlderThan < 0 {
		return errors.New("older-than must not be negative", errors.CategoryValidation).
			WithTextCode("OLDER_THAN_INVALID")
	}
	return nil
}
