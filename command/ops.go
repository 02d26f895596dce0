package command

import (
	"context"
	"os"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
	"github.com/goliatone/go-gridexport/locale"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BatchExport describes one export of a batch run.
type BatchExport struct {
	Grid     string               `yaml:"grid"`
	Format   export.Format        `yaml:"format"`
	Mode     export.SelectionMode `yaml:"mode"`
	Selected []string             `yaml:"selected"`
	Locale   string               `yaml:"locale"`
	Timezone string               `yaml:"timezone"`
	Output   string               `yaml:"output"`
}

// BatchLoader loads batch exports from a source.
type BatchLoader func(ctx context.Context) ([]BatchExport, error)

// BatchCommand wires CLI/Cron execution for batch exports into a directory.
type BatchCommand struct {
	handler    *ExportGridHandler
	loader     BatchLoader
	outputDir  string
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxExports  int
	MinInterval time.Duration
}

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// WithBatchOutputDir sets where batch files are written.
func WithBatchOutputDir(dir string) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.outputDir = dir
	}
}

// NewBatchExportCommand creates a batch export CLI/Cron command.
func NewBatchExportCommand(handler *ExportGridHandler, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		handler:   handler,
		loader:    loader,
		outputDir: ".",
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"exports-batch"},
			Description: "Run batch grid exports",
			Group:       "exports",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 0 * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler executes scheduled batch exports.
func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.Run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// Run executes the batch loaded from the file at from, or from the loader
// when from is empty. It stops at the first failed export.
func (c *BatchCommand) Run(ctx context.Context, from string) ([]export.Result, error) {
	if c == nil {
		return nil, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.handler == nil {
		return nil, errors.New("export handler is required", errors.CategoryValidation).
			WithTextCode("HANDLER_REQUIRED")
	}

	items, err := c.load(ctx, from)
	if err != nil {
		return nil, err
	}

	results := []export.Result{}
	for _, item := range items {
		if c.limits.MaxExports > 0 && len(results) >= c.limits.MaxExports {
			break
		}
		var result export.Result
		msg := ExportGrid{
			Grid:       item.Grid,
			Format:     item.Format,
			Mode:       item.Mode,
			Selected:   item.Selected,
			Locale:     locale.ParseTag(item.Locale, language.Und),
			Timezone:   item.Timezone,
			Downloader: &export.FileDownloader{Dir: c.outputDir, Name: item.Output},
			Result:     &result,
		}
		if err := c.handler.Execute(ctx, msg); err != nil {
			return results, err
		}
		results = append(results, result)
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return results, nil
}

func (c *BatchCommand) load(ctx context.Context, from string) ([]BatchExport, error) {
	if strings.TrimSpace(from) != "" {
		return LoadBatchFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to a YAML or JSON batch file'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.Run(context.Background(), c.From)
	return err
}

// LoadBatchFile reads a YAML (or JSON) list of batch exports.
func LoadBatchFile(path string) ([]BatchExport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var items []BatchExport
	if err := yaml.Unmarshal(content, &items); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return items, nil
}
