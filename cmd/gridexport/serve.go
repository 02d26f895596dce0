package main

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	exportfiber "github.com/goliatone/go-gridexport/adapters/fiber"
	exportprom "github.com/goliatone/go-gridexport/adapters/metrics/prometheus"
	storefs "github.com/goliatone/go-gridexport/adapters/store/fs"
	"github.com/goliatone/go-gridexport/config"
	"github.com/goliatone/go-gridexport/export"
	"github.com/goliatone/go-gridexport/locale"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var serveFlags struct {
	listen  string
	metrics bool
}

var serveCmd = &cobra.Command{
	Use:   "serve <grid.yaml>...",
	Short: "Serve grid exports over HTTP",
	Long: `Serve grid exports over HTTP.

Routes (base path defaults to /exports):
  GET  /exports                     list grids and formats
  GET  /exports/<grid>              download (format, mode, selected, locale, indent)
  GET  /exports/<grid>/preview      describe an export
  POST /exports/<grid>              store an export under artifact_dir
  GET  /exports/artifacts/<key>     download a stored export

Requests carrying a remember-me cookie get captions in the locale held by
the locale cookie.

Examples:
  gridexport serve people.yaml orders.yaml --listen :9000 --metrics`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listen, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVar(&serveFlags.metrics, "metrics", false, "expose Prometheus metrics")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if serveFlags.listen != "" {
		cfg.Server.Address = serveFlags.listen
	}
	if serveFlags.metrics {
		cfg.Metrics.Enabled = true
	}
	logger := newLogger(cmd)

	catalog, err := loadCatalog(args)
	if err != nil {
		return err
	}
	app, err := newServer(cfg, catalog, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gridexport listening", "address", cfg.Server.Address, "base_path", cfg.Server.BasePath)
		errCh <- app.Listen(cfg.Server.Address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("gridexport shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

// newServer builds the fiber app serving catalog.
func newServer(cfg config.Config, catalog export.GridProvider, logger *slog.Logger) (*fiber.App, error) {
	opts, err := exporterOptions(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		hook, err := exportprom.NewHook(exportprom.Config{Namespace: cfg.Metrics.Namespace}, registry)
		if err != nil {
			return nil, err
		}
		opts = append(opts, export.WithMetrics(hook))
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	fallback := locale.ParseTag(cfg.Export.Locale, language.English)
	handler := exportfiber.NewHandler(exportfiber.Config{
		Provider: catalog,
		BasePath: cfg.Server.BasePath,
		Options:  opts,
		Locales:  locale.NewChain(fallback, locale.RememberMeResolver{Default: fallback}),
		Store:    storefs.NewStore(cfg.Export.ArtifactDir),
		Logger:   export.NewSlogLogger(logger),
	})

	app.Use(exportfiber.SessionMiddleware(cfg.Server.LocaleCookie))
	handler.RegisterRoutes(app)
	return app, nil
}
