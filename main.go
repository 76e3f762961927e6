package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cristianadrielbraun/qrstudio/internal/builder"
	"github.com/cristianadrielbraun/qrstudio/internal/config"
	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/handlers"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/qrs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
	"github.com/cristianadrielbraun/qrstudio/internal/store"
	"github.com/cristianadrielbraun/qrstudio/internal/uploads"
	"github.com/cristianadrielbraun/qrstudio/web/assets"
	"github.com/cristianadrielbraun/qrstudio/web/components"
)

const (
	sessionIdle   = 30 * time.Minute
	sweepInterval = time.Minute
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "qrstudio",
		Short:        "QR code builder and renderer",
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, _ []string) error { return serve(cmd.Context()) },
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "path to the config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  func(cmd *cobra.Command, _ []string) error { return serve(cmd.Context()) },
	})
	root.AddCommand(renderCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	lggr, err := logger.Config{
		Level:       logger.ParseLevel(cfg.Log.Level),
		Development: cfg.Log.Development,
	}.New()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, lggr, nil
}

func newComposer(cfg *config.Config, up *uploads.Store, lggr logger.Logger) *render.Composer {
	embedded := render.FSSource{FS: assets.FS}
	var logos render.AssetSource = embedded
	if cfg.Assets.RemoteBaseURL != "" {
		logos = render.HTTPSource{
			BaseURL:  cfg.Assets.RemoteBaseURL,
			Attempts: cfg.Assets.FetchAttempts,
			Timeout:  cfg.Assets.FetchTimeout,
		}
	}
	c := &render.Composer{
		Logos:  &render.LogoResolver{Assets: logos, StorageBaseURL: cfg.Uploads.BaseURL},
		Frames: &render.FrameEmbedder{Assets: embedded},
		Lggr:   lggr.Named("Composer"),
	}
	if up != nil {
		c.Logos.Uploads = up
	}
	return c
}

// defaultContent is what the preview encodes before the user has entered a
// destination.
func defaultContent(cfg *config.Config) string {
	if cfg.Preview.DefaultData != "" {
		return cfg.Preview.DefaultData
	}
	return components.LinkData{Domain: cfg.Preview.ShortDomain}.URL()
}

func serve(ctx context.Context) error {
	cfg, lggr, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()

	st, err := store.New(store.Config{
		Type:        cfg.Storage.Type,
		FilePath:    cfg.Storage.FilePath,
		DatabaseURL: cfg.Storage.DatabaseURL,
		SSLEnabled:  cfg.Storage.SSLEnabled,
	})
	if err != nil {
		return err
	}
	if err := st.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s storage: %w", cfg.Storage.Type, err)
	}
	defer st.Close()

	up, err := uploads.New(cfg.Uploads.Dir, cfg.Uploads.BaseURL, cfg.Uploads.MaxBytes, lggr.Named("Uploads"))
	if err != nil {
		return err
	}

	composer := newComposer(cfg, up, lggr)
	content := defaultContent(cfg)
	svc := qrs.NewService(st, up.URL, lggr.Named("QRs"))
	sessions := builder.NewManager(builder.ManagerConfig{
		Composer:       composer,
		Saver:          svc,
		DefaultContent: content,
		Debounce:       cfg.Preview.Debounce,
		FileURL:        up.URL,
		Lggr:           lggr,
	})
	defer sessions.CloseAll()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.StaticFS("/web/assets", http.FS(assets.FS))
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/builder") })

	handlers.New(handlers.Deps{
		Composer:       composer,
		Sessions:       sessions,
		QRs:            svc,
		Uploads:        up,
		DefaultContent: content,
		Lggr:           lggr.Named("Handlers"),
	}).Register(r)

	go func() {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := sessions.Sweep(sessionIdle); n > 0 {
					lggr.Debugw("Closed idle builder sessions", "count", n)
				}
			}
		}
	}()

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	lggr.Infow("qrstudio listening", "addr", cfg.Server.Addr, "storage", cfg.Storage.Type)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	lggr.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func renderCommand() *cobra.Command {
	var (
		customPath string
		out        string
		size       int
	)
	cmd := &cobra.Command{
		Use:   "render <content>",
		Short: "Render a QR code to a file",
		Long:  "Render a QR code for content to an svg, png or jpg file. The format follows the extension of --out.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lggr, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = lggr.Sync() }()

			data := customization.DefaultData()
			if customPath != "" {
				b, err := os.ReadFile(customPath)
				if err != nil {
					return err
				}
				if err := yaml.Unmarshal(b, &data); err != nil {
					return fmt.Errorf("parse %s: %w", customPath, err)
				}
			}
			data = data.Normalize()

			var up *uploads.Store
			if _, err := os.Stat(cfg.Uploads.Dir); err == nil {
				if up, err = uploads.New(cfg.Uploads.Dir, cfg.Uploads.BaseURL, cfg.Uploads.MaxBytes, lggr); err != nil {
					return err
				}
			}
			composer := newComposer(cfg, up, lggr)

			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			switch format {
			case "jpeg":
				format = render.FormatJPG
			case render.FormatSVG, render.FormatPNG, render.FormatJPG:
			default:
				return fmt.Errorf("unsupported output format %q (use .svg, .png or .jpg)", format)
			}

			var b []byte
			if format == render.FormatSVG {
				res, err := composer.Compose(cmd.Context(), data, args[0])
				if err != nil {
					return err
				}
				for _, d := range res.Degraded {
					lggr.Warnw("Rendered without part of the customization", "error", d)
				}
				b = []byte(res.SVG)
			} else {
				res, err := composer.Export(cmd.Context(), data, args[0], format, size)
				if err != nil {
					return err
				}
				for _, d := range res.Degraded {
					lggr.Warnw("Rendered without part of the customization", "error", d)
				}
				b = res.Data
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return err
			}
			lggr.Infow("Wrote QR code", "path", out, "bytes", len(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&customPath, "customization", "", "YAML file with the customization")
	cmd.Flags().StringVarP(&out, "out", "o", "qr-code.png", "output file")
	cmd.Flags().IntVar(&size, "size", render.DownloadSize, "width of png and jpg output in pixels")
	return cmd
}
