package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ayusman/handcalc/internal/app"
	"github.com/ayusman/handcalc/internal/config"
	"github.com/ayusman/handcalc/internal/logging"
	"github.com/ayusman/handcalc/internal/metrics"
	"github.com/ayusman/handcalc/internal/server"
	"github.com/ayusman/handcalc/internal/store"
	"github.com/ayusman/handcalc/internal/tray"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the camera loop and the web UI",
	Long: `Opens the camera, starts gesture processing and serves the web UI, the MJPEG
video feed, the control routes and the JSON API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "HTTP listen address (default :8080)")
	serveCmd.Flags().Int("camera", 0, "Camera device ID")
	serveCmd.Flags().String("db", "", "SQLite database path")
	serveCmd.Flags().Bool("tray", false, "Show the system tray menu")
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("camera") {
		cfg.Camera.DeviceID, _ = flags.GetInt("camera")
	}
	if flags.Changed("db") {
		cfg.Store.Path, _ = flags.GetString("db")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("tray") {
		cfg.Tray.Enabled, _ = flags.GetBool("tray")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	dbPath, err := cfg.StorePath()
	if err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	log.Info().Str("path", dbPath).Msg("calculation store opened")

	m := metrics.New()
	a := app.New(app.Config{
		Camera:     cfg.CaptureConfig(),
		Detector:   cfg.DetectionConfig(),
		Calculator: cfg.EngineConfig(),
		Store:      st,
		Metrics:    m,
		Logger:     log,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	srv := server.New(server.Config{
		StaticDir:  cfg.Server.StaticDir,
		Controller: a,
		Store:      st,
		Metrics:    m.Handler(),
		Logger:     log,
	}).HTTPServer(cfg.Server.Addr)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
		serverErrors <- srv.ListenAndServe()
	}()

	if cfg.Tray.Enabled {
		go runTray(ctx, stop, a, browserURL(cfg.Server.Addr), log)
	}

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Dur("timeout", shutdownTimeout).Msg("graceful shutdown did not complete")
		return srv.Close()
	}
	return nil
}

// runTray shows the tray menu and keeps it in sync with the app until the
// context ends. Quitting from the menu cancels the context.
func runTray(ctx context.Context, quit context.CancelFunc, a *app.App, url string, log zerolog.Logger) {
	t := tray.New()
	t.SetEnabled(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnReset(a.Reset)
	t.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.Warn().Err(err).Msg("open browser")
		}
	})
	t.OnQuit(quit)

	events, unsubscribe := a.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-events:
				t.SetEnabled(a.IsEnabled())
				if h := a.History(); len(h) > 0 {
					t.SetLastResult(h[len(h)-1])
				}
			}
		}
	}()

	t.Run()
}

// browserURL turns a listen address into a local URL.
func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
