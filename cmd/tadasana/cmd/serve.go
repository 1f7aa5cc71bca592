package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/tadasana/internal/app"
	"github.com/ayusman/tadasana/internal/capture"
	"github.com/ayusman/tadasana/internal/config"
	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/pose"
	"github.com/ayusman/tadasana/internal/server"
	"github.com/ayusman/tadasana/internal/store"
	"github.com/ayusman/tadasana/internal/tray"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the camera pipeline and web server",
	Long: `Start the practice pipeline and serve the web UI and JSON API.

Example:
  tadasana serve --addr :9000
  tadasana serve --tray`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().String("addr", "", "listen address (default :8080)")
		c.Flags().Bool("tray", false, "show the system tray menu")
		c.Flags().Bool("no-camera", false, "serve the API without starting the camera")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	v.BindPFlag("tray", cmd.Flags().Lookup("tray"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(cfg.DetectorConfig()); err == nil {
		det = mp
	} else {
		log.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
		det = detector.NewMockDetector()
	}

	a, err := app.New(app.Config{
		Store:    st,
		Scorer:   scorer,
		Camera:   capture.NewCamera(cfg.CameraOptions()),
		Detector: det,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if noCamera, _ := cmd.Flags().GetBool("no-camera"); !noCamera {
		a.SetEnabled(true)
		if err := a.Start(); err != nil {
			log.Warn().Err(err).Msg("camera unavailable, serving the API only")
		}
	}

	staticDir := findWebDir(cfg)
	if staticDir != "" {
		log.Info().Str("dir", staticDir).Msg("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		App:       a,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Tray {
		return srv.ListenAndServe(ctx, cfg.Addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx, cfg.Addr) }()

	runTray(a, cfg.Addr, stop)
	return <-errCh
}

// runTray blocks in the tray event loop until Quit is chosen.
func runTray(a *app.App, addr string, quit func()) {
	t := tray.New(a.Target(), a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnTarget(func(target pose.Target) {
		if err := a.SetTarget(target); err != nil {
			log.Error().Err(err).Msg("failed to change target")
		}
	})
	t.OnOpen(func() { openBrowser(browserURL(addr)) })
	t.OnQuit(quit)

	cancel := t.Follow(a)
	defer cancel()

	t.Run()
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	if err := c.Start(); err != nil {
		log.Error().Err(err).Str("url", url).Msg("failed to open browser")
	}
}

// findWebDir returns the configured static directory if it exists, else the
// first of "web", "../web" and <data dir>/web that does.
func findWebDir(cfg *config.Config) string {
	candidates := []string{cfg.StaticDir, "web", "../web", filepath.Join(cfg.DataDir, "web")}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
