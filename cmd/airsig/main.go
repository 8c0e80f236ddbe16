package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/airsig/internal/app"
	"github.com/ayusman/airsig/internal/config"
	"github.com/ayusman/airsig/internal/server"
	"github.com/ayusman/airsig/internal/store"
	"github.com/ayusman/airsig/internal/tray"
)

var (
	flagConfig  string
	flagCamera  int
	flagAddr    string
	flagDB      string
	flagNoTray  bool
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "airsig",
		Short: "Draw in the air with hand gestures",
		Long: `AirSig tracks a hand through the webcam and turns gestures into
drawing operations on a persistent canvas: point to draw, show four
fingers to erase, pinch to change color, make a fist to clear.`,
		RunE: run,
	}

	root.Flags().StringVarP(&flagConfig, "config", "c", "", "path to TOML config file")
	root.Flags().IntVar(&flagCamera, "camera", -1, "camera device index (overrides config)")
	root.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides config)")
	root.Flags().StringVar(&flagDB, "db", "", "SQLite database path")
	root.Flags().BoolVar(&flagNoTray, "no-tray", false, "run without the system tray")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "airsig",
	})
	if flagVerbose {
		logger.SetLevel(charmlog.DebugLevel)
	}

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	if flagCamera >= 0 {
		cfg.Camera.Index = flagCamera
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}

	dbPath, err := resolveDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()
	logger.Info("store ready", "path", dbPath)

	a := app.New(app.Config{
		Store:    st,
		Logger:   logger,
		Settings: cfg,
	})
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	srv := server.New(server.Config{App: a, Logger: logger})
	defer srv.Close()
	go func() {
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			logger.Error("http server failed", "err", err)
		}
	}()

	if flagNoTray {
		waitForSignal(logger)
		return nil
	}

	stopCh := make(chan struct{})
	defer close(stopCh)

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnQuit(func() {})
	go watchGesture(a, t, stopCh)

	// systray must run on the main goroutine; it returns on Quit.
	t.Run()
	return nil
}

// watchGesture mirrors the current gesture into the tray menu until
// stopCh closes.
func watchGesture(a *app.App, t *tray.Tray, stopCh <-chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		g := string(a.Driver().Gesture())
		if g != last {
			t.SetGesture(g)
			last = g
		}
	}
}

func waitForSignal(logger *charmlog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", "signal", s)
}

// resolveConfigPath prefers the flag, then ~/.airsig/airsig.toml.
func resolveConfigPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".airsig", "airsig.toml")
}

// resolveDBPath prefers the flag, then ~/.airsig/airsig.db, creating the
// data directory when needed.
func resolveDBPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dataDir := filepath.Join(homeDir, ".airsig")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return filepath.Join(dataDir, "airsig.db"), nil
}
