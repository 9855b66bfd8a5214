package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/sink"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

const longHelp = `Mudra watches your hand through the webcam and reports finger patterns.

Raise only your thumb to start a capture session. While capturing, every change
of raised fingers is reported. Raise thumb and pinky to end the session.
Events go to the console, the log, the web UI's event stream and any plugin
actions bound to them.`

var exampleUsage = strings.TrimSpace(`
  mudra
  mudra --camera 1 --fps 15 --preview=false
  mudra --config $HOME/.mudra/config.toml --listen 127.0.0.1:9090
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "mudra",
		Short:         "Finger-pattern gesture capture from a webcam",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && config.FileExists(cfgFile) {
				fc, err := config.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := config.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment (MUDRA_*) overrides the file, flags override both
			if err := config.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			wantPreview := cfg.Preview
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}
			if wantPreview && !cfg.Preview {
				log.Warn().Msg("preview window disabled: not available with the tray")
			}
			log.Info().Interface("config", cfg).Msg("configuration")

			return run(cmd.Context(), cfg, log)
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.mudra/config.toml)")

	f.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "camera device index")
	f.IntVar(&cfg.Width, "width", cfg.Width, "requested frame width")
	f.IntVar(&cfg.Height, "height", cfg.Height, "requested frame height")
	f.IntVar(&cfg.FPS, "fps", cfg.FPS, "frames processed per second")
	f.BoolVar(&cfg.Preview, "preview", cfg.Preview, "show the annotated camera preview window")

	f.IntVar(&cfg.MaxHands, "max-hands", cfg.MaxHands, "maximum hands the detector reports (only the first is tracked)")
	f.Float64Var(&cfg.MinDetectionConfidence, "min-detection-confidence", cfg.MinDetectionConfidence, "minimum hand detection confidence")
	f.Float64Var(&cfg.MinTrackingConfidence, "min-tracking-confidence", cfg.MinTrackingConfidence, "minimum hand tracking confidence")

	f.StringVar(&cfg.Listen, "listen", cfg.Listen, `HTTP listen address ("" disables the server)`)
	f.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "directory of web UI files to serve")

	f.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory for the database and plugins")
	f.StringVar(&cfg.PluginDir, "plugin-dir", cfg.PluginDir, "plugin directory (default: <data-dir>/plugins)")
	f.DurationVar(&cfg.PluginTimeout, "plugin-timeout", cfg.PluginTimeout, "maximum run time of one plugin action")

	f.BoolVar(&cfg.Tray, "tray", cfg.Tray, "show the system tray indicator")

	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console, json)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mudra:", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until the frame loop ends.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger) (err error) {
	for _, dir := range []string{cfg.DataDir, cfg.PluginDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	plugins := plugin.NewManager(cfg.PluginDir, log)
	if err := plugins.Discover(); err != nil {
		log.Warn().Err(err).Msg("plugin discovery failed")
	}
	dispatcher := plugin.NewDispatcher(st.Bindings(), plugins, plugin.NewExecutor(cfg.PluginTimeout), log)
	defer func() { err = multierr.Append(err, dispatcher.Close()) }()

	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinDetectionConfidence,
		MinTrackingConf: cfg.MinTrackingConfidence,
	}, log)
	if err != nil {
		return fmt.Errorf("hand detector: %w", err)
	}

	hub := server.NewHub(log)
	appCfg := app.Config{
		Camera: capture.NewCamera(capture.Config{
			DeviceID: cfg.CameraID,
			Width:    cfg.Width,
			Height:   cfg.Height,
			FPS:      cfg.FPS,
		}, log),
		Detector:      det,
		Settings:      st.Settings(),
		PublishFrames: cfg.Listen != "",
		Sinks: []sink.Sink{
			sink.NewTextSink(os.Stdout),
			sink.NewLogSink(log),
			hub,
			dispatcher,
		},
		Logger: log,
	}
	if cfg.Preview {
		appCfg.Display = overlay.NewPreview("mudra")
	}
	a := app.New(appCfg)
	defer func() { err = multierr.Append(err, a.Close()) }()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	watcher := plugin.NewWatcher(plugins, 0, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := watcher.Run(ctx); err != nil {
			log.Warn().Err(err).Msg("plugin watcher stopped")
		}
	}()

	if cfg.Listen != "" {
		srv := server.New(server.Config{
			StaticDir:  cfg.StaticDir,
			Store:      st,
			Controller: a,
			Plugins:    plugins,
			Events:     hub,
			Frames:     a,
			Logger:     log,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx, cfg.Listen); err != nil {
				log.Error().Err(err).Msg("http server stopped")
				cancel()
			}
		}()
	}

	if !cfg.Tray {
		return a.Run(ctx)
	}

	// The tray loop must own the main thread, so the frame loop moves aside.
	t := tray.New(a.IsEnabled())
	a.Subscribe(t)
	t.OnToggle(func(enabled bool) {
		if err := a.SetEnabled(enabled); err != nil {
			log.Error().Err(err).Msg("failed to save enabled state")
		}
	})
	t.OnSettings(func() { openBrowser(cfg.Listen, log) })
	t.OnQuit(cancel)

	runErr := make(chan error, 1)
	go func() {
		runErr <- a.Run(ctx)
		t.Quit()
	}()
	t.Run()
	cancel()
	return <-runErr
}

// openBrowser opens the web UI served on listen.
func openBrowser(listen string, log zerolog.Logger) {
	if listen == "" {
		log.Warn().Msg("web UI disabled, set --listen to enable it")
		return
	}
	host := listen
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	url := "http://" + host + "/"

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to open browser")
	}
}
