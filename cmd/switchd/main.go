package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"switchd/internal/common/fsutil"
	"switchd/internal/config"
	"switchd/internal/control"
	"switchd/internal/gpu"
	"switchd/internal/httpapi"
	"switchd/internal/runtime"
	"switchd/internal/telemetry"
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envDefault("SWITCHD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	runtimeURL := flag.String("runtime-url", envDefault("SWITCHD_RUNTIME_URL", runtime.DefaultBaseURL), "Base URL of the model runtime API")
	model := flag.String("model", envDefault("SWITCHD_MODEL", ""), "Model to keep resident (empty disables keep-alive)")
	sampleSec := flag.Int("sample-interval-sec", envDefaultInt("SWITCHD_SAMPLE_INTERVAL_SEC", 0), "Telemetry sample interval in seconds (0=default)")
	historySize := flag.Int("history-size", envDefaultInt("SWITCHD_HISTORY_SIZE", 0), "Telemetry history buffer size (0=default)")
	logLevel := flag.String("log-level", envDefault("SWITCHD_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	logFile := flag.String("log-file", envDefault("SWITCHD_LOG_FILE", ""), "Log to this file with rotation instead of stderr")
	configPath := flag.String("config", envDefault("SWITCHD_CONFIG", ""), "Optional config file (.yaml/.json/.toml); flags override")
	flag.Parse()

	var fileCfg config.Config
	if *configPath != "" {
		bootLog := zerolog.New(os.Stderr)
		path, err := fsutil.ExpandHome(*configPath)
		if err != nil {
			bootLog.Fatal().Err(err).Str("path", *configPath).Msg("failed to resolve config path")
		}
		fileCfg, err = config.Load(path)
		if err != nil {
			bootLog.Fatal().Err(err).Str("path", path).Msg("failed to load config")
		}
	}

	// File config fills in whatever the flags left at their defaults.
	if *addr == ":8080" && fileCfg.Addr != "" {
		*addr = fileCfg.Addr
	}
	if *runtimeURL == runtime.DefaultBaseURL && fileCfg.RuntimeURL != "" {
		*runtimeURL = fileCfg.RuntimeURL
	}
	if *model == "" {
		*model = fileCfg.Model
	}
	if *sampleSec == 0 {
		*sampleSec = fileCfg.SampleIntervalSec
	}
	if *historySize == 0 {
		*historySize = fileCfg.HistorySize
	}
	if *logLevel == "info" && fileCfg.LogLevel != "" {
		*logLevel = fileCfg.LogLevel
	}
	if *logFile == "" {
		*logFile = fileCfg.LogFile
	}

	log := newLogger(*logLevel, *logFile, fileCfg)
	log.Info().Str("addr", *addr).Str("runtime", *runtimeURL).Msg("switchd starting")

	rt := runtime.NewClient(runtime.ClientConfig{
		BaseURL: *runtimeURL,
		Logger:  log,
	})
	probe := gpu.NewSMIProbe("", log)

	collector := telemetry.NewCollector(telemetry.CollectorConfig{
		Probe:    probe,
		Runtime:  rt,
		History:  telemetry.NewHistory(*historySize),
		Interval: time.Duration(*sampleSec) * time.Second,
		Logger:   log,
	})

	state := control.NewActiveState()
	switcher := control.NewSwitcher(rt, state, control.SwitcherConfig{
		PollInterval: time.Duration(fileCfg.SwitchPollSec) * time.Second,
		MaxAttempts:  fileCfg.SwitchMaxAttempts,
	}, log)

	httpapi.SetLogger(log)
	httpapi.SetCORSOptions(fileCfg.CORSEnabled, fileCfg.CORSAllowedOrigins,
		[]string{"GET", "POST", "OPTIONS"}, []string{"Accept", "Content-Type"})
	httpapi.SetWSOriginPatterns(fileCfg.CORSAllowedOrigins)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	httpapi.SetBaseContext(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		collector.Run(ctx)
	}()

	if *model != "" {
		daemon := control.NewDaemon(rt, switcher, control.DaemonConfig{
			Model:         *model,
			PingInterval:  time.Duration(fileCfg.KeepalivePingSec) * time.Second,
			ReloadRetries: fileCfg.KeepaliveRetries,
			ReloadBackoff: time.Duration(fileCfg.KeepaliveBackoffSec) * time.Second,
		}, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			daemon.Run(ctx)
		}()

		// Bring the desired model up before traffic arrives; a failure
		// here is retried by the keep-alive loop, not fatal.
		go func() {
			if _, err := switcher.SwitchTo(ctx, *model); err != nil {
				log.Warn().Err(err).Str("model", *model).Msg("initial model load failed")
			}
		}()
	}

	mux := httpapi.NewMux(switcher, collector)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", *addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	cancel()
	wg.Wait()
}

// newLogger builds the process logger: console writer on a TTY-ish
// stderr setup, or a rotating file sink when log-file is set.
func newLogger(level, file string, cfg config.Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var sink io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if expanded, err := fsutil.ExpandHome(file); err == nil {
		file = expanded
	}
	if file != "" {
		maxSize := cfg.LogMaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		maxBackups := cfg.LogMaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		sink = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
	}
	return zerolog.New(sink).Level(lvl).With().Timestamp().Logger()
}
