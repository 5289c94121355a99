package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/uniqueid/internal/config"
	"github.com/rzbill/uniqueid/internal/runtime"
	grpcserver "github.com/rzbill/uniqueid/internal/server/grpc"
	httpserver "github.com/rzbill/uniqueid/internal/server/http"
	idsvc "github.com/rzbill/uniqueid/internal/services/ids"
	pebblestore "github.com/rzbill/uniqueid/internal/storage/pebble"
	logpkg "github.com/rzbill/uniqueid/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir       string
	GRPCAddr      string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// Empty values fall back to UNIQUEID_LOG_LEVEL / UNIQUEID_LOG_FORMAT.
	LogLevel  string
	LogFormat string
}

// ResolveConfig builds the node configuration: defaults, then the optional
// file at path, then UNIQUEID_* environment variables.
func ResolveConfig(path string) (cfgpkg.Config, error) {
	cfg := cfgpkg.Default()
	if path != "" {
		loaded, err := cfgpkg.Load(path)
		if err != nil {
			return cfgpkg.Config{}, err
		}
		cfg = loaded
	}
	cfgpkg.FromEnv(&cfg)
	return cfg, cfg.Validate()
}

func newProcessLogger(opts Options) (logpkg.Logger, *logpkg.Config) {
	cfg := &logpkg.Config{
		Level:  opts.LogLevel,
		Format: opts.LogFormat,
	}
	if cfg.Level == "" {
		cfg.Level = getenvDefault("UNIQUEID_LOG_LEVEL", "info")
	}
	if cfg.Format == "" {
		cfg.Format = getenvDefault("UNIQUEID_LOG_FORMAT", "text")
	}
	logger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		// Fallback to a sane default
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		logger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	return logger, cfg
}

// Run starts gRPC and HTTP servers and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}

	procLogger, logCfg := newProcessLogger(opts)
	// Pebble logs through the standard library logger
	logpkg.RedirectStdLog(procLogger)

	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        procLogger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			procLogger.Error("runtime close", logpkg.Err(err))
		}
	}()

	procLogger.Info("Starting uniqueid server",
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("identity", rt.Identity().String()),
		logpkg.Int("batch_size", opts.Config.BatchSize),
		logpkg.Str("level", logCfg.Level),
		logpkg.Str("format", logCfg.Format),
	)

	// One service instance shared by both transports
	svc := idsvc.NewWithLogger(rt, procLogger)
	gsrv := grpcserver.NewWithService(rt, svc, procLogger)
	hsrv := httpserver.NewWithService(rt, svc, procLogger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gsrv.ListenAndServe(sctx, opts.GRPCAddr); err != nil && sctx.Err() == nil {
			procLogger.Error("grpc error", logpkg.Err(err))
			stop()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			procLogger.Error("http error", logpkg.Err(err))
			stop()
		}
	}()

	<-sctx.Done()
	// Stop the servers before closing the runtime/DB
	gsrv.Close()
	hsrv.Close()
	wg.Wait()
	procLogger.Info("uniqueid server stopped")
	return nil
}
