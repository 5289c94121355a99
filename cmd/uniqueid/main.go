package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	clientcmd "github.com/rzbill/uniqueid/internal/cmd/client"
	serverrun "github.com/rzbill/uniqueid/internal/cmd/server"
	pebblestore "github.com/rzbill/uniqueid/internal/storage/pebble"
	logpkg "github.com/rzbill/uniqueid/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// Respect UNIQUEID_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("UNIQUEID_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	rootCmd := &cobra.Command{
		Use:   "uniqueid",
		Short: "64-bit unique ID generator",
		Long:  "uniqueid hands out time-ordered 64-bit IDs over gRPC and HTTP. This CLI runs the server and talks to it.",
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the uniqueid server (gRPC and HTTP)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			httpAddr, _ := cmd.Flags().GetString("http")
			configPath, _ := cmd.Flags().GetString("config")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			cfg, err := serverrun.ResolveConfig(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			// explicit flags win over file and environment
			if cmd.Flags().Changed("generator-id") {
				cfg.GeneratorID, _ = cmd.Flags().GetInt("generator-id")
			}
			if cmd.Flags().Changed("cluster-id") {
				cfg.ClusterID, _ = cmd.Flags().GetInt("cluster-id")
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize, _ = cmd.Flags().GetInt("batch-size")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				GRPCAddr:      grpcAddr,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
				LogLevel:      logLevel,
				LogFormat:     logFormat,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("grpc", ":50051", "gRPC listen address")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().String("config", os.Getenv("UNIQUEID_CONFIG"), "Config file (.json, .yaml or .yml)")
	serverStartCmd.Flags().Int("generator-id", 0, "Generator ID (0-63)")
	serverStartCmd.Flags().Int("cluster-id", 0, "Cluster ID (0-15)")
	serverStartCmd.Flags().Int("batch-size", 0, "IDs fetched per cache refill")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("log-level", os.Getenv("UNIQUEID_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("UNIQUEID_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	rootCmd.AddCommand(clientcmd.NewGenerateCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewDecodeCommand())

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", logpkg.Err(err))
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("UNIQUEID_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
