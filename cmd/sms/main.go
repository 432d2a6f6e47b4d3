package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	clientcmd "github.com/kittors/simple-message-service/internal/cmd/client"
	serverrun "github.com/kittors/simple-message-service/internal/cmd/server"
	cfgpkg "github.com/kittors/simple-message-service/internal/config"
	pebblestore "github.com/kittors/simple-message-service/internal/storage/pebble"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

func main() {
	// Respect SMS_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("SMS_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "sms",
		Short: "Simple message service CLI",
		Long:  "sms runs the message dispatch server and offers client commands against its HTTP API.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the message server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			envFile, _ := cmd.Flags().GetString("env-file")
			httpAddr, _ := cmd.Flags().GetString("http")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			db, _ := cmd.Flags().GetString("db")
			keyPrefix, _ := cmd.Flags().GetString("key-prefix")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			} else {
				// .env in the working directory is optional
				_ = godotenv.Load()
			}

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			if db != "" {
				cfg.DatabaseURL = db
			}
			if keyPrefix != "" {
				cfg.KeyPrefix = keyPrefix
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if logFormat != "" {
				cfg.LogFormat = logFormat
			}

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

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:  dataDir,
				HTTPAddr: httpAddr,
				Fsync:    mode,
				Config:   cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "JSON config file (optional)")
	serverStartCmd.Flags().String("env-file", "", "Env file to load (defaults to ./.env when present)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default :3001)")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("db", os.Getenv("SMS_DATABASE_URL"), "Postgres DSN (empty runs the in-memory store)")
	serverStartCmd.Flags().String("key-prefix", "", "Prefix applied to every subscriber key")
	serverStartCmd.Flags().String("fsync", "always", "Replay cache fsync mode: always|interval|never")
	serverStartCmd.Flags().String("log-level", os.Getenv("SMS_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("SMS_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// message commands (push/history/delete/subscribe over HTTP)
	rootCmd.AddCommand(clientcmd.NewMessageCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("SMS_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:3001"
}
