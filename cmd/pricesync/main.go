package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rickgao/pricesync/internal/config"
	"github.com/rickgao/pricesync/internal/pipeline"
	"github.com/rickgao/pricesync/internal/version"
)

// Exit codes.
const (
	exitOK       = 0
	exitFatal    = 1
	exitUsage    = 2
	exitFellBack = 3
)

// errRunFailed is returned after the failure has already been logged.
var errRunFailed = errors.New("run failed")

var (
	configPath string
	envFile    string
)

func main() {
	os.Exit(execute())
}

func execute() int {
	code := exitOK
	root := newRootCmd(&code)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		if code == exitOK {
			code = exitUsage
		}
	}
	return code
}

func newRootCmd(code *int) *cobra.Command {
	root := &cobra.Command{
		Use:           "pricesync",
		Short:         "Sync daily close prices into a dated store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(envFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "configs/pricesync.yaml", "path to config file")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before config expansion (missing file is ignored)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Fetch, merge and persist once",
			RunE: func(cmd *cobra.Command, args []string) error {
				*code = runOnce(cmd.Context())
				if *code == exitFatal {
					return errRunFailed
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "check-config",
			Short: "Load and validate the config file",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadAndValidate(configPath)
				if err != nil {
					*code = exitFatal
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "config ok: provider=%s store=%s mode=%s\n",
					cfg.Provider.Name, cfg.Store.Backend, cfg.Run.Mode)
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "pricesync "+version.String())
			},
		},
	)
	return root
}

// loadEnv loads a dotenv file without overriding variables already set.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func runOnce(parent context.Context) int {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitFatal
	}

	logger, err := newLogger(os.Stdout, cfg.Log)
	if err != nil {
		slog.Error("invalid log config", "error", err)
		return exitFatal
	}
	slog.SetDefault(logger)

	logger.Info("starting pricesync",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
		"instance_id", cfg.Instance.ID,
	)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return exitFatal
	}
	defer app.Close()

	rep, err := app.pipeline.Run(ctx)
	if err != nil {
		var fatal *pipeline.FatalError
		if errors.As(err, &fatal) {
			logger.Error("run failed", "op", fatal.Op, "error", fatal.Err, "run_id", rep.RunID)
		} else {
			logger.Error("run aborted", "error", err, "run_id", rep.RunID)
		}
		return exitFatal
	}

	return exitCode(rep.Status)
}

// exitCode maps a run outcome to the process status. A fallback save is a
// degraded success: data is safe locally but the store is stale.
func exitCode(s pipeline.Status) int {
	switch s {
	case pipeline.StatusFellBack:
		return exitFellBack
	case pipeline.StatusUpdated, pipeline.StatusNoNewData, pipeline.StatusNoData, pipeline.StatusNoValidSymbols:
		return exitOK
	default:
		return exitFatal
	}
}
