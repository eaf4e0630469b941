package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/config"
	"github.com/runger/fooddiary/internal/diary"
	"github.com/runger/fooddiary/internal/logging"
	"github.com/runger/fooddiary/internal/storage"
)

// commandTimeout bounds the storage work of one CLI command.
const commandTimeout = 10 * time.Second

// app is the state shared by the diary commands: resolved config, the
// file logger and the loaded diary.
type app struct {
	paths  *config.Paths
	cfg    *config.Config
	logger *slog.Logger
	kv     storage.KV
	svc    *diary.Service

	closers []io.Closer
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig() (*config.Paths, *config.Config, error) {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(paths.ConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagDB != "" {
		cfg.Storage.Path = flagDB
	}
	if flagEphemeral {
		cfg.Storage.Ephemeral = true
	}
	return paths, cfg, nil
}

// openStorage resolves config, opens the log file and the diary storage.
func openStorage(cmd *cobra.Command) (*app, error) {
	paths, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{paths: paths, cfg: cfg}

	logger, closer, err := logging.OpenFile(cfg.LogFilePath(paths), cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%sWarning:%s logging disabled: %v\n", colorYellow, colorReset, err)
		logger = logging.Discard()
	} else {
		a.closers = append(a.closers, closer)
	}
	a.logger = logger

	if cfg.Storage.Ephemeral {
		a.kv = storage.NewMemoryStore()
	} else {
		store, err := storage.NewSQLiteStore(cfg.DatabasePath(paths))
		if err != nil {
			logging.LogSQLiteError(logger, "open", err)
			_ = a.Close()
			return nil, fmt.Errorf("failed to open diary: %w", err)
		}
		a.kv = store
	}
	a.closers = append(a.closers, a.kv)
	return a, nil
}

// openApp opens storage and loads the diary. Storage warnings are printed
// to the command's stderr.
func openApp(cmd *cobra.Command, opts ...diary.Option) (*app, error) {
	a, err := openStorage(cmd)
	if err != nil {
		return nil, err
	}

	stderr := cmd.ErrOrStderr()
	base := []diary.Option{
		diary.WithLogger(a.logger),
		diary.WithNotifier(diary.NotifierFunc(func(msg string) {
			fmt.Fprintf(stderr, "%sWarning:%s %s\n", colorYellow, colorReset, msg)
		})),
	}
	a.svc = diary.NewService(a.kv, append(base, opts...)...)

	ctx, cancel := a.context(cmd)
	defer cancel()
	a.svc.Load(ctx)
	return a, nil
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, commandTimeout)
}

func (a *app) startupInfo() logging.StartupInfo {
	return logging.StartupInfo{
		Version:      Version,
		ConfigPath:   a.paths.ConfigFile(),
		DatabasePath: a.cfg.DatabasePath(a.paths),
		Ephemeral:    a.cfg.Storage.Ephemeral,
		Locale:       a.cfg.UI.Locale,
		PID:          os.Getpid(),
	}
}

// Close releases storage and the log file, last opened first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// withApp opens the diary, runs fn and closes it again.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.context(cmd)
	defer cancel()
	return fn(ctx, a)
}
