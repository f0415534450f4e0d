package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/ideas/internal/adapters/storage/jsonfile"
	"github.com/evanschultz/ideas/internal/adapters/storage/sqlite"
	"github.com/evanschultz/ideas/internal/app"
	"github.com/evanschultz/ideas/internal/config"
	"github.com/evanschultz/ideas/internal/platform"
	"github.com/evanschultz/ideas/internal/tui"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

const appName = "ideas"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// pathsFactory resolves platform paths; tests swap it for fixed directories.
var pathsFactory = platform.DefaultPathsWithOptions

// main handles main.
func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the flag values shared by every command.
type rootOptions struct {
	configPath string
	dataDir    string
	backend    string
	devMode    bool
}

// newRootCommand builds the command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("IDEAS_DEV_MODE"); ok {
		opts.devMode = envDev
	}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Keep a list of ideas in the terminal",
		Long:          "ideas is a small modal terminal app for jotting down ideas with a title and a description.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, stderr, "tui", runTUI)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML (env IDEAS_CONFIG)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory holding the idea files")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: json or sqlite")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (ideas-dev) and dev file logging")

	root.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "Print the resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPaths(opts, stdout)
		},
	})

	var outPath string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the resolved configuration to the config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(opts, force, stdout)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	root.AddCommand(initCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the persisted ideas as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, stderr, "export", func(ctx context.Context, s session) error {
				return runExport(ctx, s.svc, outPath, stdout)
			})
		},
	}
	exportCmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	root.AddCommand(exportCmd)

	var inPath string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the persisted ideas with a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, stderr, "import", func(ctx context.Context, s session) error {
				return runImport(ctx, s.svc, inPath)
			})
		},
	}
	importCmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	_ = importCmd.MarkFlagRequired("in")
	root.AddCommand(importCmd)
	return root
}

// resolved bundles the startup configuration shared by commands.
type resolved struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
}

// resolveConfig applies defaults, the config file, env and flags in that order.
func resolveConfig(opts *rootOptions) (resolved, error) {
	paths, err := pathsFactory(platform.Options{AppName: appName, DevMode: opts.devMode})
	if err != nil {
		return resolved{}, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("IDEAS_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(paths.DataDir))
	if err != nil {
		return resolved{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dir := strings.TrimSpace(opts.dataDir); dir != "" {
		cfg.Storage.DataDir = dir
	}
	if backend := strings.TrimSpace(opts.backend); backend != "" {
		cfg.Storage.Backend = config.Backend(strings.ToLower(backend))
	}
	if err := cfg.Validate(); err != nil {
		return resolved{}, err
	}
	return resolved{paths: paths, configPath: configPath, cfg: cfg}, nil
}

// runPaths prints where configuration and data live.
func runPaths(opts *rootOptions, stdout io.Writer) error {
	r, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
	_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
	_, _ = fmt.Fprintf(stdout, "config: %s\n", r.configPath)
	_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", r.cfg.Storage.DataDir)
	_, _ = fmt.Fprintf(stdout, "backend: %s\n", r.cfg.Storage.Backend)
	switch r.cfg.Storage.Backend {
	case config.BackendSQLite:
		_, _ = fmt.Fprintf(stdout, "db: %s\n", r.cfg.DBPath())
	default:
		_, _ = fmt.Fprintf(stdout, "ideas: %s\n", r.cfg.IdeasPath())
		_, _ = fmt.Fprintf(stdout, "index: %s\n", r.cfg.IndexPath())
	}
	return nil
}

// runInit writes the resolved config so later runs pick it up without flags.
func runInit(opts *rootOptions, force bool, stdout io.Writer) error {
	r, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(r.configPath); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", r.configPath)
		}
	}
	if err := config.Write(r.configPath, r.cfg); err != nil {
		return fmt.Errorf("write config %q: %w", r.configPath, err)
	}
	_, _ = fmt.Fprintf(stdout, "config: %s\n", r.configPath)
	return nil
}

// session is what a command needs once storage and logging are up.
type session struct {
	cfg    config.Config
	logger *runtimeLogger
	svc    *app.Service
}

// withService resolves config, opens logging and storage, and hands a service to fn.
func withService(ctx context.Context, opts *rootOptions, stderr io.Writer, command string, fn func(context.Context, session) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	cfg := r.cfg

	logger, err := newRuntimeLogger(stderr, appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the list is active.
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "dev_mode", opts.devMode, "command", command, "config_path", r.configPath)
	logger.Info("configuration loaded", "backend", cfg.Storage.Backend, "data_dir", cfg.Storage.DataDir, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		logger.Error("repository open failed", "backend", cfg.Storage.Backend, "err", err)
		return err
	}
	defer func() {
		if closeErr := closeRepo(); closeErr != nil {
			logger.Error("repository close failed", "backend", cfg.Storage.Backend, "err", closeErr)
		}
	}()

	svc, err := app.NewService(repo)
	if err != nil {
		return err
	}

	logger.Info("command flow start", "command", command)
	if err := fn(ctx, session{cfg: cfg, logger: logger, svc: svc}); err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	logger.Info("command flow complete", "command", command)
	return nil
}

// runTUI loads persisted state and runs the program loop.
func runTUI(ctx context.Context, s session) error {
	store, err := s.svc.Load(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("ideas loaded", "count", store.Len(), "active", store.Active())

	m := tui.NewModel(
		s.svc,
		tui.WithLogger(s.logger),
		tui.WithUIConfig(tui.UIConfig{
			ModalWidthPercent:  s.cfg.UI.ModalWidthPercent,
			ModalHeightPercent: s.cfg.UI.ModalHeightPercent,
			MarkdownPreview:    s.cfg.UI.MarkdownPreview,
		}),
	)
	s.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		return fmt.Errorf("run tui program: %w", err)
	}
	return nil
}

// runExport writes a snapshot of the persisted state to outPath or stdout.
func runExport(ctx context.Context, svc *app.Service, outPath string, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	outPath = strings.TrimSpace(outPath)
	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport replaces the persisted state with the snapshot at inPath.
func runImport(ctx context.Context, svc *app.Service, inPath string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// openRepository opens the configured backend and returns its closer.
func openRepository(cfg config.Config) (app.Repository, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		repo, err := sqlite.Open(cfg.DBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		return repo, repo.Close, nil
	case config.BackendJSON:
		repo, err := jsonfile.Open(cfg.IdeasPath(), cfg.IndexPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open json repository: %w", err)
		}
		return repo, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// parseBoolEnv reads a boolean environment variable.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
