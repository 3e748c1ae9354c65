// Package cli is the tada command line: a cobra command tree over one
// todo.Manager per invocation.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/kv"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Exit codes.
const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

// Options wires the process streams. Zero values mean os.Stdin/Stdout/Stderr.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// usageError marks bad invocations; they exit with exitUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// hintError carries a follow-up line printed under the failure.
type hintError struct {
	err  error
	hint string
}

func (e hintError) Error() string { return e.err.Error() }
func (e hintError) Unwrap() error { return e.err }

// app is the per-invocation state shared by every command.
type app struct {
	opt   Options
	flags config.Flags

	cfg     *config.Config
	log     *log.Logger
	logFile *os.File
	storage kv.Storage
	openErr error // storage failed to open; the store runs without one
	store   *jsonstore.Store
	mgr     *todo.Manager
}

// Run executes the CLI with args (without the program name) and returns
// the process exit code: 0 ok, 1 runtime error, 2 usage or validation error.
func Run(args []string, opt Options) int {
	opt = opt.withDefaults()
	ui.SetOutput(opt.Stdout, opt.Stderr)

	a := &app{opt: opt}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(opt.Stdin)
	root.SetOut(opt.Stdout)
	root.SetErr(opt.Stderr)

	err := root.Execute()
	a.close()
	return a.report(err)
}

func (a *app) report(err error) int {
	if err == nil {
		return exitOK
	}
	ui.Fail(err.Error())
	var h hintError
	if errors.As(err, &h) && h.hint != "" {
		ui.Hint(h.hint)
	}
	var u usageError
	if errors.As(err, &u) || errors.Is(err, config.ErrInvalid) {
		return exitUsage
	}
	return exitRuntime
}

// skipSetup marks commands that run without loading the collection.
const skipSetup = "tada/skip-setup"

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tada",
		Short: "tada keeps a small todo list",
		Long: `tada keeps a small todo list on this machine.

Run "tada ls" on a terminal for the interactive list.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{skipSetup: "true"},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usagef("missing command")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/tada)")
	pf.StringVar(&a.flags.DataDir, "data-dir", "", "data directory (default: $XDG_DATA_HOME/tada)")
	pf.StringVar(&a.flags.Backend, "backend", "", "storage backend: "+strings.Join(kv.Backends, ", "))
	pf.StringVar(&a.flags.Theme, "theme", "", "color theme: "+strings.Join(ui.Themes, ", "))
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.doneCmd(),
		a.removeCmd(),
		a.editCmd(),
		a.exportCmd(),
		a.infoCmd(),
		a.initCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads config and opens storage, store and manager.
func (a *app) setup() error {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg
	ui.SetTheme(cfg.Theme)

	var logOut io.Writer = a.opt.Stderr
	if cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return err
		}
		a.logFile = f
		logOut = f
	}
	a.log = logging.New(logOut, logging.FromStrings(cfg.Log.Level, cfg.Log.Format))
	a.log.Debug("config loaded", "file", cfg.ConfigFile, "backend", cfg.Backend, "data_dir", cfg.DataDir)

	storage, err := kv.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		a.openErr = fmt.Errorf("open %s storage: %w", cfg.Backend, err)
		a.log.Warn("storage unavailable, changes will not be kept", "backend", cfg.Backend, "err", err)
		storage = nil
	}
	a.storage = storage
	a.store = jsonstore.New(storage,
		jsonstore.WithKey(cfg.StorageKey),
		jsonstore.WithLogger(a.log),
	)
	a.mgr = todo.New(a.store,
		todo.WithAutosave(cfg.Autosave),
		todo.WithLogger(a.log),
	)
	return nil
}

func (a *app) close() {
	if a.mgr != nil {
		a.mgr.Close()
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil && a.log != nil {
			a.log.Warn("close storage", "err", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
