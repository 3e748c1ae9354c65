package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/export"
	"github.com/Makepad-fr/tada/internal/kv"
	"github.com/Makepad-fr/tada/internal/ui"
)

func (a *app) exportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all items as json, yaml or toml",
		Args:  exactArgs(0, "usage: tada export [--format json|yaml|toml] [-o file]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return usageError{err}
			}
			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), f, a.mgr.Todos())
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := export.Write(file, f, a.mgr.Todos()); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			ui.OK(fmt.Sprintf("exported %d items to %s", a.mgr.Len(), output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatJSON, "output format: json, yaml or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// pather is implemented by storages that live on disk.
type pather interface {
	Path() string
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show where configuration and items are kept",
		Args:  exactArgs(0, "usage: tada info"),
		RunE: func(cmd *cobra.Command, args []string) error {
			th := ui.Current()
			cfgFile := a.cfg.ConfigFile
			if cfgFile == "" {
				cfgFile = ui.C(th.Muted, "(none, using defaults)")
			}
			location := ui.C(th.Muted, "(in memory)")
			switch p, ok := a.storage.(pather); {
			case a.openErr != nil:
				location = ui.C(th.Error, "(unavailable: "+a.openErr.Error()+")")
			case !a.store.Available():
				location = ui.C(th.Muted, "(no storage, changes are not kept)")
			case ok:
				location = p.Path()
			}
			done, pending := a.mgr.Todos().Stats()
			autosave := "on"
			if !a.cfg.Autosave {
				autosave = "off"
			}
			row := func(k, v string) string { return fmt.Sprintf("%-12s %s", ui.C(th.Accent, k), v) }
			ui.Panel([]string{
				ui.C(th.Title, "tada ") + Version,
				"",
				row("config dir", a.cfg.ConfigDir),
				row("config file", cfgFile),
				row("data dir", a.cfg.DataDir),
				row("backend", a.cfg.Backend),
				row("location", location),
				row("storage key", a.store.Key()),
				row("autosave", autosave),
				row("theme", ui.Current().Name),
				row("items", fmt.Sprintf("%d (%d done, %d pending)", done+pending, done, pending)),
			})
			return nil
		},
	}
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Write a default config.yaml and create the data directory",
		Args:        exactArgs(0, "usage: tada init"),
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := config.ResolveConfigDir(a.flags.ConfigDir)
			if err != nil {
				return err
			}
			path, created, err := config.WriteDefault(configDir)
			if err != nil {
				return err
			}
			if created {
				ui.OK("wrote " + path)
			} else {
				ui.OK("config already exists: " + path)
			}

			cfg, err := config.Load(a.flags)
			if err != nil {
				return err
			}
			if cfg.Backend == kv.BackendFile || cfg.Backend == kv.BackendSQLite {
				if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
					return fmt.Errorf("create data dir: %w", err)
				}
				ui.OK("data dir " + cfg.DataDir)
			}
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the tada version",
		Args:        exactArgs(0, "usage: tada version"),
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "tada", Version)
			return nil
		},
	}
}
