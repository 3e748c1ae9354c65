package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

const maxTextWidth = 80

func (a *app) listCmd() *cobra.Command {
	var group, plain bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items (interactive on a terminal)",
		Args:    exactArgs(0, "usage: tada ls [--group] [--plain]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !plain && !group && ui.IsTerminal(a.opt.Stdout) {
				if a.logFile == nil {
					// the alt screen owns the terminal
					a.log.SetOutput(io.Discard)
				}
				return tui.Run(a.mgr)
			}
			ui.Panel(listLines(a.mgr.Todos(), group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the list instead of opening the interactive view")
	return cmd
}

// entry is an item with its 1-based position in the collection.
type entry struct {
	n  int
	it model.TodoItem
}

func listLines(items model.Collection, group bool) []string {
	th := ui.Current()
	d, p := items.Stats()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(th.Title, "Todos"),
		ui.C(th.Success, th.SymDone), d,
		ui.C(th.Pending, th.SymUnchecked), p,
		ui.C(th.Accent, "Total"), len(items),
	)

	entries := make([]entry, len(items))
	for i, it := range items {
		entries[i] = entry{n: i + 1, it: it}
	}

	lines := []string{header, ui.C(th.Muted, ui.ProgressBar(d, d+p, 28)), ""}
	if group {
		lines = append(lines, groupLines(entries)...)
	} else {
		lines = append(lines, flatLines(entries)...)
	}
	lines = append(lines, "", ui.C(th.Muted, "Tip: add with `tada add \"Buy milk\"`"))
	return lines
}

func flatLines(entries []entry) []string {
	th := ui.Current()
	if len(entries) == 0 {
		return []string{ui.C(th.Muted, "no items")}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		box, color := th.BoxUnchecked, th.Muted
		if e.it.Completed {
			box, color = th.BoxChecked, th.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.Dim(fmt.Sprintf("%2d.", e.n)), ui.C(color, box), ui.Truncate(e.it.Text, maxTextWidth)))
	}
	return out
}

// groupLines keeps collection indexes so they still work with done and rm.
func groupLines(entries []entry) []string {
	th := ui.Current()
	var pend, done []entry
	for _, e := range entries {
		if e.it.Completed {
			done = append(done, e)
		} else {
			pend = append(pend, e)
		}
	}
	section := func(title string, es []entry) []string {
		lines := []string{ui.C(th.Accent, title)}
		if len(es) == 0 {
			return append(lines, ui.C(th.Muted, "(none)"))
		}
		return append(lines, flatLines(es)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
