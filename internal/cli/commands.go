package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/ui"
)

const lsHint = "Hint: run `tada ls` to see valid indexes"

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a new item (text can be multiple words)",
		Example: `  tada add "Buy milk"
  tada add Walk the dog`,
		Args: minArgs(1, "usage: tada add <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			res := a.mgr.AddAction(model.ActionState{}, url.Values{todo.FormField: {text}})
			if err := actionErr(res); err != nil {
				return err
			}
			todos := a.mgr.Todos()
			ui.OK(fmt.Sprintf("added #%d", len(todos)))
			return nil
		},
	}
}

func (a *app) doneCmd() *cobra.Command {
	var byID bool
	cmd := &cobra.Command{
		Use:   "done <ref>",
		Short: "Toggle done for an item (1-based index, or id with --id)",
		Args:  exactArgs(1, "usage: tada done <index>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0], byID)
			if err != nil {
				return err
			}
			t := a.mgr.TentativeToggle(id)
			if err := actionErr(t.CommitOrRevert()); err != nil {
				return err
			}
			it, _ := a.mgr.Get(id)
			if it.Completed {
				ui.OK("done")
			} else {
				ui.OK("reopened")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&byID, "id", false, "treat <ref> as an item id")
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	var byID bool
	cmd := &cobra.Command{
		Use:     "rm <ref>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove an item (1-based index, or id with --id)",
		Args:    exactArgs(1, "usage: tada rm <index>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0], byID)
			if err != nil {
				return err
			}
			t := a.mgr.TentativeDelete(id)
			if err := actionErr(t.CommitOrRevert()); err != nil {
				return err
			}
			ui.OK("removed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&byID, "id", false, "treat <ref> as an item id")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var byID bool
	cmd := &cobra.Command{
		Use:   "edit <ref> <text...>",
		Short: "Replace the text of an item",
		Args:  minArgs(2, "usage: tada edit <index> <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0], byID)
			if err != nil {
				return err
			}
			res := a.mgr.UpdateAction(id, strings.Join(args[1:], " "))
			if err := actionErr(res); err != nil {
				return err
			}
			ui.OK("updated")
			return nil
		},
	}
	cmd.Flags().BoolVar(&byID, "id", false, "treat <ref> as an item id")
	return cmd
}

// resolve maps a user reference to an item id.
func (a *app) resolve(ref string, byID bool) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
	if err != nil {
		return 0, usagef("not a number: %s", ref)
	}
	if byID {
		if _, ok := a.mgr.Get(n); !ok {
			return 0, hintError{usagef("no item with id %d", n), "Hint: run `tada export` to see ids"}
		}
		return n, nil
	}
	todos := a.mgr.Todos()
	if n < 1 || n > int64(len(todos)) {
		return 0, hintError{usagef("index out of range: have %d, got %d", len(todos), n), lsHint}
	}
	return todos[n-1].ID, nil
}

// actionErr turns a failed action into an error; validation failures are usage errors.
func actionErr(res model.ActionState) error {
	err := res.Err()
	if err == nil {
		return nil
	}
	if model.IsValidation(err) {
		return usageError{err}
	}
	return err
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{errors.New(usage)}
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError{errors.New(usage)}
		}
		return nil
	}
}
