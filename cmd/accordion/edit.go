package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/accordion/pkg/accordion"
	"github.com/vanderheijden86/accordion/pkg/model"
)

func newAddCmd(a *app) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a folder",
		Long: `Add a top-level folder, or a subfolder with --parent. The parent is
opened so the new folder is visible. Without a title, accordion asks for one
in a terminal and uses the default title otherwise.

Examples:
  accordion add Projects
  accordion add --parent 3f2c... "Q4 planning"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			if len(args) == 0 && a.isTerminal() {
				var err error
				if title, err = promptTitle(a.cfg.UI.DefaultTitle); err != nil {
					return err
				}
			}
			return a.withList(cmd.Context(), func(list *accordion.Model) error {
				var (
					rec model.Node
					err error
				)
				if parent != "" {
					rec, err = list.AddChild(cmd.Context(), parent, title)
				} else {
					rec, err = list.AddRoot(cmd.Context(), title)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q [%s]\n", rec.Title, rec.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "id of the folder to add into")
	return cmd
}

// promptTitle asks for a folder title.
func promptTitle(placeholder string) (string, error) {
	var title string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Folder title").
				Placeholder(placeholder).
				Value(&title),
		),
	).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return "", err
	}
	return title, nil
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, title := args[0], strings.Join(args[1:], " ")
			return a.withList(cmd.Context(), func(list *accordion.Model) error {
				if err := list.Rename(cmd.Context(), id, title); err != nil {
					return err
				}
				rec, _ := list.Folder(id)
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed [%s] to %q\n", id, rec.Title)
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a folder and everything inside it",
		Long: `Delete a folder together with all of its subfolders. Only allowed while
the list is in manual order. Asks for confirmation in a terminal; pass --yes
to skip it, which is required when not running in a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withList(cmd.Context(), func(list *accordion.Model) error {
				rec, ok := list.Folder(id)
				if !ok {
					return fmt.Errorf("%w: %s", accordion.ErrNotFound, id)
				}
				if !yes {
					if !a.isTerminal() {
						return errors.New("refusing to delete without --yes")
					}
					confirmed, err := confirmDelete(rec.Title)
					if err != nil {
						return err
					}
					if !confirmed {
						fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
						return nil
					}
				}
				if err := list.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q [%s]\n", rec.Title, id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func confirmDelete(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q and everything inside it?", title)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Open or close a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withList(cmd.Context(), func(list *accordion.Model) error {
				if err := list.ToggleExpand(cmd.Context(), id); err != nil {
					return err
				}
				rec, _ := list.Folder(id)
				state := "closed"
				if rec.IsExpanded {
					state = "open"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q is %s\n", rec.Title, state)
				return nil
			})
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a row of the list to another position",
		Long: `Move the row at position <from> to position <to>, counting visible rows
from 0 as "accordion list" prints them. Either argument may also be a folder
id, meaning that folder's current position. Every visible folder is
renumbered afterwards. Only allowed in manual order.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withList(cmd.Context(), func(list *accordion.Model) error {
				from, err := position(list, args[0])
				if err != nil {
					return err
				}
				to, err := position(list, args[1])
				if err != nil {
					return err
				}
				if err := list.Move(cmd.Context(), from, to); err != nil {
					return err
				}
				return printRows(cmd.OutOrStdout(), list.CurrentRows(), false)
			})
		},
	}
}

// position resolves a row number or folder id to a visible position.
func position(list *accordion.Model, arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		return n, nil
	}
	if i := list.IndexOf(arg); i >= 0 {
		return i, nil
	}
	return 0, fmt.Errorf("%q is neither a row number nor a visible folder id", arg)
}

func newSortCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sort [manual|created|title|modified] [asc|desc]",
		Short: "Show or change the list order",
		Long: `Without arguments, print the current order. Otherwise set the sort key
and, optionally, the direction. The choice is saved in the config file.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := accordion.Settings{SortKey: a.cfg.Sort.Key, Ascending: a.cfg.Sort.Ascending}
			if len(args) == 0 {
				fmt.Fprintf(out, "%s %s\n", s.SortKey.Label(), s.Direction())
				return nil
			}

			key, err := model.ParseSortKey(args[0])
			if err != nil {
				return err
			}
			ascending := s.Ascending
			if len(args) == 2 {
				switch strings.ToLower(args[1]) {
				case "asc", "ascending", "up":
					ascending = true
				case "desc", "descending", "down":
					ascending = false
				default:
					return fmt.Errorf("unknown direction %q (use asc or desc)", args[1])
				}
			}
			return a.withList(cmd.Context(), func(list *accordion.Model) error {
				if err := list.SetSort(cmd.Context(), key, ascending); err != nil {
					return err
				}
				s := list.Settings()
				fmt.Fprintf(out, "Sorted by %s %s\n", s.SortKey.Label(), s.Direction())
				return nil
			})
		},
	}
}
