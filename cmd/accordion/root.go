package main

import (
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/accordion/pkg/config"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "accordion",
		Short: "Browse and edit a tree of folders",
		Long: `Accordion keeps folders in a tree and shows them as a collapsible list.

Folders live in a store: a SQLite database (*.db), a JSON document (*.json)
or a PostgreSQL database (postgres://...). The store is picked from --store,
then $` + config.EnvStore + `, then the config file, then the default database
in the data directory. A --store value may also name a store registered
under store.named in the config file.

Without a subcommand, accordion opens the interactive list when run in a
terminal and prints the list otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.isTerminal() {
				return runTUI(cmd, a)
			}
			return runList(cmd, a, listOptions{})
		},
	}

	root.PersistentFlags().StringVarP(&a.storeFlag, "store", "s", "", "store DSN or registered store name")
	root.PersistentFlags().StringVar(&a.configFlag, "config", "", "config file (default "+config.ConfigPath()+")")

	root.AddCommand(
		newTUICmd(a),
		newListCmd(a),
		newAddCmd(a),
		newRenameCmd(a),
		newDeleteCmd(a),
		newToggleCmd(a),
		newMoveCmd(a),
		newSortCmd(a),
		newDoctorCmd(a),
		newDiffCmd(a),
		newCopyCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}
