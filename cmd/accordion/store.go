package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/accordion/internal/datasource"
	"github.com/vanderheijden86/accordion/pkg/metrics"
	"github.com/vanderheijden86/accordion/pkg/tree"
	"github.com/vanderheijden86/accordion/pkg/version"
)

var (
	errDiffers  = errors.New("sources differ")
	errProblems = errors.New("store has integrity problems")
)

func newDoctorCmd(a *app) *cobra.Command {
	var timings bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the store and report integrity problems",
		Long: `Open the store, read every folder and report what the list had to work
around: folders whose parent is missing (shown at the top level), folders
caught in a parent loop (hidden) and duplicate ids (later copy ignored).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			src, err := a.source()
			if err != nil {
				return err
			}
			datasource.ValidateSource(ctx, &src)
			fmt.Fprintf(out, "Store:  %s\n", src)
			fmt.Fprintf(out, "Config: %s\n", a.configPath())

			store, err := datasource.OpenSource(ctx, src)
			if err != nil {
				return err
			}
			defer store.Close()
			recs, err := store.List(ctx)
			if err != nil {
				return err
			}
			forest := tree.Build(recs)
			if timings {
				if err := printTimings(cmd, a, store); err != nil {
					return err
				}
			}
			if len(forest.Problems) == 0 {
				fmt.Fprintf(out, "OK: %d folders, %d at the top level\n", forest.Len(), len(forest.Roots))
				return nil
			}
			fmt.Fprintf(out, "%d problems:\n", len(forest.Problems))
			for _, p := range forest.Problems {
				fmt.Fprintf(out, "  - [%s] %s\n", p.Kind, p.Error())
			}
			return errProblems
		},
	}
	cmd.Flags().BoolVar(&timings, "timings", false, "load the list and print how long each step took")
	return cmd
}

// printTimings loads the list through the normal path and reports the
// recorded timings.
func printTimings(cmd *cobra.Command, a *app, store datasource.Store) error {
	metrics.SetEnabled(true)
	metrics.ResetAll()
	list, err := a.openList(cmd.Context(), store, false)
	if err != nil {
		return err
	}
	list.CurrentRows()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Timings:")
	for _, s := range metrics.AllStats() {
		fmt.Fprintf(out, "  %-12s %3d× avg %.3fms max %.3fms\n", s.Name, s.Count, s.AvgMs, s.MaxMs)
	}
	return nil
}

func newDiffCmd(a *app) *cobra.Command {
	opts := datasource.DefaultDiffOptions()
	cmd := &cobra.Command{
		Use:   "diff <store-a> <store-b>",
		Short: "Compare the folders of two stores",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			diff, err := datasource.CompareSources(cmd.Context(),
				a.cfg.ResolveDSN(args[0]), a.cfg.ResolveDSN(args[1]), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), diff.Summary())
			if diff.HasInconsistencies() {
				return errDiffers
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.CompareFields, "fields", opts.CompareFields, "fields to compare: title, parent, order, expanded")
	cmd.Flags().IntVar(&opts.MaxDifferences, "max", opts.MaxDifferences, "stop after this many differing fields (0 = all)")
	return cmd
}

func newCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <from> <to>",
		Short: "Copy every folder from one store into another",
		Long: `Copy every folder from one store into another in a single write. Folders
already in the destination with the same id are replaced; others are kept.

Example:
  accordion copy ~/folders.json postgres://localhost/accordion`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := datasource.Open(ctx, a.cfg.ResolveDSN(args[0]))
			if err != nil {
				return err
			}
			defer src.Close()
			dst, err := datasource.Open(ctx, a.cfg.ResolveDSN(args[1]))
			if err != nil {
				return err
			}
			defer dst.Close()

			n, err := datasource.Copy(ctx, dst, src)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d folders\n", n)
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", a.configPath())
			fmt.Fprintf(out, "# store in use: %s\n", a.cfg.ResolveDSN(a.storeFlag))
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}
