package main

import (
	"os"

	"github.com/spf13/cobra"
)

var reconcileFormat string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [provider...]",
	Short: "Merge provider feeds across sources and report conflicts",
	Long:  "Fetches the named providers (all when none are given), builds each canonical site list, merges them across sources in the order given, and prints the merged sites, geo-mismatch conflicts, nearest-site matches for unmerged fridges and org clusters. Nothing is written to the store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("reconcile"); err != nil {
			return err
		}

		env, err := initEnv(ctx, false, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		providers, err := env.Registry.Select(args)
		if err != nil {
			return err
		}

		rec, err := env.Engine.Reconcile(ctx, providers)
		if err != nil {
			return err
		}
		return writeReport(os.Stdout, reconcileFormat, rec)
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(reconcileCmd)
}
