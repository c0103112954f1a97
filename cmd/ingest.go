package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/wefrigerator/fridge-ingest/internal/ingest"
)

var (
	ingestDryRun       bool
	ingestIncludeSites bool
	ingestFormat       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [provider...]",
	Short: "Run one or more providers now",
	Long:  "Runs the named providers (registry tags or routes, all when none are given) concurrently and prints each run result. Runs are independent: one failing does not stop the others.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		env, err := initEnv(ctx, !ingestDryRun, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		providers, err := env.Registry.Select(args)
		if err != nil {
			return err
		}

		outcomes := env.Engine.RunMany(ctx, providers, ingest.RunOptions{
			DryRun:       ingestDryRun,
			IncludeSites: ingestIncludeSites,
		})

		reports, failed := outcomeReports(outcomes)
		var report any = reports
		if len(reports) == 1 {
			report = reports[0]
		}
		if err := writeReport(os.Stdout, ingestFormat, report); err != nil {
			return err
		}
		if failed > 0 {
			return eris.Errorf("%d of %d provider runs failed", failed, len(outcomes))
		}
		return nil
	},
}

// outcomeReports renders each outcome as its trigger response body.
func outcomeReports(outcomes []ingest.RunOutcome) ([]json.RawMessage, int) {
	reports := make([]json.RawMessage, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		var v any = o.Result
		if o.Err != nil {
			failed++
			v = failedRun{Success: false, Source: o.Provider, Error: o.Err.Error()}
		}
		data, err := json.Marshal(v)
		if err != nil {
			data, _ = json.Marshal(failedRun{Source: o.Provider, Error: err.Error()})
		}
		reports = append(reports, data)
	}
	return reports, failed
}

// failedRun is the report line of a run that returned an error.
type failedRun struct {
	Success bool   `json:"success"`
	Source  string `json:"source"`
	Error   string `json:"error"`
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "fetch and process without touching the store")
	ingestCmd.Flags().BoolVar(&ingestIncludeSites, "include-sites", false, "print sites and org clusters for every provider")
	ingestCmd.Flags().StringVar(&ingestFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(ingestCmd)
}
