package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wefrigerator/fridge-ingest/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the registered providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatProviders(os.Stdout, buildRegistry(cfg).All())
		return nil
	},
}

// formatProviders writes a tabular list of providers to out.
func formatProviders(out io.Writer, providers []provider.Provider) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TAG\tROUTE\tCOUNT_KEY\tDEDUPE_M\tOPTIONAL\tURL")
	_, _ = fmt.Fprintln(w, "---\t-----\t---------\t--------\t--------\t---")
	for _, p := range providers {
		t := p.Traits()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%t\t%s\n",
			p.Name(), p.Route(), t.CountKey, t.DedupeThresholdM, t.Optional, p.Request().URL)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
