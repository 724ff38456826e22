package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yairfalse/ocitally/pkg/report"
)

var familiesCmd = &cobra.Command{
	Use:   "families",
	Short: "List every report family and its CSV header",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printFamilies(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(familiesCmd)
}

// printFamilies writes one "family: header" line per family in upload order.
func printFamilies(w io.Writer) error {
	for _, f := range report.Families() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", f.Name, f.Header()); err != nil {
			return err
		}
	}
	return nil
}
