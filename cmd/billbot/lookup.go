package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newBillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bill <number...>",
		Short: "Print details for one bill, e.g. bill HB 1221",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := newQueryService()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), queries.GetBillDetails(strings.Join(args, " ")))
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query...]",
		Short: "Print bill numbers whose number, title or summary contain the query",
		Long: `Print bill numbers whose number, title or summary contain the query,
ignoring case. An empty query matches every bill.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := newQueryService()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), queries.SearchBills(strings.Join(args, " ")))
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
