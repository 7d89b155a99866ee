package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sathi-support/backend/internal/faq"
)

func newFAQCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "Inspect the FAQ table",
	}
	cmd.AddCommand(newFAQListCmd(opts), newFAQMatchCmd(opts))
	return cmd
}

func newFAQListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List FAQ entries with their keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			entries := table.Entries()
			if opts.outputJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tQUESTION\tKEYWORDS\tBASE")
			for i, entry := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n", i+1, entry.Question, strings.Join(entry.Keywords, ", "), entry.BaseConfidence)
			}
			return w.Flush()
		},
	}
}

type matchOutput struct {
	Message  string  `json:"message"`
	Question string  `json:"question,omitempty"`
	Score    float64 `json:"score"`
	Accepted bool    `json:"accepted"`
}

func newFAQMatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "match <message>",
		Short: "Score a message against the FAQ table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			message := strings.Join(args, " ")
			result := faq.Match(message, table)

			out := matchOutput{Message: message, Score: result.Score, Accepted: result.Accepted()}
			if result.Found() {
				out.Question = result.Entry.Question
			}
			if opts.outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if !result.Found() {
				fmt.Fprintln(cmd.OutOrStdout(), "no FAQ entry matched")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "best match: %s\nscore: %.2f (accepted: %t)\n", out.Question, out.Score, out.Accepted)
			return nil
		},
	}
}
