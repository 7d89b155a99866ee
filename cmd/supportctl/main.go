// Package main provides supportctl, an operator CLI for the Sathi support backend.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sathi-support/backend/internal/config"
	"sathi-support/backend/internal/faq"
)

type options struct {
	envFile    string
	faqPath    string
	outputJSON bool
	verbose    bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "supportctl",
		Short: "Inspect the FAQ table and exercise the Sathi chat pipeline",
		Long: `supportctl loads the same configuration as the server and lets operators
check FAQ keyword coverage or send a message through the full answer pipeline.

Without GEMINI_API_KEY the pipeline runs in demo mode and makes no network calls.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if opts.envFile != "" {
				envFiles = append(envFiles, opts.envFile)
			}
			opts.cfg = config.Load(envFiles...)
			if opts.faqPath != "" {
				opts.cfg.FAQPath = opts.faqPath
			}
			if opts.verbose {
				opts.cfg.LogLevel = "debug"
			} else {
				opts.cfg.LogLevel = "warn"
			}
			opts.cfg.ConfigureLogging()
			logrus.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "dotenv file to load (default: .env when present)")
	root.PersistentFlags().StringVar(&opts.faqPath, "faq", "", "FAQ YAML file (default: FAQ_PATH or the built-in table)")
	root.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newFAQCmd(opts), newAskCmd(opts))
	return root
}

func (o *options) table() (*faq.Table, error) {
	table, err := faq.LoadTable(o.cfg.FAQPath)
	if err != nil {
		return nil, fmt.Errorf("load faq table: %w", err)
	}
	return table, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
