package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sathi-support/backend/internal/ai"
	"sathi-support/backend/internal/arbiter"
	"sathi-support/backend/internal/chat"
)

type askOutput struct {
	arbiter.Outcome
	DemoMode bool    `json:"demoMode"`
	FAQScore float64 `json:"faqScore"`
}

func newAskCmd(opts *options) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Run a message through the full answer pipeline",
		Long: `ask matches the message against the FAQ table, queries Gemini (or the demo
responder when no key is configured) and prints the arbitrated reply.
Nothing is written to the conversation store.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			responder := opts.responder()
			service, err := chat.NewService(chat.Config{Table: table, Responder: responder})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := service.Process(ctx, chat.Input{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}

			out := askOutput{Outcome: result.Outcome, DemoMode: service.DemoMode(), FAQScore: result.FAQ.Score}
			if opts.outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "source: %s  confidence: %.2f  escalation: %t  demo: %t\n\n", out.Source, out.Confidence, out.EscalationOffered, out.DemoMode)
			fmt.Fprintln(w, out.Reply)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "overall deadline for the request")
	return cmd
}

func (o *options) responder() ai.Responder {
	return ai.NewResponder(o.cfg.AI)
}
