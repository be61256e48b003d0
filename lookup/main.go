// Package main provides the lookup CLI: one policy lookup rendered to the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/DeafMist/policy-depot/internal/config"
	"github.com/DeafMist/policy-depot/internal/logger"
	"github.com/DeafMist/policy-depot/internal/policyapi"
	"github.com/DeafMist/policy-depot/internal/presenter"
)

func main() {
	// Load .env file if present (for BASE_URL and API_KEY)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := ExitOK
	cmd := newRootCmd(stdout, stderr, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		if code == ExitOK {
			code = ExitUsage
		}
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	var (
		style string
		width int
	)

	cmd := &cobra.Command{
		Use:   "lookup [ID]",
		Short: "Look up a policy or clause in the policy depot",
		Long: `Fetches one policy document from the policy API and prints its
information, branches, related documents and articles.

Environment Variables:
  BASE_URL  Policy API base URL (required)
  API_KEY   Policy API key (required)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadLookup()
			if err != nil {
				*code = ExitUsage
				return err
			}

			term, err := presenter.NewTerminal(style, width)
			if err != nil {
				*code = ExitError
				return err
			}

			var raw string
			if len(args) > 0 {
				raw = args[0]
			}
			id := policyapi.NormalizeIdentifier(raw)
			if id == "" {
				*code = ExitUsage
				return term.Render(stdout, presenter.PromptView())
			}

			log := logger.NewWithWriter("lookup", stderr)
			client := policyapi.New(cfg.BaseURL, cfg.APIKey)

			fmt.Fprintln(stderr, presenter.SearchingMessage)
			res := client.Fetch(cmd.Context(), id)
			log.Debug("policy lookup",
				slog.String("identifier", id),
				slog.Int("upstream_status", res.StatusCode),
				slog.String("kind", res.Kind().String()),
			)

			*code = exitCode(res.Kind())
			if err := term.Render(stdout, presenter.ViewFor(id, res)); err != nil {
				*code = ExitError
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "auto", "Markdown style for article text (auto, dark, light, notty)")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap article text at this many columns")
	return cmd
}

func exitCode(kind policyapi.Kind) int {
	switch kind {
	case policyapi.KindDocument:
		return ExitOK
	case policyapi.KindNotFound:
		return ExitNotFound
	default:
		return ExitError
	}
}
