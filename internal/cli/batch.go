package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Adda-Baaj/docquery/internal/batch"
	"github.com/Adda-Baaj/docquery/internal/domain"
	"github.com/Adda-Baaj/docquery/internal/render"
	"github.com/spf13/cobra"
)

func newBatchCmd(s *session) *cobra.Command {
	var (
		maxTokens int
		delay     time.Duration
		publish   bool
	)

	batchCmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Run one query per line of a file",
		Long:  "Run queries read from a file (or stdin with '-') in order. Blank lines and\nlines starting with '#' are ignored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := readQueryFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			if maxTokens == 0 {
				maxTokens = a.Config().MaxTokens
			}

			out := cmd.OutOrStdout()
			runner := batch.NewRunner(a.Client(), batch.Options{Delay: delay, MaxTokens: maxTokens}, a.Logger())
			return runner.Run(cmd.Context(), queries, func(ctx context.Context, res batch.Result) error {
				render.Line(out, render.Heading, "[%d] %s", res.Index+1, res.Query)
				if res.Err != nil {
					render.Line(out, render.Error, "%v", res.Err)
					return nil
				}
				if s.jsonOut {
					if err := render.JSON(out, res.Answer); err != nil {
						return err
					}
				} else {
					var ans domain.QueryAnswer
					if err := res.Answer.Decode(&ans); err != nil {
						return err
					}
					fmt.Fprintln(out, ans.Response)
				}
				if publish {
					if _, err := a.Publish(ctx, res.Query, maxTokens, res.Answer); err != nil {
						return fmt.Errorf("publish: %w", err)
					}
				}
				return nil
			})
		},
	}

	batchCmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "token budget for each answer (default MAX_TOKENS or 8000)")
	batchCmd.Flags().DurationVar(&delay, "delay", 0, "pause between queries")
	batchCmd.Flags().BoolVar(&publish, "publish", false, "send each answer to the configured publishers")
	return batchCmd
}

func readQueryFile(path string, stdin io.Reader) ([]string, error) {
	if path == "-" {
		return batch.ReadQueries(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return batch.ReadQueries(f)
}
