package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/docquery/internal/app"
	"github.com/Adda-Baaj/docquery/internal/domain"
	"github.com/Adda-Baaj/docquery/internal/render"
	"github.com/Adda-Baaj/docquery/pkg/apiclient"
	"github.com/spf13/cobra"
)

func newQueryCmd(s *session) *cobra.Command {
	var (
		maxTokens int
		stream    bool
		publish   bool
	)

	queryCmd := &cobra.Command{
		Use:   "query <text>...",
		Short: "Ask a question about the uploaded documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			if maxTokens == 0 {
				maxTokens = a.Config().MaxTokens
			}

			var answer []byte
			if stream {
				answer, err = streamQuery(cmd, a, text, maxTokens)
			} else {
				answer, err = sendQuery(cmd, s, a, text, maxTokens)
			}
			if err != nil {
				return err
			}
			if !publish {
				return nil
			}

			n, err := a.Publish(cmd.Context(), text, maxTokens, answer)
			if err != nil {
				if errors.Is(err, app.ErrNoPublishers) {
					return fmt.Errorf("--publish needs PUBLISHERS_FILE: %w", err)
				}
				return fmt.Errorf("publish answer (%d delivered): %w", n, err)
			}
			render.Line(cmd.ErrOrStderr(), render.Muted, "published to %d sink(s)", n)
			return nil
		},
	}

	queryCmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "token budget for the answer (default MAX_TOKENS or 8000)")
	queryCmd.Flags().BoolVar(&stream, "stream", false, "print the answer as it is generated")
	queryCmd.Flags().BoolVar(&publish, "publish", false, "send the answer to the configured publishers")
	return queryCmd
}

func sendQuery(cmd *cobra.Command, s *session, a *app.App, text string, maxTokens int) ([]byte, error) {
	body, err := a.Client().SendQuery(cmd.Context(), text, apiclient.WithMaxTokens(maxTokens))
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	if s.jsonOut {
		return body, render.JSON(out, body)
	}

	var ans domain.QueryAnswer
	if err := body.Decode(&ans); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, ans.Response)
	render.Line(cmd.ErrOrStderr(), render.Muted, "tokens: %d in, %d out", ans.Usage.InputTokens, ans.Usage.OutputTokens)
	return body, nil
}

// streamQuery echoes stream lines as they arrive and returns the collected
// text wrapped as {"response": ...} for publishing.
func streamQuery(cmd *cobra.Command, a *app.App, text string, maxTokens int) ([]byte, error) {
	qs, err := a.Client().CreateQueryStream(cmd.Context(), text, apiclient.WithMaxTokens(maxTokens))
	if err != nil {
		return nil, err
	}
	defer qs.Close()

	out := cmd.OutOrStdout()
	var sb strings.Builder
	for qs.Next() {
		chunk := qs.Chunk()
		fmt.Fprintln(out, chunk)
		sb.WriteString(chunk)
		sb.WriteByte('\n')
	}
	if err := qs.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return json.Marshal(domain.QueryAnswer{Response: strings.TrimRight(sb.String(), "\n")})
}
