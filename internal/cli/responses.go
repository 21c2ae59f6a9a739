package cli

import (
	"fmt"
	"time"

	"github.com/Adda-Baaj/docquery/internal/domain"
	"github.com/Adda-Baaj/docquery/internal/render"
	"github.com/Adda-Baaj/docquery/pkg/apiclient"
	"github.com/spf13/cobra"
)

func newResponsesCmd(s *session) *cobra.Command {
	responsesCmd := &cobra.Command{
		Use:   "responses",
		Short: "Browse answers stored by the API",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			body, err := a.Client().ListResponses(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if s.jsonOut {
				return render.JSON(out, body)
			}

			var list domain.ResponseList
			if err := body.Decode(&list); err != nil {
				return err
			}
			if len(list.Responses) == 0 {
				render.Line(out, render.Muted, "no stored responses")
				return nil
			}
			rows := make([][]string, 0, len(list.Responses))
			for _, r := range list.Responses {
				rows = append(rows, []string{r.Path, render.Bytes(r.Size), modifiedTime(r.Modified)})
			}
			render.Table(out, []string{"PATH", "SIZE", "MODIFIED"}, rows)
			render.Line(out, render.Muted, "%d response(s)", list.Total)
			return nil
		},
	}

	var save, text bool
	getCmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Show one stored response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			body, err := a.Client().GetResponse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if save {
				archive, err := a.Archive()
				if err != nil {
					return err
				}
				if err := archive.Put(args[0], body); err != nil {
					return fmt.Errorf("archive %s: %w", args[0], err)
				}
				render.Line(cmd.ErrOrStderr(), render.Muted, "archived %s", args[0])
			}
			return printResponse(cmd, s, body, text)
		},
	}
	getCmd.Flags().BoolVar(&save, "save", false, "keep a copy in the local archive")
	getCmd.Flags().BoolVar(&text, "text", false, "strip HTML markup from the content")

	deleteCmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete one stored response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			body, err := a.Client().DeleteResponse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printMessage(cmd, s, body)
		},
	}

	responsesCmd.AddCommand(listCmd)
	responsesCmd.AddCommand(getCmd)
	responsesCmd.AddCommand(deleteCmd)
	return responsesCmd
}

func printResponse(cmd *cobra.Command, s *session, body apiclient.Envelope, text bool) error {
	out := cmd.OutOrStdout()
	if s.jsonOut {
		return render.JSON(out, body)
	}
	var rc domain.ResponseContent
	if err := body.Decode(&rc); err != nil {
		return err
	}
	content := rc.Content
	if text {
		content = render.PlainText(content)
	}
	render.Line(out, render.Heading, "%s", rc.Filename)
	fmt.Fprintln(out, content)
	return nil
}

// modifiedTime formats the server's float epoch seconds.
func modifiedTime(epoch float64) string {
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).Local().Format("2006-01-02 15:04")
}
