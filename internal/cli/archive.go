package cli

import (
	"fmt"

	"github.com/Adda-Baaj/docquery/internal/render"
	"github.com/spf13/cobra"
)

func newArchiveCmd(s *session) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect responses saved locally with 'responses get --save'",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			archive, err := s.archive(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := archive.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				render.Line(out, render.Muted, "archive is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Path,
					e.SavedAt.Local().Format("2006-01-02 15:04"),
					e.ExpiresAt.Local().Format("2006-01-02 15:04"),
				})
			}
			render.Table(out, []string{"PATH", "SAVED", "EXPIRES"}, rows)
			return nil
		},
	}

	var text bool
	showCmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Show an archived response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := s.archive(cmd.Context())
			if err != nil {
				return err
			}
			entry, found, err := archive.Get(args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s is not in the archive", args[0])
			}
			return printResponse(cmd, s, entry.Body, text)
		},
	}
	showCmd.Flags().BoolVar(&text, "text", false, "strip HTML markup from the content")

	deleteCmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Remove a response from the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := s.archive(cmd.Context())
			if err != nil {
				return err
			}
			if err := archive.Delete(args[0]); err != nil {
				return err
			}
			render.Line(cmd.OutOrStdout(), render.Success, "removed %s from the archive", args[0])
			return nil
		},
	}

	archiveCmd.AddCommand(listCmd)
	archiveCmd.AddCommand(showCmd)
	archiveCmd.AddCommand(deleteCmd)
	return archiveCmd
}
