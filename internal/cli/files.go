package cli

import (
	"errors"

	"github.com/Adda-Baaj/docquery/internal/domain"
	"github.com/Adda-Baaj/docquery/internal/render"
	"github.com/Adda-Baaj/docquery/pkg/apiclient"
	"github.com/spf13/cobra"
)

func newFilesCmd(s *session) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "List and remove uploaded files",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			body, err := a.Client().ListFiles(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if s.jsonOut {
				return render.JSON(out, body)
			}

			var list domain.FileList
			if err := body.Decode(&list); err != nil {
				return err
			}
			if len(list.Files) == 0 {
				render.Line(out, render.Muted, "no files uploaded")
				return nil
			}
			rows := make([][]string, 0, len(list.Files))
			for _, f := range list.Files {
				rows = append(rows, []string{f.Path, f.Extension, render.Bytes(f.Size)})
			}
			render.Table(out, []string{"PATH", "TYPE", "SIZE"}, rows)
			render.Line(out, render.Muted, "%d file(s)", list.Total)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete one uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			body, err := a.Client().DeleteFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printMessage(cmd, s, body)
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every uploaded file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear all files without --yes")
			}
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			body, err := a.Client().ClearAllFiles(cmd.Context())
			if err != nil {
				return err
			}
			return printMessage(cmd, s, body)
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting all files")

	filesCmd.AddCommand(listCmd)
	filesCmd.AddCommand(deleteCmd)
	filesCmd.AddCommand(clearCmd)
	return filesCmd
}

// printMessage renders the {"message": ...} body of mutating endpoints.
func printMessage(cmd *cobra.Command, s *session, body apiclient.Envelope) error {
	out := cmd.OutOrStdout()
	if s.jsonOut {
		return render.JSON(out, body)
	}
	var msg domain.Message
	if err := body.Decode(&msg); err != nil {
		return err
	}
	render.Line(out, render.Success, "%s", msg.Message)
	return nil
}
