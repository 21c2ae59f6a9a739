package cli

import (
	"github.com/Adda-Baaj/docquery/internal/domain"
	"github.com/Adda-Baaj/docquery/internal/render"
	"github.com/spf13/cobra"
)

func newHealthCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			body, err := a.Client().HealthCheck(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if s.jsonOut {
				return render.JSON(out, body)
			}

			var h domain.Health
			if err := body.Decode(&h); err != nil {
				return err
			}
			render.Line(out, render.Success, "%s: %s", h.Status, h.Message)
			return nil
		},
	}
}
