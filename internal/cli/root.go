// Package cli implements the docquery command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Adda-Baaj/docquery/internal/app"
	"github.com/Adda-Baaj/docquery/internal/config"
	"github.com/Adda-Baaj/docquery/internal/logger"
	"github.com/Adda-Baaj/docquery/internal/render"
	"github.com/Adda-Baaj/docquery/internal/storage"
	"github.com/Adda-Baaj/docquery/pkg/apiclient"
	"github.com/spf13/cobra"
)

// session holds global flag values and the runtime opened for one invocation.
type session struct {
	apiURL   string
	logLevel string
	jsonOut  bool

	app *app.App
}

// open loads config and builds the runtime on first use.
func (s *session) open(ctx context.Context) (*app.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	cfg, err := config.LoadWithOverrides(map[string]any{
		"api_url":   s.apiURL,
		"log_level": s.logLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	s.app = a
	return a, nil
}

// archive opens the runtime and its local archive.
func (s *session) archive(ctx context.Context) (storage.Store, error) {
	a, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	return a.Archive()
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	_ = logger.Close()
	return err
}

func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "docquery",
		Short:         "Query uploaded documents through the docquery API",
		Long:          "docquery uploads documents, runs queries against them and manages the stored answers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&s.apiURL, "api-url", "", "API base URL (absolute, or a path resolved against API_ORIGIN)")
	rootCmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&s.jsonOut, "json", false, "print raw JSON response bodies")

	rootCmd.AddCommand(newHealthCmd(s))
	rootCmd.AddCommand(newUploadCmd(s))
	rootCmd.AddCommand(newFilesCmd(s))
	rootCmd.AddCommand(newQueryCmd(s))
	rootCmd.AddCommand(newBatchCmd(s))
	rootCmd.AddCommand(newResponsesCmd(s))
	rootCmd.AddCommand(newArchiveCmd(s))
	return rootCmd
}

// Execute runs the command line in args and reports any failure on stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	s := &session{}
	rootCmd := newRootCmd(s)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if cerr := s.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		printError(stderr, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		render.Line(w, render.Error, "error: %s (%s %s)", apiErr.Message(), apiErr.Method, apiErr.Path)
		if len(apiErr.Body) > 0 {
			_ = render.JSON(w, apiErr.Body)
		}
		return
	}
	render.Line(w, render.Error, "error: %v", err)
}
