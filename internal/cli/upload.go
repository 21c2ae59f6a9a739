package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adda-Baaj/docquery/internal/domain"
	"github.com/Adda-Baaj/docquery/internal/render"
	"github.com/Adda-Baaj/docquery/pkg/apiclient"
	"github.com/spf13/cobra"
)

func newUploadCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload files or directories",
		Long: "Upload files to the API. Directories are walked and each file keeps its\n" +
			"directory relative to the uploaded folder; unsupported file types inside\n" +
			"directories are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			files, closeAll, err := collectUploads(args, cmd.ErrOrStderr())
			defer closeAll()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return apiclient.ErrNoFiles
			}

			bar := render.NewProgress(cmd.ErrOrStderr())
			body, err := a.Client().UploadFiles(cmd.Context(), files, bar.Update)
			bar.Done()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if s.jsonOut {
				return render.JSON(out, body)
			}
			var res domain.UploadResult
			if err := body.Decode(&res); err != nil {
				return err
			}
			render.Line(out, render.Success, "%s", res.Message)
			for _, f := range res.Files {
				fmt.Fprintf(out, "  %s  %s\n", f.Path, render.Muted.Render(render.Bytes(f.Size)))
			}
			return nil
		},
	}
}

// collectUploads opens every file named by paths, walking directories. The
// returned func closes whatever was opened, even on error.
func collectUploads(paths []string, warn io.Writer) ([]apiclient.File, func(), error) {
	var (
		files  []apiclient.File
		opened []*os.File
	)
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	add := func(path, dir string) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		opened = append(opened, f)
		files = append(files, apiclient.File{Name: filepath.Base(path), Dir: dir, Content: f})
		return nil
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, closeAll, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if err := add(root, ""); err != nil {
				return nil, closeAll, err
			}
			continue
		}

		parent := filepath.Dir(filepath.Clean(root))
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if !apiclient.AllowedExtensions[strings.ToLower(filepath.Ext(path))] {
				render.Line(warn, render.Muted, "skipping %s (unsupported type)", path)
				return nil
			}
			rel, err := filepath.Rel(parent, filepath.Dir(path))
			if err != nil {
				return err
			}
			return add(path, filepath.ToSlash(rel))
		})
		if err != nil {
			return nil, closeAll, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return files, closeAll, nil
}
