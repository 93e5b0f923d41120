package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"fileconsole/internal/uploader"
)

func newUploadCmd(c *Console) *cobra.Command {
	var tags string

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files concurrently with per-file progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAuth(); err != nil {
				return err
			}

			sources, err := fileSources(args)
			if err != nil {
				return err
			}

			queue := uploader.New(c.client,
				uploader.WithMaxFileSize(c.cfg.MaxUploadSize),
				uploader.WithConcurrency(c.cfg.UploadConcurrency),
			)
			queue.Submit(cmd.Context(), sources, tags)

			renderUploadProgress(queue)
			queue.Wait()

			failed := 0
			for _, entry := range queue.Entries() {
				if entry.Status == uploader.StatusError {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", entry.Name, entry.Error)
				}
			}

			stats := queue.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "%d uploaded, %d failed\n", stats.Success, stats.Error)
			if failed > 0 {
				return fmt.Errorf("%d upload(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags attached to every file")
	return cmd
}

func fileSources(paths []string) ([]uploader.FileSource, error) {
	sources := make([]uploader.FileSource, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}

		path := path
		sources = append(sources, uploader.FileSource{
			Name: filepath.Base(path),
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return sources, nil
}

// renderUploadProgress drives one mpb bar per queue entry off periodic
// snapshots until every entry settles.
func renderUploadProgress(queue *uploader.Queue) {
	entries := queue.Entries()
	progress := mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(60))

	bars := make([]*mpb.Bar, len(entries))
	for i, entry := range entries {
		bars[i] = progress.AddBar(100,
			mpb.PrependDecorators(
				decor.Name(entry.Name, decor.WCSyncSpaceR),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(decor.OnComplete(decor.Spinner(nil), "done")),
		)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		snapshot := queue.Entries()
		settled := len(snapshot) > 0
		for i, entry := range snapshot {
			if i >= len(bars) {
				break
			}
			switch entry.Status {
			case uploader.StatusSuccess:
				bars[i].SetCurrent(100)
			case uploader.StatusError:
				bars[i].Abort(false)
			default:
				bars[i].SetCurrent(int64(entry.Progress))
				settled = false
			}
		}
		if settled {
			break
		}
	}

	progress.Wait()
}
