package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"fileconsole/internal/listing"
	"fileconsole/internal/model"
	"fileconsole/internal/util"
)

func newListCmd(c *Console) *cobra.Command {
	var (
		filters  listing.Filters
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List files with optional filters and paging",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireAuth(); err != nil {
				return err
			}

			if pageSize <= 0 {
				pageSize = c.cfg.PageSize
			}
			pager := listing.NewPager(c.client, pageSize)
			if err := pager.SetFilters(cmd.Context(), filters); err != nil {
				return fmt.Errorf("failed to load files: %w", err)
			}
			if page > 1 {
				if err := pager.GoToPage(cmd.Context(), page); err != nil {
					return fmt.Errorf("failed to load files: %w", err)
				}
				if pager.CurrentPage() != page {
					return fmt.Errorf("page %d is out of range (1-%d)", page, pager.TotalPages())
				}
			}

			printFileTable(cmd.OutOrStdout(), pager.Rows())
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d files)\n", pager.CurrentPage(), pager.TotalPages(), pager.Total())
			return nil
		},
	}

	cmd.Flags().StringVar(&filters.Name, "name", "", "filter by name substring")
	cmd.Flags().StringVar(&filters.Tag, "tag", "", "filter by tag substring")
	cmd.Flags().StringVar(&filters.ContentType, "content-type", "", "filter by content type substring")
	cmd.Flags().StringVar(&filters.StartDate, "from", "", "created on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filters.EndDate, "to", "", "created on or before (YYYY-MM-DD)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (defaults to PAGE_SIZE)")
	return cmd
}

func printFileTable(out io.Writer, files []model.StoredFile) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tTYPE\tTAGS\tCREATED")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID,
			f.OriginalName,
			util.FormatSize(f.SizeBytes),
			f.ContentType,
			strings.Join(f.Tags, ", "),
			f.CreatedAtUTC.Local().Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func newGetCmd(c *Console) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one file's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAuth(); err != nil {
				return err
			}

			file, err := c.client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:           %s\n", file.ID)
			fmt.Fprintf(out, "key:          %s\n", file.Key)
			fmt.Fprintf(out, "name:         %s\n", file.OriginalName)
			fmt.Fprintf(out, "size:         %s\n", util.FormatSize(file.SizeBytes))
			fmt.Fprintf(out, "content type: %s\n", file.ContentType)
			fmt.Fprintf(out, "checksum:     %s\n", file.Checksum)
			fmt.Fprintf(out, "tags:         %s\n", strings.Join(file.Tags, ", "))
			fmt.Fprintf(out, "created:      %s\n", file.CreatedAtUTC.Format("2006-01-02 15:04:05 MST"))
			if file.Deleted() {
				fmt.Fprintf(out, "deleted:      %s\n", file.DeletedAtUTC.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}

func newDownloadCmd(c *Console) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a file's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAuth(); err != nil {
				return err
			}

			body, filename, size, err := c.client.Download(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to download file: %w", err)
			}
			defer body.Close()

			target := output
			if target == "" {
				target = filename
			}

			out, err := os.Create(target)
			if err != nil {
				return err
			}
			defer out.Close()

			bar := progressbar.DefaultBytes(size, "downloading")
			if _, err := io.Copy(io.MultiWriter(out, bar), body); err != nil {
				return fmt.Errorf("failed to download file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "target path (defaults to the server-supplied filename)")
	return cmd
}

func newPreviewCmd(c *Console) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <id>",
		Short: "Fetch preview content (images and PDFs) into a temp file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAuth(); err != nil {
				return err
			}

			file, err := c.client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			isImage := strings.HasPrefix(file.ContentType, "image/")
			isPDF := strings.Contains(file.ContentType, "pdf")
			if !isImage && !isPDF {
				return fmt.Errorf("%q is not previewable (only images and PDFs)", file.ContentType)
			}

			body, contentType, err := c.client.Preview(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load preview: %w", err)
			}
			defer body.Close()

			tmp, err := os.CreateTemp("", "fileconsole-preview-*"+previewExt(contentType, file.OriginalName))
			if err != nil {
				return err
			}
			// The temp file is the console's equivalent of a preview blob;
			// it is the user's to open and delete.
			if _, err := io.Copy(tmp, body); err != nil {
				tmp.Close()
				os.Remove(tmp.Name())
				return fmt.Errorf("failed to load preview: %w", err)
			}
			if err := tmp.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "preview written to %s\n", tmp.Name())
			return nil
		},
	}
}

func previewExt(contentType string, originalName string) string {
	switch {
	case strings.Contains(contentType, "jpeg"):
		return ".jpg"
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "pdf"):
		return ".pdf"
	}
	if ext := filepath.Ext(originalName); ext != "" {
		return ext
	}
	return ""
}

func newRemoveCmd(c *Console) *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a file (soft by default, --hard is irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAuth(); err != nil {
				return err
			}

			if hard {
				if !c.session.IsAdmin() {
					return fmt.Errorf("hard delete requires the admin role")
				}
				if err := c.client.HardDelete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete file: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "permanently deleted")
				return nil
			}

			if err := c.client.SoftDelete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted (recoverable)")
			return nil
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "irreversibly delete (admin only)")
	return cmd
}
