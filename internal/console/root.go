// Package console implements the terminal front end: login gates the file
// area, and the file commands drive the files API through the transport
// client the same way the views do.
package console

import (
	"fmt"

	"github.com/spf13/cobra"

	"fileconsole/internal/config"
	"fileconsole/internal/session"
	"fileconsole/internal/transport"
)

// Console carries the wired dependencies every command shares.
type Console struct {
	cfg     *config.Config
	session *session.Manager
	client  *transport.Client
}

// NewRootCmd builds the command tree. Dependencies are wired lazily in
// PersistentPreRunE so flag overrides are already applied.
func NewRootCmd() *cobra.Command {
	c := &Console{}
	var apiBaseURL string

	rootCmd := &cobra.Command{
		Use:           "fileconsole",
		Short:         "Terminal console for a remote files API",
		Long:          "fileconsole lists, filters, uploads, previews, and deletes files stored behind a remote files REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if apiBaseURL != "" {
				cfg.APIBaseURL = apiBaseURL
			}

			c.cfg = cfg
			c.session = session.NewManager(cfg.SessionFile, cfg.JWTSecret, cfg.TokenTTL)
			c.session.Init()
			c.client = transport.NewClient(cfg.APIBaseURL,
				transport.WithTokenSource(c.session.Token),
				transport.WithHTTPClient(newHTTPClient(cfg.RequestTimeout)),
			)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", "", "files API base URL (overrides API_BASE_URL)")

	rootCmd.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newListCmd(c),
		newGetCmd(c),
		newDownloadCmd(c),
		newPreviewCmd(c),
		newRemoveCmd(c),
		newUploadCmd(c),
	)

	return rootCmd
}

// requireAuth is the CLI analog of the route guard: file commands refuse
// to run without a persisted token.
func (c *Console) requireAuth() error {
	if !c.session.IsAuthenticated() {
		return fmt.Errorf("not logged in; run 'fileconsole login <username>' first")
	}
	return nil
}
