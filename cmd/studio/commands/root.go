package commands

import (
	"fmt"
	"net/http"
	"os"

	"blog-api/client"
	"blog-api/cmd/studio/tui"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL string
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.apiURL, http.DefaultClient)
}

// NewRootCmd builds the studio command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "studio",
		Short: "Blog Studio - write and manage blog posts",
		Long: `Blog Studio talks to the blog API to list, write, edit and delete posts.

Run without a subcommand to open the interactive studio. The subcommands
perform the same operations non-interactively and print JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), opts.client())
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", client.BaseURLFromEnv(), "Blog API base URL (env BLOG_API_URL)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive studio",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return tui.Run(cmd.Context(), opts.client())
			},
		},
		newListCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
