package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"blog-api/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil || len(arg) != 36 {
		return uuid.Nil, errors.Errorf("invalid post id %q", arg)
	}
	return id, nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := opts.client().ListPosts(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), posts)
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			post, err := opts.client().GetPost(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), post)
		},
	}
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var in models.CreatePostInput
	published := true

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Long: `Create a post.

Examples:
  studio create --title "Hello" --content "First post" --author ada
  studio create --title "WIP" --content "..." --author ada --published=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Published = &published
			post, err := opts.client().CreatePost(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), post)
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Post title")
	cmd.Flags().StringVar(&in.Content, "content", "", "Post content")
	cmd.Flags().StringVar(&in.Author, "author", "", "Post author")
	cmd.Flags().BoolVar(&published, "published", true, "Publish the post")
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		title, content, author string
		published              bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a post",
		Long: `Update a post. Only the flags given are sent.

Examples:
  studio update 3f0c... --published=false
  studio update 3f0c... --title "Better title"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var in models.UpdatePostInput
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &title
			}
			if flags.Changed("content") {
				in.Content = &content
			}
			if flags.Changed("author") {
				in.Author = &author
			}
			if flags.Changed("published") {
				in.Published = &published
			}

			post, err := opts.client().UpdatePost(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), post)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().StringVar(&author, "author", "", "New author")
	cmd.Flags().BoolVar(&published, "published", false, "Published state")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := opts.client().DeletePost(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓")+" Deleted post "+id.String())
			return nil
		},
	}
}
