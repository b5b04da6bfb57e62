package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/bulletin/internal/fetch"
	"github.com/roach88/bulletin/internal/form"
)

// PostOptions holds flags for the post command.
type PostOptions struct {
	*RootOptions
	Title   string
	Content string
	User    string
}

// NewPostCommand creates the post command.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create a post",
		Long: `Submit a new post to the board.

Title, content and author are all required; blank title or content is
refused before any request is made.

Exit codes:
  0 - Post created
  1 - Submission failed (incomplete form, server error, bad response)
  2 - Command error (bad config, etc.)

Example:
  bulletin post --title "Hello" --content "First post" --user u1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "post title")
	cmd.Flags().StringVar(&opts.Content, "content", "", "post content")
	cmd.Flags().StringVar(&opts.User, "user", "", "author user id")

	return cmd
}

func runPost(opts *PostOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	f := form.NewAddPost()
	f.SetTitle(opts.Title)
	f.SetContent(opts.Content)
	f.SetAuthor(opts.User)

	post, err := f.Submit(ctx, s.store, s.client)
	if err != nil {
		msg := err.Error()
		var se *fetch.SubmitError
		if errors.As(err, &se) {
			msg = se.Err.Error()
		}
		_ = s.out.Error(ErrCodeSubmitFailed, msg, f.Draft())
		return WrapExitError(ExitFailure, "failed to create post", err)
	}

	// Best effort: the author name is only for display.
	if err := fetch.Users(ctx, s.store, s.client); err != nil {
		slog.Warn("could not resolve author name", "user", post.User, "error", err)
	}

	summary := summarizePost(s.store.State(), post)
	if s.out.IsJSON() {
		return s.out.Success(summary)
	}
	fmt.Fprintln(s.out.Writer, "✓ Post created")
	writePostLine(s.out.Writer, summary)
	return nil
}
