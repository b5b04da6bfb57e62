package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bulletin/internal/engine"
	"github.com/roach88/bulletin/internal/fetch"
	"github.com/roach88/bulletin/internal/model"
	"github.com/roach88/bulletin/internal/view"
)

// PostSummary is one post line of command output.
type PostSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Date      string `json:"date"`
	Reactions int    `json:"reactions"`
}

// NotificationSummary is one notification line of command output.
type NotificationSummary struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Author  string `json:"author"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

// SyncResult is the payload of the sync command.
type SyncResult struct {
	Posts         []PostSummary         `json:"posts"`
	Notifications []NotificationSummary `json:"notifications"`
	Unread        int                   `json:"unread"`
	Errors        []string              `json:"errors,omitempty"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch users, posts and notifications",
		Long: `Load users, posts and notifications concurrently and print the result.

Posts are listed newest first with their author names. A failed fetch
does not stop the others; whatever loaded is still printed.

Exit codes:
  0 - Every fetch succeeded
  1 - At least one fetch failed
  2 - Command error (bad config, etc.)

Examples:
  bulletin sync
  bulletin sync --base-url http://localhost:8080/api --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
	return cmd
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	bootErr := fetch.Bootstrap(ctx, s.store, s.client)

	state := s.store.State()
	views := view.New()
	result := SyncResult{
		Posts:         summarizePosts(state),
		Notifications: summarizeFeed(views.NotificationFeed(state)),
		Unread:        views.UnreadCount(state),
	}
	for _, tracked := range []struct {
		name string
		msg  string
	}{
		{"users", state.Users.Request.Error},
		{"posts", state.Posts.Request.Error},
		{"notifications", state.Notifications.Request.Error},
	} {
		if tracked.msg != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", tracked.name, tracked.msg))
		}
	}

	if s.out.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if bootErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeFetchFailed, Message: bootErr.Error()}
		}
		if err := s.out.Respond(resp); err != nil {
			return err
		}
	} else {
		writeSyncText(s.out.Writer, result)
	}

	if bootErr != nil {
		var fe *fetch.Error
		if errors.As(bootErr, &fe) {
			return WrapExitError(ExitFailure, fmt.Sprintf("fetch %s failed", fe.Op), fe.Err)
		}
		return WrapExitError(ExitFailure, "sync failed", bootErr)
	}
	return nil
}

func summarizePosts(state *engine.State) []PostSummary {
	all := state.Posts.Items.SelectAll()
	out := make([]PostSummary, 0, len(all))
	for _, p := range all {
		out = append(out, summarizePost(state, p))
	}
	return out
}

func summarizePost(state *engine.State, p *model.Post) PostSummary {
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Author:    view.AuthorName(state, p.User),
		Date:      p.Date,
		Reactions: view.ReactionTotal(p),
	}
}

func summarizeFeed(feed []view.FeedEntry) []NotificationSummary {
	out := make([]NotificationSummary, 0, len(feed))
	for _, e := range feed {
		out = append(out, summarizeEntry(e))
	}
	return out
}

func summarizeEntry(e view.FeedEntry) NotificationSummary {
	return NotificationSummary{
		ID:      e.Notification.ID,
		Date:    e.Notification.Date,
		Author:  e.Author,
		Message: e.Notification.Message,
		Read:    e.Notification.Read,
	}
}

func writeSyncText(w io.Writer, r SyncResult) {
	fmt.Fprintf(w, "Posts (%d)\n", len(r.Posts))
	for _, p := range r.Posts {
		writePostLine(w, p)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Notifications (%d, %d unread)\n", len(r.Notifications), r.Unread)
	for _, n := range r.Notifications {
		writeNotificationLine(w, n)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
}

func writePostLine(w io.Writer, p PostSummary) {
	fmt.Fprintf(w, "  %s  %s  by %s  (%s, %d reactions)\n", p.ID, p.Title, p.Author, p.Date, p.Reactions)
}

func writeNotificationLine(w io.Writer, n NotificationSummary) {
	marker := " "
	if !n.Read {
		marker = "*"
	}
	fmt.Fprintf(w, "  %s %s  %s: %s\n", marker, n.Date, n.Author, n.Message)
}
