package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bulletin/internal/entity"
	"github.com/roach88/bulletin/internal/fetch"
	"github.com/roach88/bulletin/internal/model"
	"github.com/roach88/bulletin/internal/view"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Interval time.Duration // overrides poll_interval when positive
	Count    int           // stop after this many polls; 0 polls until interrupted
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for new notifications",
		Long: `Poll the notifications endpoint until interrupted.

Each poll asks only for entries newer than the newest one seen. Unread
entries are printed once, then everything is marked read. Polls that
bring nothing new leave the read flags alone.

Examples:
  bulletin watch
  bulletin watch --interval 30s
  bulletin watch --count 1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "poll interval (default from config)")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "stop after N polls (0 = until interrupted)")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	if opts.Interval < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("interval must be positive, got %s", opts.Interval))
	}
	if opts.Count < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("count must be non-negative, got %d", opts.Count))
	}

	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	interval := s.cfg.PollInterval
	if opts.Interval > 0 {
		interval = opts.Interval
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	// Author names are cosmetic; a failed users fetch leaves "Unknown User".
	if err := fetch.Users(ctx, s.store, s.client); err != nil {
		slog.Warn("users fetch failed", "error", err)
	}

	if !s.out.IsJSON() {
		fmt.Fprintf(s.out.Writer, "Watching notifications every %s. Press Ctrl-C to stop.\n", interval)
	}

	w := &watcher{session: s, views: view.New()}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		if err := w.poll(ctx); err != nil {
			return err
		}
		if opts.Count > 0 && polls >= opts.Count {
			return nil
		}
		select {
		case <-ctx.Done():
			slog.Info("watch stopped", "polls", polls)
			return nil
		case <-ticker.C:
		}
	}
}

// watcher prints unread notifications when the cached feed changes.
type watcher struct {
	*session
	views *view.Views
	last  *entity.Collection[model.Notification]
}

// poll fetches once. A failed fetch is logged and retried on the next
// tick; only output or dispatch failures stop the watch.
func (w *watcher) poll(ctx context.Context) error {
	if err := fetch.Notifications(ctx, w.store, w.client); err != nil {
		if ctx.Err() == nil {
			slog.Warn("notifications poll failed", "error", err)
		}
		return nil
	}

	state := w.store.State()
	if state.Notifications.Items == w.last {
		return nil
	}
	for _, e := range w.views.NotificationFeed(state) {
		if e.Notification.Read {
			continue
		}
		summary := summarizeEntry(e)
		if w.out.IsJSON() {
			if err := w.out.Success(summary); err != nil {
				return err
			}
			continue
		}
		writeNotificationLine(w.out.Writer, summary)
	}

	if err := fetch.MarkAllRead(w.store); err != nil {
		return WrapExitError(ExitFailure, "failed to mark notifications read", err)
	}
	w.last = w.store.State().Notifications.Items
	return nil
}
