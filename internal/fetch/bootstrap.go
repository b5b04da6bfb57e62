package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/bulletin/internal/api"
)

// Bootstrap loads users, posts and notifications concurrently.
//
// The three fetches are independent: one failing does not cancel the
// others, and every completion still goes through Dispatch. Bootstrap
// returns after all three finished, with the first error encountered.
// Posts are only fetched when the posts collection is still idle.
func Bootstrap(ctx context.Context, st Store, c api.Client) error {
	var g errgroup.Group
	g.Go(func() error {
		return Users(ctx, st, c)
	})
	g.Go(func() error {
		_, err := PostsIfIdle(ctx, st, c)
		return err
	})
	g.Go(func() error {
		return Notifications(ctx, st, c)
	})
	return g.Wait()
}
