package harness

import (
	"github.com/roach88/bulletin/internal/engine"
	"github.com/roach88/bulletin/internal/entity"
	"github.com/roach88/bulletin/internal/lifecycle"
	"github.com/roach88/bulletin/internal/model"
)

// Snapshot flattens a root state into plain maps for assertions and golden
// files. Each collection becomes {status, error?, ids, entities}.
func Snapshot(s *engine.State) (map[string]any, error) {
	posts, err := collectionSnapshot(s.Posts.Items, s.Posts.Request)
	if err != nil {
		return nil, err
	}
	users, err := collectionSnapshot(s.Users.Items, s.Users.Request)
	if err != nil {
		return nil, err
	}
	notes, err := collectionSnapshot(s.Notifications.Items, s.Notifications.Request)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"posts":         posts,
		"users":         users,
		"notifications": notes,
	}, nil
}

func collectionSnapshot[T any](c *entity.Collection[T], req lifecycle.Tracker) (map[string]any, error) {
	entities := make(map[string]any, c.Len())
	for _, id := range c.SelectIDs() {
		rec, _ := c.SelectByID(id)
		m, err := model.ToMap(rec)
		if err != nil {
			return nil, err
		}
		entities[id] = m
	}

	ids := make([]string, len(c.SelectIDs()))
	copy(ids, c.SelectIDs())

	out := map[string]any{
		"status":   req.Status.String(),
		"ids":      ids,
		"entities": entities,
	}
	if req.Error != "" {
		out["error"] = req.Error
	}
	return out, nil
}
