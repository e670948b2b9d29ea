package catalog

import (
	"context"

	"recipeportal/mq"
)

// StatsInvalidator drops cached stats. rdx.StatsCache implements it.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// StatsInvalidation is the event worker that drops cached stats whenever a
// recipe is added, on this instance or any other publishing to the channel.
func StatsInvalidation(cache StatsInvalidator) mq.Handler {
	return func(ctx context.Context, ev mq.Event) error {
		if ev.Type != mq.EventRecipeCreated {
			return nil
		}
		return cache.Invalidate(ctx)
	}
}
