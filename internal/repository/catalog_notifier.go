package repository

import (
	"context"

	"uas_practice_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// catalogChannel is the Redis pub/sub channel carrying catalog change events.
// The payload is irrelevant: every message means "reload both collections".
const catalogChannel = "catalog:changed"

// CatalogNotifier is the push-notification transport between catalog writes
// and the content repository's snapshot loop.
type CatalogNotifier struct {
	RDB *redis.Client
}

func NewCatalogNotifier(rdb *redis.Client) *CatalogNotifier {
	return &CatalogNotifier{RDB: rdb}
}

// Publish signals that the catalog changed. Writes are fire-and-forget: a
// failed publish is logged and swallowed, the write itself already succeeded.
func (n *CatalogNotifier) Publish(ctx context.Context) {
	if err := n.RDB.Publish(ctx, catalogChannel, "changed").Err(); err != nil {
		logger.Log.Error("catalog notify failed", zap.Error(err))
	}
}

// Subscribe returns a channel that receives one value per catalog change
// event. The channel closes when ctx is cancelled.
func (n *CatalogNotifier) Subscribe(ctx context.Context) <-chan struct{} {
	sub := n.RDB.Subscribe(ctx, catalogChannel)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				// collapse bursts: one pending reload is enough
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out
}
