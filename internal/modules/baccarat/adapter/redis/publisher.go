// Package redis implements the state publisher over redis pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frankieli/baccarat_table/internal/modules/baccarat/usecase"
	"github.com/frankieli/baccarat_table/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Publisher fans a snapshot out to every subscriber of a table channel.
// Fire-and-forget: failures are logged and swallowed, clients that miss
// a push fall back to polling the synchronizer.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a new redis publisher
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish pushes the snapshot to the table channel
func (p *Publisher) Publish(ctx context.Context, tableID string, snapshot *usecase.Snapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error(ctx).Err(err).Str("table_id", tableID).Msg("failed to encode snapshot")
		return
	}

	channel := fmt.Sprintf("baccarat:table:%s", tableID)
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("channel", channel).Msg("snapshot publish failed")
	}
}
