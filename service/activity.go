package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const ActivityChannel = "vbs:activity"

// Activity publishes reconciliation and check-in events onto a redis channel
// consumed by the admin panel's live websocket feed. A nil client disables
// publishing, so the engine works without redis.
type Activity struct {
	rdb *redis.Client
}

func NewActivity(rdb *redis.Client) *Activity {
	return &Activity{rdb: rdb}
}

func (a *Activity) Publish(kind string, payload map[string]any) {
	if a == nil || a.rdb == nil {
		return
	}
	payload["kind"] = kind
	payload["ts"] = time.Now().Format(time.RFC3339)

	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.rdb.Publish(ctx, ActivityChannel, body).Err(); err != nil {
		log.Printf("activity publish failed: %v", err)
	}
}
