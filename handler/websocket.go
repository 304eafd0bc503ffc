package handler

import (
	"context"

	"vbs_tickets/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

var feedRedis *redis.Client

// SetFeedRedis hands the websocket feed its redis client. A nil client
// disables the feed; connections close immediately.
func SetFeedRedis(rdb *redis.Client) {
	feedRedis = rdb
}

// ActivityFeed streams reconciliation and check-in activity to the admin
// panel. Each connection holds its own subscription to the redis activity
// channel.
func ActivityFeed(c *websocket.Conn) {
	defer c.Close()

	if feedRedis == nil {
		return
	}

	pubsub := feedRedis.Subscribe(context.Background(), service.ActivityChannel)
	defer pubsub.Close()

	// Drain reads so close frames from the client are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
