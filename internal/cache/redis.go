package cache

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects the snapshot cache. The cache is optional: an unset
// REDIS_URL or an unreachable server leaves Client nil and the status
// endpoints fall through to the exchange on every call.
func InitRedis(ctx context.Context) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		log.Println("REDIS_URL not set, snapshot cache disabled")
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("failed to connect to Redis, snapshot cache disabled: %v", err)
		return
	}
	Client = client
	log.Println("Connected to Redis")
}
