package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := Connect(context.Background(), addr, "", 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestClaimOnce(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()
	ledger := NewEventLedger(client, time.Minute)
	ctx := context.Background()
	id := "evt_" + uuid.NewString()

	first, err := ledger.Claim(ctx, id)
	if err != nil || !first {
		t.Fatalf("first claim: %v %v", first, err)
	}
	second, err := ledger.Claim(ctx, id)
	if err != nil || second {
		t.Fatalf("second claim must fail: %v %v", second, err)
	}

	if err := ledger.Release(ctx, id); err != nil {
		t.Fatalf("release: %v", err)
	}
	again, err := ledger.Claim(ctx, id)
	if err != nil || !again {
		t.Fatalf("claim after release: %v %v", again, err)
	}
	client.Del(ctx, keyPrefix+id)
}

func TestClaimConcurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()
	ledger := NewEventLedger(client, time.Minute)
	ctx := context.Background()
	id := "evt_" + uuid.NewString()
	defer client.Del(ctx, keyPrefix+id)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := ledger.Claim(ctx, id); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected 1 winner, got %d", wins)
	}
}
