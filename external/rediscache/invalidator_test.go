package rediscache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"github.com/riskibarqy/scout-pro/internal/usecase"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client, err := NewClient(context.Background(), ClientConfig{Address: server.Addr()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestNewClient_RequiresAddress(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), ClientConfig{})
	if !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
	if client != nil {
		t.Fatalf("expected nil client")
	}
}

func TestInvalidator_InvalidateAll_RemovesOnlyPrefixedKeys(t *testing.T) {
	t.Parallel()

	server, client := newTestRedis(t)
	for _, key := range []string{"scout:player:list", "scout:player:id:1", "scout:alert:active"} {
		if err := server.Set(key, "cached"); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	if err := server.Set("other:key", "keep"); err != nil {
		t.Fatalf("seed other key: %v", err)
	}

	invalidator, err := NewInvalidator(client, Config{Prefix: "scout:", Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new invalidator: %v", err)
	}
	if err := invalidator.InvalidateAll(context.Background()); err != nil {
		t.Fatalf("invalidate all: %v", err)
	}

	if server.Exists("scout:player:list") || server.Exists("scout:alert:active") {
		t.Fatalf("prefixed keys should be removed")
	}
	if !server.Exists("other:key") {
		t.Fatalf("unrelated key should be kept")
	}
}

func TestInvalidator_PublishesEvents(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, client := newTestRedis(t)
	sub := client.Subscribe(ctx, "scout:events")
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	invalidator, err := NewInvalidator(client, Config{Prefix: "scout:", Channel: "scout:events", Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new invalidator: %v", err)
	}

	if err := invalidator.InvalidateAll(ctx); err != nil {
		t.Fatalf("invalidate all: %v", err)
	}
	report := usecase.SyncReport{RunID: "run-1", Source: "xlsx:roster.xlsx", Processed: 3, Created: 2, Updated: 1, Errors: []string{}}
	if err := invalidator.PublishSyncCompleted(ctx, report); err != nil {
		t.Fatalf("publish sync completed: %v", err)
	}

	wantTypes := []string{EventCacheInvalidated, EventSyncCompleted}
	for _, want := range wantTypes {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			t.Fatalf("receive message: %v", err)
		}
		var event Event
		if err := sonic.UnmarshalString(msg.Payload, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Type != want {
			t.Fatalf("unexpected event type: got=%s want=%s", event.Type, want)
		}
		if want == EventSyncCompleted && (event.RunID != "run-1" || event.Created != 2) {
			t.Fatalf("unexpected sync event: %+v", event)
		}
	}
}

func TestNewInvalidator_RequiresPrefix(t *testing.T) {
	t.Parallel()

	_, client := newTestRedis(t)
	if _, err := NewInvalidator(client, Config{}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
