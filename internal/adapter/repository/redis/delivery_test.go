package redis

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestDeliveryRegisterAndPresence(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	delivery := NewDelivery(client, "node-a", zerolog.Nop())
	ctx := context.Background()

	if err := delivery.Register(ctx); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	nodes, err := delivery.Nodes(ctx)
	if err != nil {
		t.Fatalf("nodes failed: %v", err)
	}
	if len(nodes) != 1 || nodes[0] != "node-a" {
		t.Fatalf("expected [node-a], got %v", nodes)
	}

	online, err := delivery.Online(ctx, "node-a")
	if err != nil || !online {
		t.Fatalf("expected node-a online, got online=%v err=%v", online, err)
	}

	// Presence expires when the heartbeat stops.
	mr.FastForward(presenceTTL + time.Second)

	online, err = delivery.Online(ctx, "node-a")
	if err != nil {
		t.Fatalf("online failed: %v", err)
	}
	if online {
		t.Fatalf("expected node-a offline after presence expiry")
	}
}

func TestDeliverySendWithoutSubscriberFails(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	delivery := NewDelivery(client, "node-a", zerolog.Nop())

	if err := delivery.Send(context.Background(), "node-b", []byte("payload")); err == nil {
		t.Fatalf("expected send to an unsubscribed node to fail")
	}
}

func TestDeliverySendAndListen(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	sender := NewDelivery(client, "node-a", zerolog.Nop())

	receiverClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { receiverClient.Close() })
	receiver := NewDelivery(receiverClient, "node-b", zerolog.Nop())

	received := make(chan []byte, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = receiver.Listen(ctx, func(payload []byte) error {
			received <- payload
			return nil
		})
	}()

	// Wait for the subscription to land before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := sender.Send(ctx, "node-b", []byte("hello")); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never came up")
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case payload := <-received:
		if string(payload) != "hello" {
			t.Fatalf("expected hello, got %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("message never arrived")
	}

	cancel()
	<-done
}
