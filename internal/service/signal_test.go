package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	airdrop "airdrop-service"
)

func publishedMessage(t *testing.T, event airdrop.Event) *redis.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return &redis.Message{Channel: eventChannel, Payload: string(payload)}
}

func TestForwardDeliversWatchedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan *redis.Message, 2)
	input := make(chan []string)
	output := make(chan airdrop.Event, 1)

	done := make(chan struct{})
	go func() {
		forward(ctx, messages, input, output)
		close(done)
	}()

	input <- []string{"did:vda:mainnet:0x00000000000000000000000000000000000000aa"}

	messages <- publishedMessage(t, airdrop.Event{Type: "claimed", Identity: "did:vda:mainnet:0x00000000000000000000000000000000000000bb"})
	messages <- publishedMessage(t, airdrop.Event{Type: "registered", Identity: "did:vda:mainnet:0x00000000000000000000000000000000000000aa"})

	select {
	case event := <-output:
		if event.Identity != "did:vda:mainnet:0x00000000000000000000000000000000000000aa" {
			t.Fatalf("received event for an unwatched identity: %+v", event)
		}
		if event.Type != "registered" {
			t.Fatalf("unwatched event leaked through before the watched one: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected the watched event to be forwarded")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected forward to return after cancellation")
	}
}

func TestForwardStopsOnCancelDuringBlockedSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	messages := make(chan *redis.Message, 1)
	input := make(chan []string)
	// No reader on output: the forwarding send blocks until cancellation.
	output := make(chan airdrop.Event)

	done := make(chan struct{})
	go func() {
		forward(ctx, messages, input, output)
		close(done)
	}()

	input <- []string{"did:vda:mainnet:0x00000000000000000000000000000000000000aa"}
	messages <- publishedMessage(t, airdrop.Event{Type: "claimed", Identity: "did:vda:mainnet:0x00000000000000000000000000000000000000aa"})

	// Let the loop reach the blocked send before cancelling.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected forward to return while a send was blocked")
	}
}
