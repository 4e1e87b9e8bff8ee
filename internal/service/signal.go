package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	airdrop "airdrop-service"
	"airdrop-service/internal/usecase"
)

const eventChannel = "airdrop:events"

// SignalService fans airdrop events out over redis pub/sub so every server
// instance can feed its own realtime subscribers.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event airdrop.Event) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, eventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards published events for the identities received on input to
// output. It returns when the context ends or input is closed. Shutdown is
// signalled by cancelling the context; the caller keeps ownership of both
// channels and must not close output while Realtime may still send.
func (s *SignalService) Realtime(ctx context.Context, input chan []string, output chan airdrop.Event) {
	pubsub := s.rdb.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	forward(ctx, pubsub.Channel(), input, output)
}

// forward is the fan-out loop, split from the subscription so the
// select semantics are testable with a plain message channel.
func forward(ctx context.Context, messages <-chan *redis.Message, input chan []string, output chan airdrop.Event) {
	watched := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return
		case identities, ok := <-input:
			if !ok {
				return
			}
			watched = map[string]bool{}
			for _, identity := range identities {
				watched[identity] = true
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event airdrop.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "failed to decode published event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if watched[event.Identity] {
				select {
				case output <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

var _ usecase.EventPublisher = (*SignalService)(nil)
