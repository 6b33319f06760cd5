package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/flowpad/flowpad/pkg/log"
)

const (
	saveRequestedTopic = "editor.save.requested"
	saveCompletedTopic = "editor.save.completed"
)

// SaveRequested asks the coordinator to perform one save.
type SaveRequested struct {
	RequestID string     `json:"request_id"`
	Reason    SaveReason `json:"reason"`
}

// SaveCompleted reports the outcome of a save request. Saved is false both
// for failures and for requests the coordinator decided not to act on.
type SaveCompleted struct {
	RequestID string `json:"request_id"`
	Saved     bool   `json:"saved"`
	Error     string `json:"error,omitempty"`
}

// SaveBus decouples save requesters from the coordinator: any component
// publishes a save request, the coordinator handles it, and the requester
// awaits the matching completion. Typed failure details still reach the
// coordinator's Notifier; the bus carries only the summary outcome.
type SaveBus struct {
	channel *gochannel.GoChannel
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]chan SaveCompleted
}

// NewSaveBus creates an in-process save bus.
func NewSaveBus() *SaveBus {
	logger := log.WithComponent("save-bus")

	return &SaveBus{
		channel: gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger)),
		logger:  logger,
		pending: make(map[string]chan SaveCompleted),
	}
}

// Start subscribes the coordinator to save requests and begins dispatching
// completions. It returns once the subscriptions are established; handling
// runs until ctx is canceled or the bus is closed.
func (b *SaveBus) Start(ctx context.Context, coord *Coordinator) error {
	requests, err := b.channel.Subscribe(ctx, saveRequestedTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to save requests: %w", err)
	}

	completions, err := b.channel.Subscribe(ctx, saveCompletedTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to save completions: %w", err)
	}

	go b.handleRequests(ctx, coord, requests)
	go b.dispatchCompletions(completions)

	return nil
}

// RequestSave publishes a save request and waits for its completion.
func (b *SaveBus) RequestSave(ctx context.Context, reason SaveReason) (bool, error) {
	req := SaveRequested{
		RequestID: uuid.New().String(),
		Reason:    reason,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("failed to marshal save request: %w", err)
	}

	done := make(chan SaveCompleted, 1)

	b.mu.Lock()
	b.pending[req.RequestID] = done
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, req.RequestID)
		b.mu.Unlock()
	}()

	err = b.channel.Publish(saveRequestedTopic, message.NewMessage(req.RequestID, payload))
	if err != nil {
		return false, fmt.Errorf("failed to publish save request: %w", err)
	}

	select {
	case completed := <-done:
		if completed.Error != "" {
			return completed.Saved, errors.New(completed.Error)
		}

		return completed.Saved, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Close shuts the bus down and terminates its subscriptions.
func (b *SaveBus) Close() error {
	return b.channel.Close()
}

func (b *SaveBus) handleRequests(ctx context.Context, coord *Coordinator, requests <-chan *message.Message) {
	for msg := range requests {
		var req SaveRequested

		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			b.logger.Error("Failed to unmarshal save request", "error", err)
			msg.Ack()

			continue
		}

		saved, err := coord.RequestSave(ctx, req.Reason)

		completed := SaveCompleted{
			RequestID: req.RequestID,
			Saved:     saved,
		}
		if err != nil {
			completed.Error = err.Error()
		}

		b.publishCompletion(completed)
		msg.Ack()
	}
}

func (b *SaveBus) publishCompletion(completed SaveCompleted) {
	payload, err := json.Marshal(completed)
	if err != nil {
		b.logger.Error("Failed to marshal save completion", "error", err)

		return
	}

	err = b.channel.Publish(saveCompletedTopic, message.NewMessage(completed.RequestID, payload))
	if err != nil {
		b.logger.Error("Failed to publish save completion", "request_id", completed.RequestID, "error", err)
	}
}

func (b *SaveBus) dispatchCompletions(completions <-chan *message.Message) {
	for msg := range completions {
		var completed SaveCompleted

		if err := json.Unmarshal(msg.Payload, &completed); err != nil {
			b.logger.Error("Failed to unmarshal save completion", "error", err)
			msg.Ack()

			continue
		}

		b.mu.Lock()
		done, ok := b.pending[completed.RequestID]
		b.mu.Unlock()

		if ok {
			select {
			case done <- completed:
			default:
			}
		}

		msg.Ack()
	}
}
