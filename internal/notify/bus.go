package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicEventPublished carries the trigger from event creation to the
// fan-out worker over the in-process bus.
const TopicEventPublished = "events.published"

type EventPublished struct {
	EventID     string `json:"event_id"`
	OrganizerID string `json:"organizer_id"`
}

// PublishEventCreated hands the trigger to the bus. Publishing is cheap;
// the actual fan-out happens on the worker, so the creating request
// never waits on a large follower set.
func PublishEventCreated(pub message.Publisher, ev EventPublished) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return pub.Publish(TopicEventPublished, message.NewMessage(watermill.NewUUID(), payload))
}

// Run subscribes the fan-out worker. It returns once the subscription is
// established; consumption continues until ctx is cancelled.
func (s *Service) Run(ctx context.Context, sub message.Subscriber) error {
	msgs, err := sub.Subscribe(ctx, TopicEventPublished)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			var ev EventPublished
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				log.Printf("notify: bad trigger payload: %v", err)
				msg.Ack()
				continue
			}

			if n, err := s.Fanout(ctx, ev.EventID); err != nil {
				log.Printf("notify: fan-out for %s failed: %v", ev.EventID, err)
			} else {
				log.Printf("notify: event %s fanned out to %d followers", ev.EventID, n)
			}
			msg.Ack()
		}
	}()

	return nil
}
