package publisher

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"community-service/events"
)

// Bus is the subset of the NATS client the publisher needs.
type Bus interface {
	PublishMsg(msg *nats.Msg) error
}

// EventPublisher stamps every message with its origin so an instance can
// recognise its own events when they come back from NATS.
type EventPublisher struct {
	bus    Bus
	origin string
}

func NewEventPublisher(bus Bus, origin string) *EventPublisher {
	return &EventPublisher{bus: bus, origin: origin}
}

func (p *EventPublisher) PublishPostCreated(event events.PostCreatedEvent) error {
	return p.publish(events.PostCreated, event.PostID, event)
}

func (p *EventPublisher) PublishPostDeleted(event events.PostDeletedEvent) error {
	return p.publish(events.PostDeleted, event.PostID, event)
}

func (p *EventPublisher) PublishReactionToggled(event events.ReactionToggledEvent) error {
	return p.publish(events.ReactionToggled, event.PostID, event)
}

func (p *EventPublisher) PublishCommentAdded(event events.CommentAddedEvent) error {
	return p.publish(events.CommentAdded, event.PostID, event)
}

// Notify sends a notice to the user's notice subject.
func (p *EventPublisher) Notify(userID uuid.UUID, level, message string) error {
	notice := events.Notice{
		UserID:  userID,
		Level:   level,
		Message: message,
		SentAt:  time.Now(),
	}
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return p.send(events.NoticePrefix+userID.String(), data)
}

func (p *EventPublisher) publish(subject string, postID uuid.UUID, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.send(subject, data); err != nil {
		return err
	}

	log.Printf("Published event: %s for post %s", subject, postID)
	return nil
}

func (p *EventPublisher) send(subject string, data []byte) error {
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(events.OriginHeader, p.origin)
	return p.bus.PublishMsg(msg)
}
