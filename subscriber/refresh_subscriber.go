package subscriber

import (
	"log"

	"github.com/nats-io/nats.go"

	"community-service/events"
)

// Bus is the subscribing half of the NATS client.
type Bus interface {
	Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error)
}

// Refresher is signalled whenever the feed changes.
type Refresher interface {
	Refresh()
}

// RefreshSubscriber turns community events from other instances into feed
// refresh signals for this one. Events stamped with this instance's own
// origin are skipped: the gateway has already refreshed for them.
type RefreshSubscriber struct {
	bus           Bus
	feed          Refresher
	origin        string
	subscriptions []*nats.Subscription
}

func NewRefreshSubscriber(bus Bus, feed Refresher, origin string) *RefreshSubscriber {
	return &RefreshSubscriber{
		bus:    bus,
		feed:   feed,
		origin: origin,
	}
}

func (s *RefreshSubscriber) Start() error {
	for _, subject := range events.FeedSubjects {
		sub, err := s.bus.Subscribe(subject, s.handle)
		if err != nil {
			s.Stop()
			return err
		}
		s.subscriptions = append(s.subscriptions, sub)
	}

	log.Println("Refresh subscriber started successfully")
	return nil
}

func (s *RefreshSubscriber) handle(msg *nats.Msg) {
	if msg.Header != nil && msg.Header.Get(events.OriginHeader) == s.origin {
		return
	}
	s.feed.Refresh()
}

func (s *RefreshSubscriber) Stop() {
	for _, sub := range s.subscriptions {
		if sub == nil {
			continue
		}
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("Error unsubscribing: %v", err)
		}
	}
	s.subscriptions = nil
}
