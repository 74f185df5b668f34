package nats

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"community-service/events"
)

type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	ClientID      string
}

// Client is the service's single NATS connection. Feed events and user
// notices both travel over it.
type Client struct {
	conn *nats.Conn
}

func NewClient(cfg Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(cfg.ClientID),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("Connected to NATS at %s as %q", conn.ConnectedUrl(), cfg.ClientID)
	return &Client{conn: conn}, nil
}

// PublishMsg sends a message with its headers intact.
func (c *Client) PublishMsg(msg *nats.Msg) error {
	if err := c.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", msg.Subject, err)
	}
	return nil
}

func (c *Client) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// SubscribeNotices delivers every notice addressed to userID. The returned
// function removes the subscription.
func (c *Client) SubscribeNotices(userID uuid.UUID, deliver func(data []byte)) (func() error, error) {
	subject := events.NoticePrefix + userID.String()

	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		deliver(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to notices: %w", err)
	}

	// Make sure the server knows about the interest before the caller
	// reports itself ready.
	if err := c.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("failed to subscribe to notices: %w", err)
	}

	return sub.Unsubscribe, nil
}

func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
