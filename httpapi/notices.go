package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"community-service/logs"
)

const (
	noticeBuffer       = 16
	noticeWriteTimeout = 10 * time.Second
	noticePingInterval = 30 * time.Second
)

// NoticeSource subscribes to the notices addressed to one user. The
// returned function ends the subscription.
type NoticeSource interface {
	SubscribeNotices(userID uuid.UUID, deliver func(data []byte)) (func() error, error)
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamNotices relays the viewer's notices over a websocket until either
// side goes away.
func (s *Server) StreamNotices(c *gin.Context) {
	viewerID := viewer(c)
	if viewerID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already answered the request.
		return
	}
	defer conn.Close()

	notices := make(chan []byte, noticeBuffer)
	unsubscribe, err := s.notices.SubscribeNotices(*viewerID, func(data []byte) {
		select {
		case notices <- data:
		default:
			logs.LogJSON("WARN", "Dropped notice for slow client", map[string]interface{}{
				"viewer": viewerID.String(),
			})
		}
	})
	if err != nil {
		logs.LogJSON("ERROR", "Notice subscription failed", map[string]interface{}{
			"viewer": viewerID.String(),
			"error":  err,
		})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "notices unavailable"),
			time.Now().Add(noticeWriteTimeout))
		return
	}
	defer func() {
		if err := unsubscribe(); err != nil {
			logs.LogJSON("WARN", "Notice unsubscribe failed", map[string]interface{}{
				"viewer": viewerID.String(),
				"error":  err,
			})
		}
	}()

	// The client never sends anything useful; reading is how a close is seen.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(noticePingInterval)
	defer ping.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(noticeWriteTimeout))
			return
		case <-gone:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(noticeWriteTimeout)); err != nil {
				return
			}
		case data := <-notices:
			_ = conn.SetWriteDeadline(time.Now().Add(noticeWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
