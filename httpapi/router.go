package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"community-service/handler"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Server struct {
	feed    handler.FeedReader
	gateway handler.Mutations
	notices NoticeSource
}

// NewRouter builds the HTTP API. health may be nil, and without notices
// the /api/notices stream is not served.
func NewRouter(feed handler.FeedReader, gateway handler.Mutations, verifier TokenVerifier, health HealthChecker, notices NoticeSource) *gin.Engine {
	s := &Server{feed: feed, gateway: gateway, notices: notices}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = 8 << 20

	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/api")
	public.Use(OptionalAuthMiddleware(verifier))
	public.GET("/feed", s.GetFeed)
	public.GET("/members", s.ListMembers)
	public.GET("/posts/:id/reaction", s.GetUserReaction)

	private := r.Group("/api")
	private.Use(AuthMiddleware(verifier))
	private.POST("/posts", s.CreatePost)
	private.DELETE("/posts/:id", s.DeletePost)
	private.POST("/posts/:id/reactions", s.AddReaction)
	private.POST("/posts/:id/comments", s.AddComment)
	private.PUT("/profile", s.UpdateProfile)
	if notices != nil {
		private.GET("/notices", s.StreamNotices)
	}

	return r
}
