package server

import (
	"io"

	"github.com/gin-gonic/gin"
	"youtube-learner/service"
)

type FeedHandler struct {
	feed service.Feed
	auth service.AuthService
}

func NewFeedHandler(feed service.Feed, auth service.AuthService) *FeedHandler {
	return &FeedHandler{feed: feed, auth: auth}
}

// Stream pushes the user's full ordered record list as a server-sent event on
// every store mutation. The subscription is torn down when the client
// disconnects, and the session is re-resolved before every write so a stream
// ends once its token has been signed out or has expired.
func (h *FeedHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	session := currentSession(c)
	snapshots, unsubscribe := h.feed.Subscribe(ctx, session.UserId)
	defer unsubscribe()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case videos, ok := <-snapshots:
			if !ok {
				return false
			}
			if _, err := h.auth.Resolve(ctx, session.Token); err != nil {
				return false
			}
			c.SSEvent("videos", videos)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
