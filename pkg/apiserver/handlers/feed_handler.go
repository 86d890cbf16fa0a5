package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hireflow/hireflow/pkg/eventbus"
	redisclient "github.com/hireflow/hireflow/pkg/store/redis"
)

// FeedHandler streams status-change and queue events to admin dashboards over
// SSE. This is the one live-update path: views subscribe here instead of
// polling their read endpoints.
type FeedHandler struct {
	redis  *redisclient.Client
	logger *zap.Logger
}

func NewFeedHandler(redis *redisclient.Client, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{redis: redis, logger: logger}
}

func (h *FeedHandler) Stream(c *gin.Context) {
	if h.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live feed unavailable"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	bus := eventbus.NewBus(h.redis.Client())
	events := bus.Subscribe(c.Request.Context(), eventbus.ChannelApplications, eventbus.ChannelQueue)

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(event.Type, event)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
