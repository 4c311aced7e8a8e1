package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Notifications streams session events (alerts, spawned and closed apps)
// as server-sent events until the client goes away.
func (h *Handlers) Notifications(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "notifications disabled"})
		return
	}

	events, leave := h.hub.Subscribe()
	defer leave()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-events:
			c.SSEvent(string(ev.Kind), ev)
			return true
		}
	})
}
