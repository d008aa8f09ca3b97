package updates

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 15 * time.Second

// StreamHandler serves a live event stream of updates for one document.
// Events of other kinds sharing the broker are filtered out. The stream
// stays open until the client disconnects; idle periods carry heartbeat
// events so intermediaries do not reap the connection.
func StreamHandler(b *Broker, kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID := c.Param("id")
		ch, cancel := b.Subscribe(docID)
		defer cancel()

		c.Header("Content-Type", sse.ContentType)
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
		c.Writer.Flush()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		done := c.Request.Context().Done()
		for {
			select {
			case <-done:
				return
			case <-heartbeat.C:
				_ = sse.Encode(c.Writer, sse.Event{Event: "heartbeat", Data: "ping"})
				c.Writer.Flush()
			case u, ok := <-ch:
				if !ok {
					return
				}
				if u.Kind != kind {
					continue
				}
				_ = sse.Encode(c.Writer, sse.Event{
					Id:    strconv.FormatInt(u.Seq, 10),
					Event: "update",
					Data:  u,
				})
				c.Writer.Flush()
			}
		}
	}
}
