package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for host API metrics
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath keeps label cardinality bounded (/state/:key, not /state/display)
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures a remote call
type Timer struct {
	start   time.Time
	metrics *Metrics
	target  string
}

// NewTimer starts timing a call to target
func NewTimer(metrics *Metrics, target string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		target:  target,
	}
}

// Stop records the call with its status
func (t *Timer) Stop(status string) time.Duration {
	d := time.Since(t.start)
	t.metrics.RecordRemoteCall(t.target, status, d)
	return d
}
