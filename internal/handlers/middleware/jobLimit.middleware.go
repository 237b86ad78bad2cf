package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const (
	JobRequestsPerWindow = 10
	JobRequestWindow     = time.Minute
)

// JobLimit caps how many pipeline jobs one client address may start per
// window. Every job holds a yt-dlp or ffmpeg process.
func (m *Middleware) JobLimit() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        JobRequestsPerWindow,
		Expiration: JobRequestWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			m.log.Function("JobLimit").Warn("Job rate limit reached", "ip", c.IP(), "traceID", GetTraceID(c))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many jobs started, please wait a minute",
			})
		},
	})
}
