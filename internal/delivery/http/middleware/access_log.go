package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

// AccessLogMiddleware tags every request with a request id and logs one
// [HTTP] line when it completes. Crawler files and health checks are logged
// only when they fail.
type AccessLogMiddleware struct {
	logger *log.Logger
	quiet  map[string]struct{}
}

func NewAccessLogMiddleware(logger *log.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &AccessLogMiddleware{
		logger: logger,
		quiet: map[string]struct{}{
			"/health":      {},
			"/robots.txt":  {},
			"/favicon.ico": {},
		},
	}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := strings.TrimSpace(c.Get(HeaderRequestID))
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = normalizeError(err)
		}
		if _, ok := m.quiet[c.Path()]; ok && status < fiber.StatusBadRequest {
			return err
		}

		uid := "-"
		if v, ok := c.Locals(CtxUserIDKey).(uuid.UUID); ok && v != uuid.Nil {
			uid = v.String()
		}

		m.logger.Printf(
			"[HTTP] rid=%s user_id=%s method=%s path=%s status=%d latency=%s ip=%s resp_bytes=%d ua=%q",
			rid, uid, c.Method(), c.OriginalURL(), status, time.Since(start).Round(time.Microsecond),
			c.IP(), len(c.Response().Body()), c.Get(fiber.HeaderUserAgent),
		)
		return err
	}
}
