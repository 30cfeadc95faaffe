package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"locator/config"
	deliverycontext "locator/internal/delivery/context"
	"locator/internal/infra/metrics"

	"github.com/labstack/echo/v4"
)

// unmatchedRoute labels requests that hit no registered route.
const unmatchedRoute = "unmatched"

// LoggerMiddleware records request metrics and, in debug mode, request logs
type LoggerMiddleware struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	debug   bool
}

// NewLoggerMiddleware creates a new logger middleware
func NewLoggerMiddleware(logger *slog.Logger, config *config.Config, m *metrics.Metrics) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger:  logger,
		metrics: m,
		debug:   config.Env.Debug,
	}
}

// Handle processes request logging.
// Errors are rendered here so the recorded status is the one sent.
func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		m.observe(c, time.Since(start))
		if m.debug || c.Response().Status >= 500 {
			m.logRequest(c, start, err)
		}

		return nil
	}
}

func (m *LoggerMiddleware) observe(c echo.Context, latency time.Duration) {
	if m.metrics == nil {
		return
	}

	path := c.Path()
	if path == "" {
		path = unmatchedRoute
	}
	method := c.Request().Method

	m.metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
	m.metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(latency.Seconds())
}

// logRequest logs request details
func (m *LoggerMiddleware) logRequest(c echo.Context, start time.Time, err error) {
	req := c.Request()
	res := c.Response()

	latency := time.Since(start)

	fields := []slog.Attr{
		slog.String("request_id", deliverycontext.GetRequestID(c)),
		slog.String("method", req.Method),
		slog.String("uri", req.URL.Path),
		slog.Int("status", res.Status),
		slog.Duration("latency", latency),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", req.UserAgent()),
	}

	if len(req.URL.RawQuery) > 0 {
		fields = append(fields, slog.String("query", req.URL.RawQuery))
	}

	if err != nil {
		fields = append(fields, slog.Any("error", err))
	}

	// Choose log level based on status code
	logLevel := slog.LevelInfo
	if res.Status >= 400 {
		logLevel = slog.LevelWarn
	}
	if res.Status >= 500 {
		logLevel = slog.LevelError
	}

	m.logger.LogAttrs(context.Background(), logLevel, "HTTP Request", fields...)
}
