// Package middleware contains the echo middleware shared by every server.
package middleware

import (
	"log/slog"

	deliverycontext "gatekeeper/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxRequestIDLength = 128

// RequestIDMiddleware tags every request with an id, echoes it back in
// X-Request-Id and hands a logger carrying it to the layers below.
type RequestIDMiddleware struct {
	logger *slog.Logger
}

func NewRequestIDMiddleware(logger *slog.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{logger: logger}
}

func (m *RequestIDMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := acceptRequestID(c.Request().Header.Get(deliverycontext.HeaderXRequestID))

		c.Response().Header().Set(deliverycontext.HeaderXRequestID, id)
		deliverycontext.SetRequestID(c, id)

		req := c.Request()
		ctx := deliverycontext.WithRequestID(req.Context(), id)
		ctx = deliverycontext.WithLogger(ctx, m.logger.With(slog.String("request_id", id)))
		c.SetRequest(req.WithContext(ctx))

		return next(c)
	}
}

// acceptRequestID keeps a client id only when it is short printable ASCII;
// anything else is replaced by a fresh UUID.
func acceptRequestID(id string) string {
	if id == "" || len(id) > maxRequestIDLength {
		return uuid.NewString()
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return uuid.NewString()
		}
	}

	return id
}
