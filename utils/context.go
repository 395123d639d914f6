package utils

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, found := ctx.Value(ContextKeyLogger).(*slog.Logger)
	if !found {
		return slog.Default()
	}
	return logger
}

func StoreLoggerInContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

func StoreLoggerInContextMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctxWithLogger := StoreLoggerInContext(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctxWithLogger)
		c.Next()
	}
}

// OwnerIdFromContext returns the id of the user on whose behalf the request runs.
// Authentication is handled upstream: the id is trusted as is.
func OwnerIdFromContext(ctx context.Context) (string, bool) {
	ownerId, found := ctx.Value(ContextKeyOwnerId).(string)
	return ownerId, found && ownerId != ""
}

func StoreOwnerIdInContext(ctx context.Context, ownerId string) context.Context {
	return context.WithValue(ctx, ContextKeyOwnerId, ownerId)
}
