package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the key while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour
	// CodeIdempotencyConflict is returned while the same key is still processing
	CodeIdempotencyConflict = "ERR_IDEMPOTENCY_CONFLICT"
)

// IdempotencyStore keeps request state per key
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (*redis.StoredResponse, bool, error)
	Reserve(ctx context.Context, scope, key string) (bool, error)
	Complete(ctx context.Context, scope, key string, resp *redis.StoredResponse) error
	Release(ctx context.Context, scope, key string) error
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func abortInProgress(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{
		"code":    CodeIdempotencyConflict,
		"message": "Request already in progress",
		"error":   "Request already in progress",
	})
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key. Keys are scoped to the authenticated user. Requests
// without the header, or arriving while the store is down, pass through.
func IdempotencyMiddleware(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		scope := "anonymous"
		if userID, ok := GetUserID(c); ok {
			scope = userID.String()
		}
		ctx := c.Request.Context()

		stored, inProgress, err := store.Lookup(ctx, scope, key)
		if err != nil {
			logger.Warn(ctx, "Idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}
		if inProgress {
			abortInProgress(c)
			return
		}
		if stored != nil {
			c.Header("X-Idempotency-Hit", "true")
			c.Data(stored.Status, stored.ContentType, []byte(stored.Body))
			c.Abort()
			return
		}

		reserved, err := store.Reserve(ctx, scope, key)
		if err != nil {
			logger.Warn(ctx, "Idempotency reserve failed", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			abortInProgress(c)
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// the request context may be cancelled once the handler returns
		storeCtx := context.WithoutCancel(ctx)
		status := w.Status()
		if status >= 200 && status < 300 {
			err = store.Complete(storeCtx, scope, key, &redis.StoredResponse{
				Status:      status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.body.String(),
			})
		} else {
			err = store.Release(storeCtx, scope, key)
		}
		if err != nil {
			logger.Warn(ctx, "Idempotency bookkeeping failed", zap.Error(err))
		}
	}
}
