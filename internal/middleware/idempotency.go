package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"worksync/internal/shared/apperror"
	"worksync/internal/shared/contextutil"
	"worksync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ContextIdempotencyCacheKey = "idempotency_cache_key"
	ContextIdempotencyLockKey  = "idempotency_lock_key"

	idempotencyLockTTL = 30 * time.Second
)

// Idempotency replays a cached response for a repeated Idempotency-Key on
// POST and rejects a duplicate that arrives while the first is in flight.
// The handler stores the result under ContextIdempotencyCacheKey and
// releases ContextIdempotencyLockKey.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, zap.L().Named("middleware.idempotency"))
		employeeID := c.GetString(ContextEmployeeID)

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), employeeID, idempKey)
		lockKey := cacheKey + ":lock"

		if val, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached IdempotentResponse
			var data any
			if json.Unmarshal([]byte(val), &cached) == nil && cached.Status != 0 && json.Unmarshal(cached.Data, &data) == nil {
				log.Debug("idempotent replay", zap.String("key", cacheKey), zap.Int("status", cached.Status))
				response.Success(c, cached.Status, data, nil)
				c.Abort()
				return
			}
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Abort(c, http.StatusConflict, apperror.CodeConflict, "Request is already being processed.")
			return
		}

		c.Set(ContextIdempotencyCacheKey, cacheKey)
		c.Set(ContextIdempotencyLockKey, lockKey)

		c.Next()
	}
}

// IdempotentResponse is the cached result replayed for a repeated key.
type IdempotentResponse struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// SaveIdempotentResponse stores status and data under the cache key that
// Idempotency put on c. It is a no-op when the request carried no key.
func SaveIdempotentResponse(c *gin.Context, rdb *redis.Client, status int, data any, ttl time.Duration) error {
	cacheKey := c.GetString(ContextIdempotencyCacheKey)
	if rdb == nil || cacheKey == "" {
		return nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal idempotent response: %w", err)
	}
	payload, err := json.Marshal(IdempotentResponse{Status: status, Data: body})
	if err != nil {
		return fmt.Errorf("marshal idempotent response: %w", err)
	}
	return rdb.Set(c.Request.Context(), cacheKey, payload, ttl).Err()
}
