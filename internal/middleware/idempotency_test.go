package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"worksync/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

const (
	idempEmployee = "9b2c1c1e-6d1e-4a53-8d3a-0c3b5b9f1a11"
	idempCacheKey = "idemp:/leave-request/addLeave:" + idempEmployee + ":key-1"
	idempLockKey  = idempCacheKey + ":lock"
)

func idempotencyRouter(rdb *redis.Client, called *bool) *gin.Engine {
	r := gin.New()
	r.POST("/leave-request/addLeave",
		func(c *gin.Context) { c.Set(middleware.ContextEmployeeID, idempEmployee); c.Next() },
		middleware.Idempotency(rdb),
		func(c *gin.Context) {
			*called = true
			c.JSON(http.StatusCreated, gin.H{
				"cache": c.GetString(middleware.ContextIdempotencyCacheKey),
				"lock":  c.GetString(middleware.ContextIdempotencyLockKey),
			})
		},
	)
	return r
}

func idempotentRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/leave-request/addLeave", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotency(t *testing.T) {
	t.Run("no key passes through", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		called := false

		w := serve(idempotencyRouter(rdb, &called), idempotentRequest(""))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first request takes the lock", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(idempCacheKey).RedisNil()
		mock.ExpectSetNX(idempLockKey, "locked", 30*time.Second).SetVal(true)
		called := false

		w := serve(idempotencyRouter(rdb, &called), idempotentRequest("key-1"))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, called)
		assert.Contains(t, w.Body.String(), idempLockKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cached response is replayed", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(idempCacheKey).SetVal(`{"status":201,"data":{"id":"leave-1","status":"pending"}}`)
		called := false

		w := serve(idempotencyRouter(rdb, &called), idempotentRequest("key-1"))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.False(t, called)
		assert.Contains(t, w.Body.String(), `"leave-1"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate in flight", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(idempCacheKey).RedisNil()
		mock.ExpectSetNX(idempLockKey, "locked", 30*time.Second).SetVal(false)
		called := false

		w := serve(idempotencyRouter(rdb, &called), idempotentRequest("key-1"))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, called)
		assert.Equal(t, "Request is already being processed.", decode(t, w).Message)
	})

	t.Run("redis down continues without lock", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(idempCacheKey).RedisNil()
		mock.ExpectSetNX(idempLockKey, "locked", 30*time.Second).SetErr(errors.New("connection refused"))
		called := false

		w := serve(idempotencyRouter(rdb, &called), idempotentRequest("key-1"))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, called)
	})
}

func TestSaveIdempotentResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectSet(idempCacheKey, []byte(`{"status":201,"data":{"id":"leave-1"}}`), time.Hour).SetVal("OK")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/leave-request/addLeave", nil)
	c.Set(middleware.ContextIdempotencyCacheKey, idempCacheKey)

	err := middleware.SaveIdempotentResponse(c, rdb, http.StatusCreated, map[string]string{"id": "leave-1"}, time.Hour)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	c.Set(middleware.ContextIdempotencyCacheKey, "")
	assert.NoError(t, middleware.SaveIdempotentResponse(c, rdb, http.StatusCreated, nil, time.Hour))
}
