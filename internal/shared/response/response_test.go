package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"worksync/internal/shared/apperror"
	"worksync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, response.PaginationMeta{Total: 21, TotalPages: 3, Page: 2, PageSize: 10}, response.NewPaginationMeta(21, 2, 10))
	assert.Equal(t, 0, response.NewPaginationMeta(5, 1, 0).TotalPages)
}

func TestFail_ExposesCauseOnlyWhenEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Cleanup(func() { response.ExposeInternalErrors(true) })

	for _, expose := range []bool{true, false} {
		response.ExposeInternalErrors(expose)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		response.Fail(c, apperror.ToHTTP(errors.New("pq: relation missing")))

		var env response.ApiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, apperror.CodeInternalError, env.Code)
		if expose {
			assert.Equal(t, "pq: relation missing", env.Error)
		} else {
			assert.Empty(t, env.Error)
		}
	}
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	response.Abort(c, http.StatusForbidden, apperror.CodeForbidden, "nope")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"code":"FORBIDDEN","message":"nope"}`, w.Body.String())
}
