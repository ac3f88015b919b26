package rbac

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"worksync/internal/employee"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// =========================================
// Mock Service
// =========================================

type mockService struct{}

func (m *mockService) LoadPolicy(ctx context.Context) error {
	return nil
}

func (m *mockService) Enforce(req EnforceRequest) (bool, error) {
	return req.Resource == ResourceLeave && req.Action == ActionRead, nil
}

func (m *mockService) PermissionsFor(role employee.Role) (PermissionsResponse, error) {
	return PermissionsResponse{
		Role:        role.String(),
		Permissions: []PermissionResponse{{Resource: ResourceLeave, Action: ActionRead}},
	}, nil
}

// =========================================
// TEST: Handler Me
// =========================================

func TestHandler_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(role any) *gin.Engine {
		router := gin.New()
		router.GET("/rbac/me", func(c *gin.Context) {
			if role != nil {
				c.Set("role", role)
			}
			c.Next()
		}, NewHandler(&mockService{}).Me)
		return router
	}

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/rbac/me", nil)
		newRouter(employee.RoleManager).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool                `json:"success"`
			Data    PermissionsResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "manager", body.Data.Role)
		assert.Len(t, body.Data.Permissions, 1)
	})

	t.Run("missing role", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/rbac/me", nil)
		newRouter(nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
