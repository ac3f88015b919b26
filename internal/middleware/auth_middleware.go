package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"worksync/internal/employee"
	"worksync/internal/shared/apperror"
	"worksync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ContextEmployeeID = "employee_id"
	ContextRole       = "role"
)

// AuthMiddleware validates the HMAC access token from the Authorization
// header or the access_token cookie and puts employee_id and role on the
// gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			errObj := apperror.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = apperror.ErrTokenExpired
			}
			response.Abort(c, errObj.HTTPStatus, errObj.Code, errObj.Message)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Invalid token claims")
			return
		}

		employeeID, ok := claims["employee_id"].(string)
		if !ok || employeeID == "" {
			// Tokens issued by the user directory carry the id as "id".
			employeeID, _ = claims["id"].(string)
		}
		if _, err := uuid.Parse(employeeID); err != nil {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Employee ID not found in token")
			return
		}

		role, ok := employee.ParseRole(claims["role"])
		if !ok {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Role not found in token")
			return
		}

		c.Set(ContextEmployeeID, employeeID)
		c.Set(ContextRole, role)

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...employee.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(ContextRole)
		userRole, ok := employee.ParseRole(raw)
		if !exists || !ok {
			response.Abort(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code, apperror.ErrForbidden.Message)
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.Abort(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code, apperror.ErrForbidden.Message)
	}
}
