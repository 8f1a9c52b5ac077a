package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
)

// RequirePermission checks that the admin JWT contains the required permission.
func RequirePermission(perm model.Permission) gin.HandlerFunc {
	return RequireAnyPermission(perm)
}

// RequireAnyPermission checks that the admin JWT contains at least one of perms.
func RequireAnyPermission(perms ...model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, p := range perms {
			if claims.HasPermission(string(p)) {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}
