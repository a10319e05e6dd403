package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campuseye/attendance-api/internal/models"
)

// newRoleTestRouter wires a lecturer-only face registration route, optionally
// behind claims for the given role. A nil role leaves the context bare.
func newRoleTestRouter(role *models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if role != nil {
		claims := &models.JWTClaims{UserID: 1, Role: *role}
		r.Use(func(c *gin.Context) { c.Set(ContextUserKey, claims) })
	}
	r.POST("/students/:id/face", RequireRoles(models.RoleLecturer), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireRolesAdmitsAllowedRole(t *testing.T) {
	role := models.RoleLecturer
	r := newRoleTestRouter(&role)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/students/11/face", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// Face registration is lecturer territory. A student token must not reach the
// handler, otherwise one student could overwrite another's reference image
// and be identified as them.
func TestRequireRolesBlocksStudentFromFaceRegistration(t *testing.T) {
	role := models.RoleStudent
	r := newRoleTestRouter(&role)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/students/11/face", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	r := newRoleTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/students/11/face", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
