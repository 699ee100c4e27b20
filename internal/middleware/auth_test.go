package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type stubAuthenticator struct {
	actors map[string]*models.Actor
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*models.Actor, error) {
	if actor, ok := s.actors[token]; ok {
		return actor, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	institution := int64(42)
	authenticator := stubAuthenticator{actors: map[string]*models.Actor{
		"clerk": {UserID: "u1", InstitutionID: &institution, Roles: []models.Role{models.RoleDataClerk}},
		"root":  {UserID: "u2", Roles: []models.Role{models.RoleSuperAdmin}},
	}}

	r := gin.New()
	r.Use(Auth(authenticator))
	r.GET("/whoami", func(c *gin.Context) {
		actor := ActorFromContext(c)
		id, _ := actor.Institution()
		c.JSON(http.StatusOK, gin.H{"user": actor.UserID, "institution": id})
	})
	r.GET("/admin", RequireRoles(models.RoleInstitutionAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/scoped", RequireInstitution(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r *gin.Engine, path, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiresBearerToken(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/whoami", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/whoami", "bogus", nil).Code)

	w := serve(r, "/whoami", "clerk", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1","institution":42}`, w.Body.String())
}

func TestAuthActingInstitution(t *testing.T) {
	r := newAuthRouter()

	w := serve(r, "/whoami", "root", map[string]string{ActingInstitutionHeader: "7"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u2","institution":7}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(r, "/whoami", "clerk", map[string]string{ActingInstitutionHeader: "7"}).Code)
	assert.Equal(t, http.StatusOK, serve(r, "/whoami", "clerk", map[string]string{ActingInstitutionHeader: "42"}).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, "/whoami", "root", map[string]string{ActingInstitutionHeader: "abc"}).Code)

	w = serve(r, "/whoami?institutionId=9", "root", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u2","institution":9}`, w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", "clerk", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/admin", "root", nil).Code)
}

func TestRequireInstitution(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusNoContent, serve(r, "/scoped", "clerk", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/scoped", "root", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/scoped", "root", map[string]string{ActingInstitutionHeader: "3"}).Code)
}
