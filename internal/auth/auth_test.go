package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thundergames/backend/internal/auth"
	"thundergames/backend/internal/database"
	"thundergames/backend/internal/service"
	"thundergames/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const cookieName = "test_session"

type fixture struct {
	router    *gin.Engine
	tokens    *jwt.Manager
	superuser string
	regular   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:", nil)
	require.NoError(t, err)
	users := service.NewAuthService(db)
	tokens := jwt.NewManager("secret", time.Hour)
	ctx := context.Background()

	admin, err := users.CreateUser(ctx, service.NewUser{Username: "admin", Password: "pw", Superuser: true})
	require.NoError(t, err)
	viewer, err := users.CreateUser(ctx, service.NewUser{Username: "viewer", Password: "pw"})
	require.NoError(t, err)

	adminToken, err := tokens.GenerateToken(admin.ID)
	require.NoError(t, err)
	viewerToken, err := tokens.GenerateToken(viewer.ID)
	require.NoError(t, err)

	r := gin.New()
	r.Use(auth.Identify(tokens, users, cookieName))
	r.GET("/whoami", func(c *gin.Context) {
		p, ok := auth.Current(c)
		c.JSON(http.StatusOK, gin.H{"ok": ok, "username": p.Username, "superuser": p.Superuser})
	})
	r.GET("/api/secret", auth.RequireSuperuserAPI(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "classified"})
	})
	r.GET("/admin_panel/", auth.RequireSuperuserPage("/login/"), func(c *gin.Context) {
		c.String(http.StatusOK, "panel")
	})

	return fixture{router: r, tokens: tokens, superuser: adminToken, regular: viewerToken}
}

func (f fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestIdentify(t *testing.T) {
	f := newFixture(t)

	t.Run("anonymous", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/whoami", nil))
		require.JSONEq(t, `{"ok": false, "username": "", "superuser": false}`, w.Body.String())
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+f.superuser)
		w := f.do(req)
		require.JSONEq(t, `{"ok": true, "username": "admin", "superuser": true}`, w.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: f.regular})
		w := f.do(req)
		require.JSONEq(t, `{"ok": true, "username": "viewer", "superuser": false}`, w.Body.String())
	})

	t.Run("invalid token stays anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := f.do(req)
		require.JSONEq(t, `{"ok": false, "username": "", "superuser": false}`, w.Body.String())
	})

	t.Run("token for a deleted user stays anonymous", func(t *testing.T) {
		ghost, err := f.tokens.GenerateToken(999)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+ghost)
		w := f.do(req)
		require.JSONEq(t, `{"ok": false, "username": "", "superuser": false}`, w.Body.String())
	})
}

func TestRequireSuperuserAPI(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/secret", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error": "Authentication required"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/secret", nil)
	req.Header.Set("Authorization", "Bearer "+f.regular)
	w = f.do(req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotContains(t, w.Body.String(), "classified")

	req = httptest.NewRequest(http.MethodGet, "/api/secret", nil)
	req.Header.Set("Authorization", "Bearer "+f.superuser)
	w = f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "classified")
}

func TestRequireSuperuserPage(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin_panel/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: f.regular})
	w := f.do(req)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login/?next=%2Fadmin_panel%2F", w.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/admin_panel/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: f.superuser})
	w = f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "panel", w.Body.String())
}

func TestLoginLimiter(t *testing.T) {
	l := auth.NewLoginLimiter(2)
	require.True(t, l.Allow("1.2.3.4"))
	require.True(t, l.Allow("1.2.3.4"))
	require.False(t, l.Allow("1.2.3.4"))
	require.True(t, l.Allow("5.6.7.8"))

	unlimited := auth.NewLoginLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.Allow("1.2.3.4"))
	}
}
