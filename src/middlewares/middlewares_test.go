package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"ticketbari/src/models"
	"ticketbari/src/store"
	"ticketbari/src/types"
	"ticketbari/src/utils"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type stubVerifier struct {
	uid string
}

func (v stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: v.uid}, nil
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	s := store.NewMemoryStore()
	user := &models.User{UID: "fb-1", Email: "vendor@example.com", Role: types.ROLE_VENDOR}
	require.NoError(t, s.UpsertUser(context.Background(), user))
	token, err := utils.GenerateJWT(user)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/vendor", AuthMiddleware(s), RequireRole(types.ROLE_VENDOR), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"id": ctx.GetUint("id")})
	})
	r.GET("/admin", AuthMiddleware(s), RequireRole(types.ROLE_ADMIN), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/vendor", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, user.ID, gjson.Get(w.Body.String(), "id").Uint())

	w = perform(r, http.MethodGet, "/vendor", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", gjson.Get(w.Body.String(), "code").String())

	w = perform(r, http.MethodGet, "/vendor", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", gjson.Get(w.Body.String(), "code").String())
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	s := store.NewMemoryStore()
	user := &models.User{UID: "fb-2", Role: types.ROLE_ADMIN}
	require.NoError(t, s.UpsertUser(context.Background(), user))
	token, err := utils.GenerateJWT(user)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", OptionalAuth(s), func(ctx *gin.Context) {
		role, _ := ctx.Get("role")
		ctx.JSON(http.StatusOK, gin.H{"role": role})
	})

	assert.Equal(t, "admin", gjson.Get(perform(r, http.MethodGet, "/", token).Body.String(), "role").String())
	w := perform(r, http.MethodGet, "/", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, gjson.Null, gjson.Get(w.Body.String(), "role").Type)
}

func TestVerifyIdToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/login", VerifyIdToken(stubVerifier{uid: "fb-9"}), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"uid": ctx.GetString("uid")})
	})
	w := perform(r, http.MethodPost, "/login", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fb-9", gjson.Get(w.Body.String(), "uid").String())

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/login", "bad").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/login", "").Code)

	unconfigured := gin.New()
	unconfigured.POST("/login", VerifyIdToken(nil))
	w = perform(unconfigured, http.MethodPost, "/login", "good")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "network_failure", gjson.Get(w.Body.String(), "code").String())
}

func TestSecureHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecureHeaders)
	r.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	w := perform(r, http.MethodGet, "/", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
