package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineverse/internal/config"
	"github.com/iliyamo/cineverse/internal/utils"
)

func serve(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var seen echo.Context
	h := mw(func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusNoContent)
	})
	_ = h(c)
	return rec, seen
}

func TestJWTAuth(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", "u1", 5)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, _ := serve(JWTAuth("secret"), req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec, c := serve(JWTAuth("secret"), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", UserID(c))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec, _ = serve(JWTAuth("other"), req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalJWT_Anonymous(t *testing.T) {
	rec, c := serve(OptionalJWT("secret"), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, UserID(c))
}

func TestSession_IssuesAndReuses(t *testing.T) {
	rec, c := serve(Session(time.Hour), httptest.NewRequest(http.MethodGet, "/", nil))
	id := SessionID(c)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookie+"="+id)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	rec, c = serve(Session(time.Hour), req)
	assert.Equal(t, id, SessionID(c))
	assert.Empty(t, rec.Header().Get("Set-Cookie"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "not-a-uuid")
	_, c = serve(Session(time.Hour), req)
	assert.NotEqual(t, "not-a-uuid", SessionID(c))
}

func TestCacheAndRateLimit_DisabledWithoutRedis(t *testing.T) {
	rec, _ := serve(NewRedisCache(config.CacheConfig{Enabled: true}, nil), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	rec, _ = serve(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateIdentity(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", rateIdentity(c))
	c.Set(SessionIDKey, "abc")
	assert.Equal(t, "s-abc", rateIdentity(c))
	c.Set(UserIDKey, "u1")
	assert.Equal(t, "u-u1", rateIdentity(c))
}

func TestCacheKey_IncludesParams(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cv:cache"}
	c1 := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/movies/m1", nil), httptest.NewRecorder())
	c1.SetPath("/api/movies/:id")
	c1.SetParamNames("id")
	c1.SetParamValues("m1")
	c2 := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/movies/m2", nil), httptest.NewRecorder())
	c2.SetPath("/api/movies/:id")
	c2.SetParamNames("id")
	c2.SetParamValues("m2")

	assert.NotEqual(t, cacheKey(cfg, c1), cacheKey(cfg, c2))
	assert.Contains(t, cacheKey(cfg, c1), "cv:cache:")
}
