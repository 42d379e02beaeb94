package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playsight/backend/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/stats", nil)
	return c, recorder
}

func TestResolveIdentityForwardedFor(t *testing.T) {
	c, _ := newTestContext(t)
	c.Request.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	c.Request.Header.Set("X-Real-IP", "10.0.0.2")

	id := ResolveIdentity(c)
	assert.Equal(t, ratelimit.KindIP, id.Kind)
	assert.Equal(t, "1.2.3.4", id.Value)
}

func TestResolveIdentityRealIP(t *testing.T) {
	c, _ := newTestContext(t)
	c.Request.Header.Set("X-Real-IP", "10.0.0.2")

	id := ResolveIdentity(c)
	assert.Equal(t, "10.0.0.2", id.Value)
}

func TestResolveIdentityPeerAddress(t *testing.T) {
	c, _ := newTestContext(t)
	c.Request.RemoteAddr = "192.168.1.50:54321"

	id := ResolveIdentity(c)
	assert.Equal(t, ratelimit.KindIP, id.Kind)
	assert.Equal(t, "192.168.1.50", id.Value)
}

func TestResolveIdentityAuthenticatedUserWins(t *testing.T) {
	c, _ := newTestContext(t)
	c.Request.Header.Set("X-Forwarded-For", "1.2.3.4")
	c.Set("user_id", "8b7d3c1a")

	id := ResolveIdentity(c)
	assert.Equal(t, ratelimit.KindUser, id.Kind)
	assert.Equal(t, "8b7d3c1a", id.Value)
}
