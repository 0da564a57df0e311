package middlewares

import (
	"net/http"
	"time"

	"debatearena/internal/debate"
	"debatearena/locale"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "arena_session"
	sessionKey    = "arenaSession"
)

// SessionMiddleware resolves the caller's debate session from the session cookie,
// creating one when the cookie is missing or stale, and stores it in the context.
// New sessions take their language from Accept-Language.
func SessionMiddleware(reg *debate.Registry, ttl time.Duration) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		lang := locale.Negotiate(c.GetHeader("Accept-Language"), reg.DefaultLang())
		m, _ := reg.GetOrCreate(id, lang)

		// Refresh on every request so the cookie outlives the idle sweep.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, m.ID(), maxAge, "/", "", false, true)

		SetSession(c, m)
		c.Next()
	}
}

func SetSession(c *gin.Context, m *debate.Machine) {
	c.Set(sessionKey, m)
}

// CurrentSession returns the machine set by SessionMiddleware.
func CurrentSession(c *gin.Context) (*debate.Machine, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	m, ok := v.(*debate.Machine)
	return m, ok
}
