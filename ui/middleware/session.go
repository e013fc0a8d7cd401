package middleware

import (
	"log"
	"time"

	"datadash/internal/session"

	"github.com/gin-gonic/gin"
)

// sessionKey is the gin context key holding the request's session.State
const sessionKey = "session"

// EnsureSession is middleware that attaches the browser's dashboard session
// to the request, starting a new one from defaults when the cookie is
// missing, unknown or expired.
func EnsureSession(store *session.Store, defaults session.State, ttl time.Duration) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)
	return func(c *gin.Context) {
		id, _ := c.Cookie(session.CookieName)
		state, ok := store.Get(id)
		if !ok {
			state = store.Create(defaults)
			log.Printf("[EnsureSession] Started session %s", state.ID)
		}
		c.SetCookie(session.CookieName, state.ID, maxAge, "/", "", false, true)
		c.Set(sessionKey, state)
		c.Next()
	}
}

// Session returns the session attached by EnsureSession
func Session(c *gin.Context) (session.State, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.State{}, false
	}
	state, ok := v.(session.State)
	return state, ok
}
