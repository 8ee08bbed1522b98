package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/flicky/storefront-gateway/internal/model"
)

const sessionCookieName = "storefront_session"

// SessionChecker reports whether the forwarded cookies belong to an
// authenticated backend session.
type SessionChecker interface {
	CheckLoginStatus(ctx context.Context, cookies []*http.Cookie) (bool, error)
	AuthorizeURL(next string) string
}

// UserResolver maps an authenticated session to the internal user record.
type UserResolver interface {
	Resolve(ctx context.Context, cookies []*http.Cookie) (*model.User, error)
}

type SessionGuard struct {
	checker     SessionChecker
	resolver    UserResolver
	frontendURL string
	secret      []byte
	ttl         time.Duration
}

func NewSessionGuard(checker SessionChecker, resolver UserResolver, frontendURL, secret string, ttl time.Duration) *SessionGuard {
	return &SessionGuard{
		checker:     checker,
		resolver:    resolver,
		frontendURL: frontendURL,
		secret:      []byte(secret),
		ttl:         ttl,
	}
}

// Middleware guards a protected route. A transport failure on the status
// check counts as unauthenticated: the browser is sent to the external
// authorization endpoint with the current path as return target. The resolved
// user is cached in a short-lived signed cookie so a page's worth of requests
// costs one upstream round trip, not one per request.
func (g *SessionGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := g.userFromCookie(c); ok {
			c.Set("user", user)
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cookies := c.Request.Cookies()

		loggedIn, err := g.checker.CheckLoginStatus(ctx, cookies)
		if err != nil || !loggedIn {
			next := g.frontendURL + c.Request.URL.Path
			c.Redirect(http.StatusFound, g.checker.AuthorizeURL(next))
			c.Abort()
			return
		}

		user, err := g.resolver.Resolve(ctx, cookies)
		if err != nil || user == nil {
			// Authenticated upstream but no matching internal record yet:
			// not an auth failure, so no redirect loop, just not ready.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not resolved"})
			return
		}

		g.setCookie(c, user)
		c.Set("user", user)
		c.Next()
	}
}

func (g *SessionGuard) userFromCookie(c *gin.Context) (*model.User, bool) {
	value, err := c.Cookie(sessionCookieName)
	if err != nil || value == "" {
		return nil, false
	}

	token, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	sub, _ := claims["sub"].(float64)
	if sub == 0 {
		return nil, false
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	admin, _ := claims["admin"].(bool)

	return &model.User{ID: int64(sub), Email: email, Name: name, Admin: admin}, true
}

func (g *SessionGuard) setCookie(c *gin.Context, user *model.User) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"admin": user.Admin,
		"exp":   time.Now().Add(g.ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return
	}
	c.SetCookie(sessionCookieName, signed, int(g.ttl.Seconds()), "/", "", false, true)
}

// GetUser returns the resolved user set by the guard, nil when absent.
func GetUser(c *gin.Context) *model.User {
	v, _ := c.Get("user")
	user, _ := v.(*model.User)
	return user
}
