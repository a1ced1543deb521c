package actor

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Actor attribution for activity-log entries. This package never
// gates a request: a missing or unverifiable token simply yields an
// empty identity. Authorization is out of scope for this service.

// Identity describes who performed an action, when known.
type Identity struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
}

func (id Identity) IsZero() bool { return id.ID == "" && id.Label == "" }

type claims struct {
	jwt.RegisteredClaims

	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type ctxKey struct{}

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// Middleware extracts a best-effort identity from a bearer token and
// stores it on the request context. With an empty secret, tokens are
// ignored entirely.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := FromToken(bearerToken(c), secret)
		if !id.IsZero() {
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	}
}

// FromToken parses and verifies a JWT, returning an empty identity on
// any failure.
func FromToken(token, secret string) Identity {
	if token == "" || secret == "" {
		return Identity{}
	}
	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return Identity{}
	}

	label := cl.Name
	if label == "" {
		label = cl.Email
	}
	return Identity{ID: cl.Subject, Label: label}
}

func bearerToken(c *gin.Context) string {
	raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if !strings.HasPrefix(raw, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(raw, bearerPrefix)
}

// WithIdentity stores an identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached to ctx, if any.
func FromContext(ctx context.Context) Identity {
	if v := ctx.Value(ctxKey{}); v != nil {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
