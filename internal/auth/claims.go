package auth

import (
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
)

// AccessClaims are the claims carried inside a v4.local access token.
// The token is encrypted, so clients cannot read them.
type AccessClaims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// IsAdmin reports whether the token was issued to an administrator.
// Role changes take effect when the next access token is issued.
func (c *AccessClaims) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}
