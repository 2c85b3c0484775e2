package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims accepted by the origination service.
type Claims struct {
	jwt.RegisteredClaims
	ChannelID string   `json:"channel_id"` // originating channel (web, mobile, branch)
	Roles     []string `json:"roles"`
}

// HasRole reports whether the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Role constants.
const (
	RoleCustomer  = "customer"
	RoleOperator  = "operator"
	RoleAPIClient = "api_client"
)
