// Package credential defines the signed claim set carried by bearer tokens.
package credential

// PermOdooExecute authorizes connector operations on the odoo surface.
// Tokens issued without explicit permissions carry it by default.
const PermOdooExecute = "odoo:execute"

// Claims is the payload of a signed gateway credential. Tokens are opaque
// to holders and verified by signature and expiry only; there is no
// revocation list.
type Claims struct {
	Tenant      string   `json:"tenant"`
	UserID      string   `json:"userId"`
	Permissions []string `json:"permissions,omitempty"`
	IssuedAt    int64    `json:"iat"`
	Expiry      int64    `json:"exp"`
	JTI         string   `json:"jti,omitempty"`
	Audience    string   `json:"aud,omitempty"`
	Issuer      string   `json:"iss,omitempty"`
}

// HasPermissions reports whether the claims carry every required permission.
func (c *Claims) HasPermissions(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]bool, len(c.Permissions))
	for _, p := range c.Permissions {
		have[p] = true
	}
	for _, p := range required {
		if !have[p] {
			return false
		}
	}
	return true
}
