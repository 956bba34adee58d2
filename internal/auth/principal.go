package auth

import "auction_backend/internal/models"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID string
	Email  string
	Role   models.UserRole
}

func (p *Principal) IsCounty() bool {
	return p != nil && p.Role == models.UserRoleCounty
}

func (p *Principal) IsBidder() bool {
	return p != nil && p.Role == models.UserRoleBidder
}

// Can reports whether the principal's role grants the permission.
func (p *Principal) Can(permission string) bool {
	if p == nil {
		return false
	}
	return HasPermission(p.Role, permission)
}
