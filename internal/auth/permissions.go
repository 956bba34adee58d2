package auth

import (
	"errors"
	"slices"

	"auction_backend/internal/models"
)

const (
	PermPropertiesRead   = "properties:read"
	PermPropertiesWrite  = "properties:write"
	PermBiddersManage    = "bidders:manage"
	PermAlertsSend       = "alerts:send"
	PermBidsPlace        = "bids:place"
	PermProfileWrite     = "profile:write"
	PermNotificationsOwn = "notifications:read:self"
)

// Permissions maps each role to what it may do.
var Permissions = map[models.UserRole][]string{
	models.UserRoleCounty: {
		PermPropertiesRead,
		PermPropertiesWrite,
		PermBiddersManage,
		PermAlertsSend,
		PermProfileWrite,
		PermNotificationsOwn,
	},
	models.UserRoleBidder: {
		PermPropertiesRead,
		PermBidsPlace,
		PermNotificationsOwn,
	},
}

func HasPermission(role models.UserRole, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}
	return slices.Contains(permissions, permission)
}

func ValidateRole(role string) error {
	if !models.UserRole(role).Valid() {
		return errors.New("invalid role")
	}
	return nil
}
