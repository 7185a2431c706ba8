// Package access holds the static role/permission policy and the
// ownership-sensitive authorization predicate built on top of it.
package access

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
)

// Role is a staff role, ordered from highest to lowest privilege:
// super_admin, admin, editor, sales_rep, read_only.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleSalesRep   Role = "sales_rep"
	RoleReadOnly   Role = "read_only"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEditor, RoleSalesRep, RoleReadOnly:
		return true
	}
	return false
}

// ParseRole converts a string to a Role, returning an error if unknown.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

// Permission names an action gated by the policy table.
type Permission string

const (
	PermCreateReservation   Permission = "reservation:create"
	PermEditReservation     Permission = "reservation:edit"
	PermApproveReservation  Permission = "reservation:approve"
	PermCancelReservation   Permission = "reservation:cancel"
	PermCompleteReservation Permission = "reservation:complete"
	PermViewReservations    Permission = "reservation:view"
	PermViewRevenue         Permission = "revenue:view"
	PermManageSuites        Permission = "suite:manage"
	PermDeleteSuite         Permission = "suite:delete"
	PermViewCustomers       Permission = "customer:view"
	PermManageStaff         Permission = "staff:manage"
)

// permissionRoles is the static permission -> allowed roles table.
var permissionRoles = map[Permission][]Role{
	PermCreateReservation:   {RoleSuperAdmin, RoleAdmin, RoleEditor, RoleSalesRep},
	PermEditReservation:     {RoleSuperAdmin, RoleAdmin, RoleEditor, RoleSalesRep},
	PermApproveReservation:  {RoleSuperAdmin, RoleAdmin, RoleEditor, RoleSalesRep},
	PermCancelReservation:   {RoleSuperAdmin, RoleAdmin, RoleEditor},
	PermCompleteReservation: {RoleSuperAdmin, RoleAdmin, RoleEditor},
	PermViewReservations:    {RoleSuperAdmin, RoleAdmin, RoleEditor, RoleSalesRep, RoleReadOnly},
	PermViewRevenue:         {RoleSuperAdmin, RoleAdmin},
	PermManageSuites:        {RoleSuperAdmin, RoleAdmin, RoleEditor},
	PermDeleteSuite:         {RoleSuperAdmin, RoleAdmin},
	PermViewCustomers:       {RoleSuperAdmin, RoleAdmin, RoleEditor, RoleSalesRep},
	PermManageStaff:         {RoleSuperAdmin},
}

// ownershipRestricted maps ownership-sensitive permissions to the roles that
// may exercise them only on resources they created. Editing is restricted for
// sales_rep alone; blanket approval starts at admin, so editors also confirm
// only their own reservations.
var ownershipRestricted = map[Permission]map[Role]bool{
	PermEditReservation: {
		RoleSalesRep: true,
	},
	PermApproveReservation: {
		RoleEditor:   true,
		RoleSalesRep: true,
	},
}

// CanAccess is a pure membership test against the policy table.
func CanAccess(role Role, perm Permission) bool {
	for _, r := range permissionRoles[perm] {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated identity performing an operation. It is resolved
// once per request from the token and passed explicitly; nothing reads it
// from ambient state.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Owned is implemented by resources that track their creator. A nil creator
// means the resource was created anonymously through the public flow.
type Owned interface {
	CreatedBy() *uuid.UUID
}

// Authorize combines the static table with the ownership predicate: the
// actor's role must pass the table, and for ownership-sensitive permissions a
// restricted role must additionally be the resource's creator. A nil resource
// skips the ownership predicate (used for actions not tied to one resource).
func Authorize(actor Actor, perm Permission, resource Owned) error {
	if !CanAccess(actor.Role, perm) {
		return apperrors.NewAuthorizationError(
			fmt.Sprintf("role %s is not allowed to %s", actor.Role, perm))
	}

	if resource == nil || !ownershipRestricted[perm][actor.Role] {
		return nil
	}

	creator := resource.CreatedBy()
	if creator == nil || *creator != actor.ID {
		return apperrors.NewAuthorizationError(
			fmt.Sprintf("role %s may only %s its own reservations", actor.Role, perm))
	}
	return nil
}
