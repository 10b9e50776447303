// internal/app/policy/accesspolicy/accesspolicy.go

// Package accesspolicy is the single source of truth for the
// per-collection permission matrix:
//
//	collection    read        create/update   delete
//	customers     signed-in   staff, admin    admin
//	repairs       signed-in   staff, admin    admin
//	products      signed-in   staff, admin    admin
//	technicians   signed-in   admin           admin
//	users         signed-in   admin or owner  admin
//
// Route middleware consults this table; the same shape rules are
// duplicated server-side by the $jsonSchema collection validators as
// defense in depth.
package accesspolicy

import (
	"net/http"

	"github.com/fixtrack/fixtrack/internal/app/system/authz"
	"github.com/fixtrack/fixtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names the policy knows about.
const (
	Customers   = "customers"
	Repairs     = "repairs"
	Products    = "products"
	Technicians = "technicians"
	Users       = "users"
)

// writeRoles maps each collection to the roles allowed to create or
// update its documents.
var writeRoles = map[string][]string{
	Customers:   {models.RoleStaff, models.RoleAdmin},
	Repairs:     {models.RoleStaff, models.RoleAdmin},
	Products:    {models.RoleStaff, models.RoleAdmin},
	Technicians: {models.RoleAdmin},
	Users:       {models.RoleAdmin},
}

// CanRead reports whether the current request's user may read the
// collection. Any signed-in user may read everything.
func CanRead(r *http.Request, collection string) bool {
	_, _, _, ok := authz.UserCtx(r)
	return ok
}

// CanWrite reports whether the current request's user may create or
// update documents in the collection.
func CanWrite(r *http.Request, collection string) bool {
	roles, known := writeRoles[collection]
	if !known {
		return false
	}
	return authz.HasAnyRole(r, roles...)
}

// CanWriteUser reports whether the current request's user may write the
// given user record: admins always, otherwise only the owning user.
func CanWriteUser(r *http.Request, targetID primitive.ObjectID) bool {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	return uid == targetID
}

// CanDelete reports whether the current request's user may delete from
// the collection. Deletion is admin-only everywhere.
func CanDelete(r *http.Request, collection string) bool {
	return authz.IsAdmin(r)
}

// WriteRoles returns the roles allowed to write the collection, in
// matrix order. Used by route wiring to build RequireRole middleware.
func WriteRoles(collection string) []string {
	return writeRoles[collection]
}
