// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values. Roles gate writes: staff can manage customers, repairs,
// and products; admins additionally manage technicians, users, and
// deletions. The collection validators build their enum from this list.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Roles is the canonical list of valid user roles.
var Roles = []string{RoleAdmin, RoleStaff}

// IsValidRole reports whether s is one of the enumerated roles.
func IsValidRole(s string) bool {
	for _, v := range Roles {
		if s == v {
			return true
		}
	}
	return false
}

// User is an account that can sign in. Email is the login identity and
// is unique across the users collection.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FullName     string             `bson:"full_name" json:"full_name"`
	Role         string             `bson:"role" json:"role"`     // admin | staff
	Status       string             `bson:"status" json:"status"` // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
