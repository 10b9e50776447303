// internal/domain/models/technician.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Technician is a staff member who performs repairs.
//
// Availability is a simple boolean flag; scheduling beyond "currently
// taking work" is out of scope.
type Technician struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TechID string             `bson:"tech_id" json:"tech_id"` // e.g. "TECH-9X2K4M"

	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped

	Specialization []string `bson:"specialization" json:"specialization"`
	Availability   bool     `bson:"availability" json:"availability"`

	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone" json:"phone"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
