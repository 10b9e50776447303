// internal/domain/models/repair.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repair status values. These are the only statuses a repair ticket may
// carry; both inputval and the collection validators build their enum
// from this list.
const (
	RepairPending    = "pending"
	RepairInProgress = "in-progress"
	RepairCompleted  = "completed"
)

// RepairStatuses is the canonical ordered list of valid repair statuses.
var RepairStatuses = []string{RepairPending, RepairInProgress, RepairCompleted}

// IsValidRepairStatus reports whether s is one of the enumerated statuses.
func IsValidRepairStatus(s string) bool {
	for _, v := range RepairStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Repair is a repair ticket for a customer's device.
//
// RepairID is the human-readable secondary identifier shown on printed
// tickets (e.g. "jan4821"); the ObjectID remains the primary key.
type Repair struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RepairID string             `bson:"repair_id" json:"repair_id"`

	CustomerID primitive.ObjectID `bson:"customer_id" json:"customer_id"`

	DeviceType string `bson:"device_type" json:"device_type"`
	Brand      string `bson:"brand" json:"brand"`
	Model      string `bson:"model" json:"model"`

	Status string   `bson:"status" json:"status"` // pending | in-progress | completed
	Cost   float64  `bson:"cost" json:"cost"`
	Tasks  []string `bson:"tasks" json:"tasks"`

	TechnicianID *primitive.ObjectID `bson:"technician_id,omitempty" json:"technician_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
