package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DriverStatus tracks whether a driver is available for assignment
type DriverStatus = string

const (
	StatusActive   DriverStatus = "active"
	StatusInactive DriverStatus = "inactive"
)

// Driver is a fleet driver record
type Driver struct {
	bun.BaseModel `bun:"table:drivers,alias:drv"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName     string       `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string       `bun:"last_name,notnull" json:"last_name,omitempty"`
	LicenseNo     string       `bun:"license_no,notnull,unique" json:"license_no,omitempty"`
	Phone         string       `bun:"phone" json:"phone,omitempty"`
	Email         string       `bun:"email" json:"email,omitempty"`
	Status        DriverStatus `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// ValidStatus reports whether s is a known driver status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive
}
