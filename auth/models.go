package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountRole is the account's role
type AccountRole = string

const (
	// RoleDispatcher can manage driver records
	RoleDispatcher AccountRole = "dispatcher"
	// RoleAdmin can additionally manage accounts
	RoleAdmin AccountRole = "admin"
)

// Account is the login account model for registry operators
type Account struct {
	bun.BaseModel  `bun:"table:accounts,alias:acc"`
	ID             uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           AccountRole `bun:"account_role,notnull" json:"account_role,omitempty"`
	Username       string      `bun:"username,notnull,unique" json:"username,omitempty"`
	DisplayName    string      `bun:"display_name" json:"display_name,omitempty"`
	PasswordHash   string      `bun:"password_hash" json:"-"`
	LoginAttempts  int         `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time  `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time  `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
