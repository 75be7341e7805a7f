package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCreator Role = "creator"
	RoleAgent   Role = "agent"
	RoleManager Role = "manager"
	RoleAgency  Role = "agency"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleAgent, RoleManager, RoleAgency:
		return true
	}
	return false
}

// Member is one node of the agency hierarchy. Creators point at their agent,
// agents at their manager and managers at their agency through ParentID.
// Rows are provisioned elsewhere and only read here.
type Member struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex" json:"username"`
	Role      Role       `gorm:"index" json:"role"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
