package models

import (
	"time"

	"github.com/google/uuid"
)

// CrewAssignment places one worker on one site. The relation is id-based; the
// site name shown in rosters is resolved at read time, so renaming a site
// never strands an assignment.
type CrewAssignment struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkerID   uuid.UUID `gorm:"column:worker_id;type:uuid;not null;uniqueIndex"`
	SiteID     uuid.UUID `gorm:"column:site_id;type:uuid;not null;index"`
	RoleOnSite string    `gorm:"column:role_on_site"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoCreateTime"`
}
