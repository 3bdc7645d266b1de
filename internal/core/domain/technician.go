package domain

import "github.com/google/uuid"

// Technician is a member of the support staff that tickets are assigned to.
// Used only for grouping per-technician rollups.
type Technician struct {
	ID             uuid.UUID
	FullName       string
	Specialization string
}
