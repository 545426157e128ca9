package models

// Status is the lifecycle state of a catalog service or a client.
// Records are never hard-deleted; they move between Active and Inactive.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsActive() bool {
	return s == StatusActive
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Toggled returns the opposite state.
func (s Status) Toggled() Status {
	if s.IsActive() {
		return StatusInactive
	}
	return StatusActive
}
