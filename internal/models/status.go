package models

// EntityStatus is the delivery status reported by the ad platform.
type EntityStatus string

const (
	StatusActive   EntityStatus = "ACTIVE"
	StatusPaused   EntityStatus = "PAUSED"
	StatusDeleted  EntityStatus = "DELETED"
	StatusArchived EntityStatus = "ARCHIVED"
)

// Toggleable reports whether the status can be flipped between ACTIVE and
// PAUSED. Every other value is terminal.
func (s EntityStatus) Toggleable() bool {
	return s == StatusActive || s == StatusPaused
}

// Opposite returns the other side of the ACTIVE/PAUSED pair. Terminal
// statuses are returned unchanged.
func (s EntityStatus) Opposite() EntityStatus {
	switch s {
	case StatusActive:
		return StatusPaused
	case StatusPaused:
		return StatusActive
	}
	return s
}
