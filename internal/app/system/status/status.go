// Package status defines lifecycle status constants shared across stores.
package status

const (
	Active    = "active"
	Inactive  = "inactive"
	Suspended = "suspended"
)
