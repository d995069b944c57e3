package model

import "time"

// ViolationKind classifies a driver infraction.  Each kind carries a
// strike weight used by enforcement policy when summing a driver's
// active violations.
type ViolationKind string

const (
	ViolationLateStartMinor ViolationKind = "LATE_START_MINOR" // 10-15 min late to start
	ViolationLateStartMajor ViolationKind = "LATE_START_MAJOR" // 15+ min late (trip auto-started)
	ViolationForgottenClose ViolationKind = "FORGOTTEN_CLOSE"  // never marked the trip finished
	ViolationNoShow         ViolationKind = "NO_SHOW"          // never departed at all
)

// StrikeWeight returns how heavily the kind counts toward enforcement
// thresholds.  Unknown kinds weigh 1.
func (k ViolationKind) StrikeWeight() int {
	switch k {
	case ViolationLateStartMajor, ViolationNoShow:
		return 2
	default:
		return 1
	}
}

// Violation records a driver infraction tied to a trip.  A violation
// counts toward enforcement only while Active is true and the
// expiration has not passed; the tracker flips Active off once the
// window closes but never deletes the row.
//
// Fields:
//  ID           – primary key identifier.
//  DriverID     – driver who committed the infraction.
//  TripID       – trip involved; nil for infractions outside a trip.
//  Kind         – classification of the infraction.
//  OccurredAt   – when the infraction was recorded.
//  DelayMinutes – lateness in minutes where applicable; nil otherwise.
//  Active       – whether the violation still counts.
//  ExpiresAt    – when the violation stops counting.
//  Description  – free text shown to support staff.
type Violation struct {
	ID           uint64        // driver_violations.id
	DriverID     uint64        // driver_violations.driver_id
	TripID       *uint64       // driver_violations.trip_id (nullable)
	Kind         ViolationKind // driver_violations.kind
	OccurredAt   time.Time     // driver_violations.occurred_at
	DelayMinutes *int          // driver_violations.delay_minutes (nullable)
	Active       bool          // driver_violations.active
	ExpiresAt    time.Time     // driver_violations.expires_at
	Description  string        // driver_violations.description
}
