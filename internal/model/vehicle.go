package model

import "time"

// Vehicle belongs to a driver and fixes the seat capacity a trip is
// published with.  Editing a vehicle later never changes the capacity
// of trips already published from it.
//
// Fields:
//  ID        – primary key identifier.
//  DriverID  – owning driver.
//  Plate     – license plate, unique.
//  Brand     – manufacturer name.
//  ModelName – commercial model name.
//  Seats     – passenger seat capacity (excludes the driver's seat).
//  CreatedAt – timestamp of creation.
type Vehicle struct {
	ID        uint64    // vehicles.id
	DriverID  uint64    // vehicles.driver_id
	Plate     string    // vehicles.plate
	Brand     string    // vehicles.brand
	ModelName string    // vehicles.model
	Seats     uint32    // vehicles.seats
	CreatedAt time.Time // vehicles.created_at
}
