package model

// Location is a named coordinate pair.  Two locations are the same
// place when their coordinates match; the display name plays no part
// in equality.
type Location struct {
	Name      string  // human-readable place name
	Latitude  float64 // WGS84 latitude
	Longitude float64 // WGS84 longitude
}

// Equal compares locations by their semantic key, the coordinate pair.
func (l Location) Equal(other Location) bool {
	return l.Latitude == other.Latitude && l.Longitude == other.Longitude
}

// Stop is an intermediate location on a trip's route.  The stop
// sequence is owned exclusively by its trip and ordered by Position.
type Stop struct {
	ID       uint64   // trip_stops.id
	TripID   uint64   // trip_stops.trip_id
	Position uint32   // trip_stops.position, 0-based order along the route
	Place    Location // trip_stops.name/lat/lng columns
}
