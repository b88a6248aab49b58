package spatial

// EarthRadiusMeters is Earth's mean radius in meters
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance to o.
// Informational only: clustering and range queries work in degrees.
func (c Coordinate) DistanceMeters(o Coordinate) float64 {
	return c.LatLng().Distance(o.LatLng()).Radians() * EarthRadiusMeters
}

// DiagonalMeters returns the great-circle length of the south-west to north-east diagonal
func (b BoundingBox) DiagonalMeters() float64 {
	return b.southWest.DistanceMeters(b.northEast)
}
