package spatial

import (
	"github.com/golang/geo/s2"
)

// DefaultCellLevel is the S2 level stored alongside persisted measurements
// (cells of roughly 1 km edge).
const DefaultCellLevel = 13

// LatLng converts the coordinate to an S2 LatLng
func (c Coordinate) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.lat, c.lon)
}

// CellToken returns the token of the S2 cell containing the coordinate at the
// given level. Levels are clamped to [0, 30].
func (c Coordinate) CellToken(level int) string {
	if level < 0 {
		level = 0
	}
	if level > s2.MaxLevel {
		level = s2.MaxLevel
	}
	return s2.CellIDFromLatLng(c.LatLng()).Parent(level).ToToken()
}
