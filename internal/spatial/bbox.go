package spatial

import (
	"encoding/json"
	"math"

	"github.com/jengzang/sdr-records-go/internal/validation"
)

// BoundingBox is an axis-aligned latitude/longitude rectangle.
// It is always normalized: southWest holds the smaller latitude and longitude,
// northEast the larger ones.
type BoundingBox struct {
	southWest Coordinate
	northEast Coordinate
}

// NewBoundingBox builds a box from two opposite corners given in any order
func NewBoundingBox(a, b Coordinate) (BoundingBox, error) {
	sw := Coordinate{lat: math.Min(a.lat, b.lat), lon: math.Min(a.lon, b.lon)}
	ne := Coordinate{lat: math.Max(a.lat, b.lat), lon: math.Max(a.lon, b.lon)}

	// Only reachable with NaN components, which the Coordinate constructor rejects.
	if !(sw.lat <= ne.lat) || !(sw.lon <= ne.lon) {
		return BoundingBox{}, validation.InvalidBoundingBox("corners " + a.String() + " and " + b.String() + " do not form a rectangle")
	}

	return BoundingBox{southWest: sw, northEast: ne}, nil
}

// NewBoundingBoxFromDegrees validates both corners and builds the box
func NewBoundingBoxFromDegrees(lat1, lon1, lat2, lon2 float64) (BoundingBox, error) {
	a, err := NewCoordinate(lat1, lon1)
	if err != nil {
		return BoundingBox{}, err
	}
	b, err := NewCoordinate(lat2, lon2)
	if err != nil {
		return BoundingBox{}, err
	}
	return NewBoundingBox(a, b)
}

// SouthWest returns the corner with the minimum latitude and longitude
func (b BoundingBox) SouthWest() Coordinate { return b.southWest }

// NorthEast returns the corner with the maximum latitude and longitude
func (b BoundingBox) NorthEast() Coordinate { return b.northEast }

// Contains reports whether c lies inside the box, edges included
func (b BoundingBox) Contains(c Coordinate) bool {
	return b.southWest.lat <= c.lat && c.lat <= b.northEast.lat &&
		b.southWest.lon <= c.lon && c.lon <= b.northEast.lon
}

// String renders the box as "[sw - ne]"
func (b BoundingBox) String() string {
	return "[" + b.southWest.String() + " - " + b.northEast.String() + "]"
}

// MarshalJSON implements json.Marshaler
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SouthWest Coordinate `json:"southWest"`
		NorthEast Coordinate `json:"northEast"`
	}{b.southWest, b.northEast})
}

// Extent returns the minimal box covering every coordinate.
// ok is false for an empty input; no degenerate box is produced.
func Extent(coords []Coordinate) (box BoundingBox, ok bool) {
	if len(coords) == 0 {
		return BoundingBox{}, false
	}

	minLat, maxLat := coords[0].lat, coords[0].lat
	minLon, maxLon := coords[0].lon, coords[0].lon

	for _, c := range coords[1:] {
		if c.lat < minLat {
			minLat = c.lat
		}
		if c.lat > maxLat {
			maxLat = c.lat
		}
		if c.lon < minLon {
			minLon = c.lon
		}
		if c.lon > maxLon {
			maxLon = c.lon
		}
	}

	return BoundingBox{
		southWest: Coordinate{lat: minLat, lon: minLon},
		northEast: Coordinate{lat: maxLat, lon: maxLon},
	}, true
}
