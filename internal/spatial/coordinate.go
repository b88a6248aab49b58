package spatial

import (
	"encoding/json"
	"strconv"

	"github.com/jengzang/sdr-records-go/internal/validation"
)

// Coordinate is a validated WGS84 latitude/longitude pair in decimal degrees.
// The zero value is (0, 0), which is a valid position.
type Coordinate struct {
	lat float64
	lon float64
}

// NewCoordinate validates latitude in [-90, 90] and longitude in [-180, 180].
// NaN fails the range check of its axis.
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	if !(latitude >= -90 && latitude <= 90) {
		return Coordinate{}, validation.InvalidLatitude(latitude)
	}
	if !(longitude >= -180 && longitude <= 180) {
		return Coordinate{}, validation.InvalidLongitude(longitude)
	}
	return Coordinate{lat: latitude, lon: longitude}, nil
}

// Latitude returns the latitude in decimal degrees
func (c Coordinate) Latitude() float64 { return c.lat }

// Longitude returns the longitude in decimal degrees
func (c Coordinate) Longitude() float64 { return c.lon }

// String renders the coordinate as "(lat, lon)"
func (c Coordinate) String() string {
	return "(" + formatDegrees(c.lat) + ", " + formatDegrees(c.lon) + ")"
}

type coordinateJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MarshalJSON implements json.Marshaler
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(coordinateJSON{Latitude: c.lat, Longitude: c.lon})
}

// UnmarshalJSON decodes and validates a coordinate
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var raw coordinateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewCoordinate(raw.Latitude, raw.Longitude)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
