package models

import (
	"github.com/jengzang/sdr-records-go/internal/measurement"
	"github.com/jengzang/sdr-records-go/internal/spatial"
	"github.com/jengzang/sdr-records-go/internal/validation"
)

// MeasurementFilter represents filter parameters for querying measurements.
// The bounding box needs all four corners or none of them.
type MeasurementFilter struct {
	MinLat       *float64 `form:"minLat"`
	MinLon       *float64 `form:"minLon"`
	MaxLat       *float64 `form:"maxLat"`
	MaxLon       *float64 `form:"maxLon"`
	Start        string   `form:"start"` // RFC3339, inclusive
	End          string   `form:"end"`   // RFC3339, inclusive
	MinFrequency *float64 `form:"minFrequency"`
	MaxFrequency *float64 `form:"maxFrequency"`
	MinPower     *float64 `form:"minPower"` // dBm, inclusive
	Epsilon      *float64 `form:"epsilon"`  // degrees per axis, aggregates only
}

// ToQuery validates the filter and converts it to a layer query
func (f MeasurementFilter) ToQuery() (measurement.Query, error) {
	var q measurement.Query

	corners := 0
	for _, p := range []*float64{f.MinLat, f.MinLon, f.MaxLat, f.MaxLon} {
		if p != nil {
			corners++
		}
	}
	switch corners {
	case 0:
	case 4:
		box, err := spatial.NewBoundingBoxFromDegrees(*f.MinLat, *f.MinLon, *f.MaxLat, *f.MaxLon)
		if err != nil {
			return q, err
		}
		q.BBox = &box
	default:
		return q, validation.InvalidBoundingBox("minLat, minLon, maxLat and maxLon must be given together")
	}

	if f.Start != "" {
		start, err := ParseTimestamp(f.Start)
		if err != nil {
			return q, err
		}
		q.Start = &start
	}
	if f.End != "" {
		end, err := ParseTimestamp(f.End)
		if err != nil {
			return q, err
		}
		q.End = &end
	}

	q.MinFrequency = f.MinFrequency
	q.MaxFrequency = f.MaxFrequency
	q.MinPower = f.MinPower
	return q, nil
}
