package measurement

import (
	"iter"
	"slices"
	"time"

	"github.com/jengzang/sdr-records-go/internal/spatial"
	"github.com/jengzang/sdr-records-go/internal/validation"
)

// Layer is an insertion-ordered, read-only collection of measurements.
// It is safe for concurrent readers; nothing mutates it after NewLayer.
type Layer struct {
	measurements []Measurement
}

// NewLayer takes a private copy of the batch so later changes to the caller's
// slice cannot reach the layer.
func NewLayer(measurements []Measurement) *Layer {
	return &Layer{measurements: slices.Clone(measurements)}
}

// MeasurementCount returns the number of stored measurements
func (l *Layer) MeasurementCount() int {
	return len(l.measurements)
}

// Measurements iterates over every stored measurement in insertion order.
// The sequence can be ranged over any number of times.
func (l *Layer) Measurements() iter.Seq[Measurement] {
	return func(yield func(Measurement) bool) {
		for _, m := range l.measurements {
			if !yield(m) {
				return
			}
		}
	}
}

// SpatialExtent returns the minimal box covering all stored locations.
// ok is false when the layer is empty.
func (l *Layer) SpatialExtent() (box spatial.BoundingBox, ok bool) {
	coords := make([]spatial.Coordinate, len(l.measurements))
	for i, m := range l.measurements {
		coords[i] = m.location
	}
	return spatial.Extent(coords)
}

// Extent is SpatialExtent for callers that want an error on an empty layer
func (l *Layer) Extent() (spatial.BoundingBox, error) {
	box, ok := l.SpatialExtent()
	if !ok {
		return spatial.BoundingBox{}, validation.EmptyDataset()
	}
	return box, nil
}

// QueryByBBox returns measurements located inside bbox, edges included
func (l *Layer) QueryByBBox(bbox spatial.BoundingBox) []Measurement {
	return l.filter(func(m Measurement) bool {
		return bbox.Contains(m.location)
	})
}

// QueryByTimeRange returns measurements with start <= timestamp <= end
func (l *Layer) QueryByTimeRange(start, end time.Time) []Measurement {
	return l.filter(func(m Measurement) bool {
		return !m.timestamp.Before(start) && !m.timestamp.After(end)
	})
}

// QueryByFrequencyRange returns measurements with minHz <= frequency <= maxHz
func (l *Layer) QueryByFrequencyRange(minHz, maxHz float64) []Measurement {
	return l.filter(func(m Measurement) bool {
		return minHz <= m.frequencyHz && m.frequencyHz <= maxHz
	})
}

// QueryByPowerThreshold returns measurements with power >= thresholdDBm
func (l *Layer) QueryByPowerThreshold(thresholdDBm float64) []Measurement {
	return l.filter(func(m Measurement) bool {
		return m.powerDBm >= thresholdDBm
	})
}

// Query combines range predicates. Nil fields are not applied.
type Query struct {
	BBox         *spatial.BoundingBox
	Start        *time.Time
	End          *time.Time
	MinFrequency *float64
	MaxFrequency *float64
	MinPower     *float64
}

// Matches reports whether m satisfies every predicate set on q
func (q Query) Matches(m Measurement) bool {
	if q.BBox != nil && !q.BBox.Contains(m.location) {
		return false
	}
	if q.Start != nil && m.timestamp.Before(*q.Start) {
		return false
	}
	if q.End != nil && m.timestamp.After(*q.End) {
		return false
	}
	if q.MinFrequency != nil && m.frequencyHz < *q.MinFrequency {
		return false
	}
	if q.MaxFrequency != nil && m.frequencyHz > *q.MaxFrequency {
		return false
	}
	if q.MinPower != nil && m.powerDBm < *q.MinPower {
		return false
	}
	return true
}

// Query returns the measurements matching every predicate of q
func (l *Layer) Query(q Query) []Measurement {
	return l.filter(q.Matches)
}

func (l *Layer) filter(keep func(Measurement) bool) []Measurement {
	out := make([]Measurement, 0)
	for _, m := range l.measurements {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
