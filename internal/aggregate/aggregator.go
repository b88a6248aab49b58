// Package aggregate groups measurements by location proximity and summarizes
// power and SNR per group.
package aggregate

import (
	"math"
	"time"

	"github.com/jengzang/sdr-records-go/internal/measurement"
	"github.com/jengzang/sdr-records-go/internal/spatial"
	"github.com/jengzang/sdr-records-go/internal/stats"
)

// LocationAggregate summarizes one cluster of nearby measurements
type LocationAggregate struct {
	RepresentativeLocation spatial.Coordinate `json:"representativeLocation"`
	MeasurementCount       int                `json:"measurementCount"`
	Power                  stats.Summary      `json:"power"`
	SNR                    stats.Summary      `json:"snr"`
	FirstSeen              time.Time          `json:"firstSeen"`
	LastSeen               time.Time          `json:"lastSeen"`
}

type cluster struct {
	representative spatial.Coordinate
	power          stats.Accumulator
	snr            stats.Accumulator
	firstSeen      time.Time
	lastSeen       time.Time
}

func (c *cluster) add(m measurement.Measurement) {
	c.power.Add(m.PowerDBm())
	c.snr.Add(m.SNRDB())
	ts := m.Timestamp()
	if c.power.Count() == 1 || ts.Before(c.firstSeen) {
		c.firstSeen = ts
	}
	if c.power.Count() == 1 || ts.After(c.lastSeen) {
		c.lastSeen = ts
	}
}

func (c *cluster) near(loc spatial.Coordinate, epsilon float64) bool {
	return math.Abs(loc.Latitude()-c.representative.Latitude()) < epsilon &&
		math.Abs(loc.Longitude()-c.representative.Longitude()) < epsilon
}

// ByLocation clusters measurements greedily in input order. Each measurement
// joins the first cluster, in creation order, whose representative (the first
// member's location) is within epsilon on both axes; otherwise it opens a new
// cluster. Aggregates are returned in cluster creation order.
//
// Runs in O(n*k) for k clusters. A non-positive epsilon puts every
// measurement in its own cluster.
func ByLocation(measurements []measurement.Measurement, epsilon float64) []LocationAggregate {
	var clusters []*cluster

	for _, m := range measurements {
		loc := m.Location()

		var target *cluster
		for _, c := range clusters {
			if c.near(loc, epsilon) {
				target = c
				break
			}
		}
		if target == nil {
			target = &cluster{representative: loc}
			clusters = append(clusters, target)
		}
		target.add(m)
	}

	out := make([]LocationAggregate, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, LocationAggregate{
			RepresentativeLocation: c.representative,
			MeasurementCount:       c.power.Count(),
			Power:                  c.power.Summary(),
			SNR:                    c.snr.Summary(),
			FirstSeen:              c.firstSeen,
			LastSeen:               c.lastSeen,
		})
	}
	return out
}
