package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jengzang/sdr-records-go/internal/measurement"
	"github.com/jengzang/sdr-records-go/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func at(t *testing.T, lat, lon float64, offset time.Duration, power, snr float64) measurement.Measurement {
	t.Helper()
	c, err := spatial.NewCoordinate(lat, lon)
	require.NoError(t, err)
	m, err := measurement.New(c, baseTime.Add(offset), 2.45e9, power, 20e6, snr)
	require.NoError(t, err)
	return m
}

func TestByLocationGroupsSameLocation(t *testing.T) {
	ms := []measurement.Measurement{
		at(t, 37.7749, -122.4194, 0, -60, 20),
		at(t, 37.7749, -122.4194, 5*time.Minute, -65, 18),
		at(t, 37.7749, -122.4194, 10*time.Minute, -70, 15),
	}

	aggs := ByLocation(ms, 0.0001)

	require.Len(t, aggs, 1)
	agg := aggs[0]
	assert.Equal(t, 3, agg.MeasurementCount)
	assert.Equal(t, -70.0, agg.Power.Min)
	assert.Equal(t, -60.0, agg.Power.Max)
	assert.InDelta(t, -65.0, agg.Power.Avg, 0.1)
	assert.Equal(t, 15.0, agg.SNR.Min)
	assert.Equal(t, 20.0, agg.SNR.Max)
	assert.InDelta(t, 17.666, agg.SNR.Avg, 0.1)
	assert.Equal(t, ms[0].Location(), agg.RepresentativeLocation)
	assert.True(t, baseTime.Equal(agg.FirstSeen))
	assert.True(t, baseTime.Add(10*time.Minute).Equal(agg.LastSeen))
}

func TestByLocationSeparatesDistantPoints(t *testing.T) {
	ms := []measurement.Measurement{
		at(t, 10, 10, 0, -50, 10),
		at(t, 20, 20, 0, -55, 11),
		at(t, 10.00001, 10.00001, 0, -60, 12),
	}

	aggs := ByLocation(ms, 0.001)

	require.Len(t, aggs, 2)
	assert.Equal(t, 10.0, aggs[0].RepresentativeLocation.Latitude())
	assert.Equal(t, 2, aggs[0].MeasurementCount)
	assert.Equal(t, 20.0, aggs[1].RepresentativeLocation.Latitude())
	assert.Equal(t, 1, aggs[1].MeasurementCount)
}

func TestByLocationRequiresBothAxesWithinEpsilon(t *testing.T) {
	ms := []measurement.Measurement{
		at(t, 0, 0, 0, -50, 10),
		at(t, 0.00005, 0.5, 0, -50, 10),
	}

	assert.Len(t, ByLocation(ms, 0.0001), 2)
}

func TestByLocationStrictEpsilonBoundary(t *testing.T) {
	ms := []measurement.Measurement{
		at(t, 0, 0, 0, -50, 10),
		at(t, 0.5, 0, 0, -50, 10),
	}

	assert.Len(t, ByLocation(ms, 0.5), 2)
}

func TestByLocationFirstMatchWins(t *testing.T) {
	// Third point is within epsilon of both representatives; it must join the
	// cluster that was created first.
	ms := []measurement.Measurement{
		at(t, 0, 0, 0, -40, 1),
		at(t, 0, 0.15, 0, -50, 2),
		at(t, 0, 0.08, 0, -60, 3),
	}

	aggs := ByLocation(ms, 0.1)

	require.Len(t, aggs, 2)
	assert.Equal(t, 2, aggs[0].MeasurementCount)
	assert.Equal(t, -60.0, aggs[0].Power.Min)
	assert.Equal(t, 1, aggs[1].MeasurementCount)
}

func TestByLocationRepresentativeDoesNotDrift(t *testing.T) {
	// A chain of points each within epsilon of the previous one but not of the
	// first: the representative stays fixed, so the chain splits.
	ms := []measurement.Measurement{
		at(t, 0, 0, 0, -40, 1),
		at(t, 0.06, 0, 0, -40, 1),
		at(t, 0.12, 0, 0, -40, 1),
	}

	aggs := ByLocation(ms, 0.1)

	require.Len(t, aggs, 2)
	assert.Equal(t, 2, aggs[0].MeasurementCount)
	assert.Equal(t, 0.12, aggs[1].RepresentativeLocation.Latitude())
}

func TestByLocationEmptyInput(t *testing.T) {
	aggs := ByLocation(nil, 0.1)
	assert.NotNil(t, aggs)
	assert.Empty(t, aggs)
}

func TestByLocationZeroEpsilonIsolatesEveryMeasurement(t *testing.T) {
	ms := []measurement.Measurement{
		at(t, 1, 1, 0, -40, 1),
		at(t, 1, 1, 0, -41, 1),
	}
	assert.Len(t, ByLocation(ms, 0), 2)
}

func TestByLocationCountsAndStatsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	ms := make([]measurement.Measurement, 0, 300)
	for i := 0; i < 300; i++ {
		ms = append(ms, at(t,
			rng.Float64()*2, rng.Float64()*2,
			time.Duration(rng.Intn(3600))*time.Second,
			-100+rng.Float64()*60, rng.Float64()*30,
		))
	}

	for _, eps := range []float64{0, 0.01, 0.1, 0.5, 5} {
		aggs := ByLocation(ms, eps)

		total := 0
		for _, agg := range aggs {
			assert.GreaterOrEqual(t, agg.MeasurementCount, 1)
			assert.LessOrEqual(t, agg.Power.Min, agg.Power.Avg)
			assert.LessOrEqual(t, agg.Power.Avg, agg.Power.Max)
			assert.LessOrEqual(t, agg.SNR.Min, agg.SNR.Avg)
			assert.LessOrEqual(t, agg.SNR.Avg, agg.SNR.Max)
			assert.False(t, agg.LastSeen.Before(agg.FirstSeen))
			total += agg.MeasurementCount
		}
		assert.Equal(t, len(ms), total, "eps=%v", eps)
	}

	assert.Len(t, ByLocation(ms, 5), 1)
}
