// Package measurement holds validated radio-signal observations and the
// read-only Layer collection that answers range queries over them.
package measurement

import (
	"encoding/json"
	"time"

	"github.com/jengzang/sdr-records-go/internal/spatial"
	"github.com/jengzang/sdr-records-go/internal/validation"
)

// Measurement is one radio-signal observation at a location and instant.
// Values are immutable; construct them with New.
type Measurement struct {
	location    spatial.Coordinate
	timestamp   time.Time
	frequencyHz float64
	powerDBm    float64
	bandwidthHz float64
	snrDB       float64
}

// New validates the frequency (must be > 0) and builds a Measurement.
// The location is trusted as already validated. Power, bandwidth and SNR are
// stored as given. The timestamp is normalized to UTC.
func New(location spatial.Coordinate, timestamp time.Time, frequencyHz, powerDBm, bandwidthHz, snrDB float64) (Measurement, error) {
	if !(frequencyHz > 0) {
		return Measurement{}, validation.InvalidFrequency(frequencyHz)
	}

	return Measurement{
		location:    location,
		timestamp:   timestamp.UTC(),
		frequencyHz: frequencyHz,
		powerDBm:    powerDBm,
		bandwidthHz: bandwidthHz,
		snrDB:       snrDB,
	}, nil
}

func (m Measurement) Location() spatial.Coordinate { return m.location }
func (m Measurement) Timestamp() time.Time         { return m.timestamp }
func (m Measurement) FrequencyHz() float64         { return m.frequencyHz }
func (m Measurement) PowerDBm() float64            { return m.powerDBm }
func (m Measurement) BandwidthHz() float64         { return m.bandwidthHz }
func (m Measurement) SNRDB() float64               { return m.snrDB }

type measurementJSON struct {
	Location    spatial.Coordinate `json:"location"`
	Timestamp   time.Time          `json:"timestamp"`
	FrequencyHz float64            `json:"frequencyHz"`
	PowerDBm    float64            `json:"powerDbm"`
	BandwidthHz float64            `json:"bandwidthHz"`
	SNRDB       float64            `json:"snrDb"`
}

// MarshalJSON implements json.Marshaler
func (m Measurement) MarshalJSON() ([]byte, error) {
	return json.Marshal(measurementJSON{
		Location:    m.location,
		Timestamp:   m.timestamp,
		FrequencyHz: m.frequencyHz,
		PowerDBm:    m.powerDBm,
		BandwidthHz: m.bandwidthHz,
		SNRDB:       m.snrDB,
	})
}

// UnmarshalJSON decodes a measurement through New, so invalid payloads are rejected
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var raw measurementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := New(raw.Location, raw.Timestamp, raw.FrequencyHz, raw.PowerDBm, raw.BandwidthHz, raw.SNRDB)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
