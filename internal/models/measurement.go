package models

import (
	"errors"
	"math"
	"time"

	"github.com/jengzang/sdr-records-go/internal/measurement"
	"github.com/jengzang/sdr-records-go/internal/spatial"
	"github.com/jengzang/sdr-records-go/internal/validation"
)

// ErrMissingLocation is returned for an input carrying neither coordinates nor an NMEA sentence
var ErrMissingLocation = errors.New("location requires latitude and longitude or an NMEA sentence")

// Observation times are stored as int64 Unix nanoseconds, which bounds the
// instants a row can hold (1677-09-21 to 2262-04-11, UTC).
var (
	MinObservedAt = time.Unix(0, math.MinInt64).UTC()
	MaxObservedAt = time.Unix(0, math.MaxInt64).UTC()
)

// MeasurementRow is a persisted measurement with its log annotations
type MeasurementRow struct {
	ID          int64   `json:"id" db:"id"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
	ObservedAt  int64   `json:"observedAt" db:"observed_at"` // Unix nanoseconds, UTC
	FrequencyHz float64 `json:"frequencyHz" db:"frequency_hz"`
	PowerDBm    float64 `json:"powerDbm" db:"power_dbm"`
	BandwidthHz float64 `json:"bandwidthHz" db:"bandwidth_hz"`
	SNRDB       float64 `json:"snrDb" db:"snr_db"`
	CellToken   string  `json:"cellToken" db:"cell_token"` // S2 cell at spatial.DefaultCellLevel

	// Annotations
	Callsign           string     `json:"callsign,omitempty" db:"callsign"`
	Mode               SignalMode `json:"mode" db:"mode"`
	Comment            string     `json:"comment,omitempty" db:"comment"`
	RecordingDurationS float64    `json:"recordingDurationS" db:"recording_duration_s"`

	CreatedAt string `json:"createdAt,omitempty" db:"created_at"`
}

// NewMeasurementRow flattens a validated measurement for storage.
// Timestamps outside [MinObservedAt, MaxObservedAt] are an InvalidTimestamp.
func NewMeasurementRow(m measurement.Measurement, entry LogEntry) (MeasurementRow, error) {
	ts := m.Timestamp()
	if ts.Before(MinObservedAt) || ts.After(MaxObservedAt) {
		return MeasurementRow{}, validation.InvalidTimestamp(ts.Format(time.RFC3339Nano) + " is outside the storable range")
	}

	loc := m.Location()
	mode := entry.Mode
	if mode == "" {
		mode = ModeUnknown
	}
	return MeasurementRow{
		Latitude:           loc.Latitude(),
		Longitude:          loc.Longitude(),
		ObservedAt:         ts.UnixNano(),
		FrequencyHz:        m.FrequencyHz(),
		PowerDBm:           m.PowerDBm(),
		BandwidthHz:        m.BandwidthHz(),
		SNRDB:              m.SNRDB(),
		CellToken:          loc.CellToken(spatial.DefaultCellLevel),
		Callsign:           entry.Callsign,
		Mode:               mode,
		Comment:            entry.Comment,
		RecordingDurationS: entry.RecordingDurationS,
	}, nil
}

// ToMeasurement rebuilds the domain value, re-running every validation rule
func (r MeasurementRow) ToMeasurement() (measurement.Measurement, error) {
	loc, err := spatial.NewCoordinate(r.Latitude, r.Longitude)
	if err != nil {
		return measurement.Measurement{}, err
	}
	return measurement.New(loc, time.Unix(0, r.ObservedAt), r.FrequencyHz, r.PowerDBm, r.BandwidthHz, r.SNRDB)
}

// Entry returns the annotations of the row
func (r MeasurementRow) Entry() LogEntry {
	return LogEntry{
		Callsign:           r.Callsign,
		Mode:               r.Mode,
		Comment:            r.Comment,
		RecordingDurationS: r.RecordingDurationS,
	}
}

// MeasurementInput is the raw request body for one measurement.
// Either Latitude and Longitude or NMEA must be set.
type MeasurementInput struct {
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	NMEA        string   `json:"nmea,omitempty"`      // GGA, RMC or GLL sentence
	Timestamp   string   `json:"timestamp,omitempty"` // RFC3339; falls back to the NMEA fix time, then to now
	FrequencyHz float64  `json:"frequencyHz"`
	PowerDBm    float64  `json:"powerDbm"`
	BandwidthHz float64  `json:"bandwidthHz"`
	SNRDB       float64  `json:"snrDb"`

	Callsign           string  `json:"callsign,omitempty"`
	Mode               string  `json:"mode,omitempty"`
	Comment            string  `json:"comment,omitempty"`
	RecordingDurationS float64 `json:"recordingDurationS,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude were supplied
func (in MeasurementInput) HasCoordinates() bool {
	return in.Latitude != nil && in.Longitude != nil
}

// ParsedTimestamp parses Timestamp as RFC3339.
// ok is false when the field is empty.
func (in MeasurementInput) ParsedTimestamp() (ts time.Time, ok bool, err error) {
	if in.Timestamp == "" {
		return time.Time{}, false, nil
	}
	ts, err = ParseTimestamp(in.Timestamp)
	if err != nil {
		return time.Time{}, false, err
	}
	return ts, true, nil
}

// CheckFinite rejects NaN and infinite readings, which cannot be rendered as JSON.
// A non-finite frequency is reported as InvalidFrequency.
func (in MeasurementInput) CheckFinite() error {
	if math.IsNaN(in.FrequencyHz) || math.IsInf(in.FrequencyHz, 0) {
		return validation.InvalidFrequency(in.FrequencyHz)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"power", in.PowerDBm},
		{"bandwidth", in.BandwidthHz},
		{"snr", in.SNRDB},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return validation.NonFiniteValue(f.name, f.v)
		}
	}
	return nil
}

// Entry validates and returns the annotations of the input
func (in MeasurementInput) Entry() (LogEntry, error) {
	return NewLogEntry(in.Callsign, in.Mode, in.Comment, in.RecordingDurationS)
}

// ParseTimestamp parses an RFC3339 timestamp, reporting failures as InvalidTimestamp
func ParseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, validation.InvalidTimestamp(err.Error())
	}
	return ts.UTC(), nil
}
