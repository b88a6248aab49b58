// Package ingest turns receiver output into validated locations.
package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"

	"github.com/jengzang/sdr-records-go/internal/spatial"
)

var (
	// ErrUnsupportedSentence is returned for NMEA sentences that carry no position
	ErrUnsupportedSentence = errors.New("unsupported NMEA sentence")
	// ErrNoFix is returned when the receiver reports an invalid position
	ErrNoFix = errors.New("NMEA sentence has no valid fix")
)

// Fix is a position decoded from one NMEA sentence
type Fix struct {
	Type     string // GGA, RMC or GLL
	Location spatial.Coordinate
	// Time is the full UTC fix time. Only RMC carries a date, so HasDate is
	// false for GGA and GLL and Time holds the time of day on the zero date.
	Time    time.Time
	HasDate bool
}

// ParseNMEA decodes a GGA, RMC or GLL sentence into a Fix
func ParseNMEA(raw string) (Fix, error) {
	sentence, err := nmea.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Fix{}, fmt.Errorf("failed to parse NMEA sentence: %w", err)
	}

	var (
		fix      Fix
		lat, lon float64
	)
	switch s := sentence.(type) {
	case nmea.GGA:
		if s.FixQuality == nmea.Invalid {
			return Fix{}, ErrNoFix
		}
		fix = Fix{Type: nmea.TypeGGA, Time: timeOfDay(s.Time)}
		lat, lon = s.Latitude, s.Longitude
	case nmea.RMC:
		if s.Validity != nmea.ValidRMC {
			return Fix{}, ErrNoFix
		}
		fix = Fix{Type: nmea.TypeRMC, Time: dateTime(s.Date, s.Time), HasDate: s.Date.Valid}
		lat, lon = s.Latitude, s.Longitude
	case nmea.GLL:
		if s.Validity != nmea.ValidGLL {
			return Fix{}, ErrNoFix
		}
		fix = Fix{Type: nmea.TypeGLL, Time: timeOfDay(s.Time)}
		lat, lon = s.Latitude, s.Longitude
	default:
		return Fix{}, fmt.Errorf("%w: %s", ErrUnsupportedSentence, sentence.DataType())
	}

	loc, err := spatial.NewCoordinate(lat, lon)
	if err != nil {
		return Fix{}, err
	}
	fix.Location = loc
	return fix, nil
}

func timeOfDay(t nmea.Time) time.Time {
	return time.Date(0, time.January, 1, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}

// dateTime combines an RMC date and time. Two-digit years from 70 map to 19xx.
func dateTime(d nmea.Date, t nmea.Time) time.Time {
	if !d.Valid {
		return timeOfDay(t)
	}
	year := 2000 + d.YY
	if d.YY >= 70 {
		year = 1900 + d.YY
	}
	return time.Date(year, time.Month(d.MM), d.DD, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}
