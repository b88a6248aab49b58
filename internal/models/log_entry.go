package models

import (
	"math"
	"strings"

	"github.com/jengzang/sdr-records-go/internal/validation"
)

// SignalMode is the demodulation mode an operator logged
type SignalMode string

// SignalMode constants
const (
	ModeFM      SignalMode = "FM"
	ModeAM      SignalMode = "AM"
	ModeUSB     SignalMode = "USB"
	ModeLSB     SignalMode = "LSB"
	ModeCW      SignalMode = "CW"
	ModeUnknown SignalMode = "UNKNOWN"
)

// ParseSignalMode maps free text onto a known mode, case-insensitively.
// Anything unrecognized becomes ModeUnknown.
func ParseSignalMode(s string) SignalMode {
	switch SignalMode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeFM:
		return ModeFM
	case ModeAM:
		return ModeAM
	case ModeUSB:
		return ModeUSB
	case ModeLSB:
		return ModeLSB
	case ModeCW:
		return ModeCW
	default:
		return ModeUnknown
	}
}

// LogEntry carries the operator annotations stored next to a measurement
type LogEntry struct {
	Callsign           string     `json:"callsign,omitempty"`
	Mode               SignalMode `json:"mode"`
	Comment            string     `json:"comment,omitempty"`
	RecordingDurationS float64    `json:"recordingDurationS"` // seconds
}

// NewLogEntry validates the recording duration (finite, >= 0) and normalizes the mode
func NewLogEntry(callsign, mode, comment string, recordingDurationS float64) (LogEntry, error) {
	if !(recordingDurationS >= 0) || math.IsInf(recordingDurationS, 1) {
		return LogEntry{}, validation.InvalidRecordingDuration(recordingDurationS)
	}
	return LogEntry{
		Callsign:           strings.TrimSpace(callsign),
		Mode:               ParseSignalMode(mode),
		Comment:            comment,
		RecordingDurationS: recordingDurationS,
	}, nil
}
