// Package validation defines the error taxonomy returned by the validating
// constructors of the measurement store.
package validation

import (
	"fmt"
	"strconv"
)

// Kind identifies which validation rule was violated
type Kind int

const (
	KindInvalidLatitude Kind = iota + 1
	KindInvalidLongitude
	KindInvalidFrequency
	KindInvalidTimestamp
	KindInvalidBoundingBox
	KindInvalidRecordingDuration
	KindEmptyDataset
	KindNonFiniteValue
)

// String returns the stable name of the kind, used as a metrics label
func (k Kind) String() string {
	switch k {
	case KindInvalidLatitude:
		return "invalid_latitude"
	case KindInvalidLongitude:
		return "invalid_longitude"
	case KindInvalidFrequency:
		return "invalid_frequency"
	case KindInvalidTimestamp:
		return "invalid_timestamp"
	case KindInvalidBoundingBox:
		return "invalid_bounding_box"
	case KindInvalidRecordingDuration:
		return "invalid_recording_duration"
	case KindEmptyDataset:
		return "empty_dataset"
	case KindNonFiniteValue:
		return "non_finite_value"
	default:
		return "unknown"
	}
}

// ValidationError reports a rejected input value.
// Value carries the offending number for numeric kinds, Reason the detail for
// the textual ones (timestamp, bounding box) and the field name for
// NonFiniteValue.
type ValidationError struct {
	Kind   Kind
	Value  float64
	Reason string
}

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrInvalidLatitude          = &ValidationError{Kind: KindInvalidLatitude}
	ErrInvalidLongitude         = &ValidationError{Kind: KindInvalidLongitude}
	ErrInvalidFrequency         = &ValidationError{Kind: KindInvalidFrequency}
	ErrInvalidTimestamp         = &ValidationError{Kind: KindInvalidTimestamp}
	ErrInvalidBoundingBox       = &ValidationError{Kind: KindInvalidBoundingBox}
	ErrInvalidRecordingDuration = &ValidationError{Kind: KindInvalidRecordingDuration}
	ErrEmptyDataset             = &ValidationError{Kind: KindEmptyDataset}
	ErrNonFiniteValue           = &ValidationError{Kind: KindNonFiniteValue}
)

// InvalidLatitude returns an error for a latitude outside [-90, 90]
func InvalidLatitude(v float64) *ValidationError {
	return &ValidationError{Kind: KindInvalidLatitude, Value: v}
}

// InvalidLongitude returns an error for a longitude outside [-180, 180]
func InvalidLongitude(v float64) *ValidationError {
	return &ValidationError{Kind: KindInvalidLongitude, Value: v}
}

// InvalidFrequency returns an error for a non-positive frequency
func InvalidFrequency(v float64) *ValidationError {
	return &ValidationError{Kind: KindInvalidFrequency, Value: v}
}

// InvalidTimestamp returns an error for an unusable timestamp
func InvalidTimestamp(reason string) *ValidationError {
	return &ValidationError{Kind: KindInvalidTimestamp, Reason: reason}
}

// InvalidBoundingBox returns an error for a box that cannot be normalized
func InvalidBoundingBox(reason string) *ValidationError {
	return &ValidationError{Kind: KindInvalidBoundingBox, Reason: reason}
}

// InvalidRecordingDuration returns an error for a negative recording duration
func InvalidRecordingDuration(v float64) *ValidationError {
	return &ValidationError{Kind: KindInvalidRecordingDuration, Value: v}
}

// EmptyDataset returns an error for operations that need at least one element
func EmptyDataset() *ValidationError {
	return &ValidationError{Kind: KindEmptyDataset}
}

// NonFiniteValue returns an error for a NaN or infinite reading in field
func NonFiniteValue(field string, v float64) *ValidationError {
	return &ValidationError{Kind: KindNonFiniteValue, Value: v, Reason: field}
}

func (e *ValidationError) Error() string {
	v := strconv.FormatFloat(e.Value, 'f', -1, 64)
	switch e.Kind {
	case KindInvalidLatitude:
		return fmt.Sprintf("invalid latitude: %s (must be between -90 and 90)", v)
	case KindInvalidLongitude:
		return fmt.Sprintf("invalid longitude: %s (must be between -180 and 180)", v)
	case KindInvalidFrequency:
		return fmt.Sprintf("invalid frequency: %s (must be positive)", v)
	case KindInvalidTimestamp:
		return "invalid timestamp: " + e.Reason
	case KindInvalidBoundingBox:
		return "invalid bounding box: " + e.Reason
	case KindInvalidRecordingDuration:
		return fmt.Sprintf("invalid recording duration: %s (must not be negative)", v)
	case KindEmptyDataset:
		return "dataset is empty"
	case KindNonFiniteValue:
		return fmt.Sprintf("invalid %s: %s (must be finite)", e.Reason, v)
	default:
		return "validation failed"
	}
}

// Is reports whether target is a ValidationError of the same kind
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
