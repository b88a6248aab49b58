package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jengzang/sdr-records-go/internal/aggregate"
	"github.com/jengzang/sdr-records-go/internal/ingest"
	"github.com/jengzang/sdr-records-go/internal/logger"
	"github.com/jengzang/sdr-records-go/internal/measurement"
	"github.com/jengzang/sdr-records-go/internal/metrics"
	"github.com/jengzang/sdr-records-go/internal/models"
	"github.com/jengzang/sdr-records-go/internal/repository"
	"github.com/jengzang/sdr-records-go/internal/spatial"
	"github.com/jengzang/sdr-records-go/internal/validation"
)

var (
	// ErrNotFound is returned when a measurement id does not exist
	ErrNotFound = errors.New("measurement not found")
	// ErrInvalidEpsilon is returned for a negative or NaN clustering radius
	ErrInvalidEpsilon = errors.New("epsilon must be a non-negative number")
)

// IngestError reports which input of a batch was rejected
type IngestError struct {
	Index int
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("measurement %d: %v", e.Index, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Options configures a MeasurementService
type Options struct {
	DefaultEpsilon float64 // degrees per axis
	Metrics        *metrics.Collector
	Logger         *logger.Log
}

// MeasurementService serves queries from an immutable Layer snapshot and
// replaces the snapshot whenever measurements are stored.
type MeasurementService struct {
	repo           *repository.MeasurementRepository
	metrics        *metrics.Collector
	log            *logrus.Entry
	defaultEpsilon float64
	now            func() time.Time

	mu    sync.Mutex // serializes snapshot writers
	layer atomic.Pointer[measurement.Layer]
}

// NewMeasurementService creates a new measurement service with an empty snapshot.
// Call Reload to load what is already stored.
func NewMeasurementService(repo *repository.MeasurementRepository, opts Options) *MeasurementService {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	s := &MeasurementService{
		repo:           repo,
		metrics:        opts.Metrics,
		log:            log.WithComponent("measurement_service"),
		defaultEpsilon: opts.DefaultEpsilon,
		now:            time.Now,
	}
	s.publish(measurement.NewLayer(nil))
	return s
}

// Layer returns the current snapshot. It is never nil and never mutated.
func (s *MeasurementService) Layer() *measurement.Layer {
	return s.layer.Load()
}

func (s *MeasurementService) publish(l *measurement.Layer) {
	s.layer.Store(l)
	s.metrics.SetLayerMeasurements(l.MeasurementCount())
}

// Reload rebuilds the snapshot from the repository
func (s *MeasurementService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load measurements: %w", err)
	}

	ms := make([]measurement.Measurement, 0, len(rows))
	for _, row := range rows {
		m, err := row.ToMeasurement()
		if err != nil {
			return fmt.Errorf("stored measurement %d is invalid: %w", row.ID, err)
		}
		ms = append(ms, m)
	}

	s.publish(measurement.NewLayer(ms))
	s.log.WithField("count", len(ms)).Info("Layer reloaded")
	return nil
}

// Ingest validates every input, stores the batch and publishes a new snapshot.
// The first invalid input rejects the whole batch with an *IngestError.
func (s *MeasurementService) Ingest(ctx context.Context, inputs []models.MeasurementInput) ([]int64, error) {
	ms := make([]measurement.Measurement, 0, len(inputs))
	rows := make([]models.MeasurementRow, 0, len(inputs))
	for i, in := range inputs {
		m, row, err := s.convert(in)
		if err != nil {
			s.recordValidationFailure(err)
			s.log.WithFields(logrus.Fields{"index": i, "error": err}).Warn("Rejected measurement batch")
			return nil, &IngestError{Index: i, Err: err}
		}
		ms = append(ms, m)
		rows = append(rows, row)
	}
	if len(ms) == 0 {
		return []int64{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.repo.Insert(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to store measurements: %w", err)
	}

	current := slices.Collect(s.Layer().Measurements())
	s.publish(measurement.NewLayer(append(current, ms...)))
	s.metrics.AddIngested(len(ms))
	s.log.WithField("count", len(ms)).Debug("Measurements ingested")

	return ids, nil
}

func (s *MeasurementService) convert(in models.MeasurementInput) (measurement.Measurement, models.MeasurementRow, error) {
	fail := func(err error) (measurement.Measurement, models.MeasurementRow, error) {
		return measurement.Measurement{}, models.MeasurementRow{}, err
	}

	entry, err := in.Entry()
	if err != nil {
		return fail(err)
	}
	if err := in.CheckFinite(); err != nil {
		return fail(err)
	}
	ts, haveTS, err := in.ParsedTimestamp()
	if err != nil {
		return fail(err)
	}

	var loc spatial.Coordinate
	switch {
	case in.HasCoordinates():
		loc, err = spatial.NewCoordinate(*in.Latitude, *in.Longitude)
		if err != nil {
			return fail(err)
		}
	case in.NMEA != "":
		fix, err := ingest.ParseNMEA(in.NMEA)
		if err != nil {
			return fail(err)
		}
		loc = fix.Location
		if !haveTS && fix.HasDate {
			ts, haveTS = fix.Time, true
		}
	default:
		return fail(models.ErrMissingLocation)
	}

	if !haveTS {
		ts = s.now()
	}

	m, err := measurement.New(loc, ts, in.FrequencyHz, in.PowerDBm, in.BandwidthHz, in.SNRDB)
	if err != nil {
		return fail(err)
	}
	row, err := models.NewMeasurementRow(m, entry)
	if err != nil {
		return fail(err)
	}
	return m, row, nil
}

// GetByID returns the stored row, annotations included
func (s *MeasurementService) GetByID(ctx context.Context, id int64) (*models.MeasurementRow, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

// StoredCount returns the number of measurements in the repository
func (s *MeasurementService) StoredCount(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count stored measurements: %w", err)
	}
	return n, nil
}

// Query returns the snapshot measurements matching filter, in insertion order
func (s *MeasurementService) Query(filter models.MeasurementFilter) ([]measurement.Measurement, error) {
	defer s.metrics.ObserveQuery("query", time.Now())

	q, err := filter.ToQuery()
	if err != nil {
		s.recordValidationFailure(err)
		return nil, err
	}
	return s.Layer().Query(q), nil
}

// Extent returns the bounding box of the snapshot, or EmptyDataset
func (s *MeasurementService) Extent() (spatial.BoundingBox, error) {
	defer s.metrics.ObserveQuery("extent", time.Now())
	return s.Layer().Extent()
}

// Aggregate clusters the measurements matching filter. The filter epsilon
// overrides the configured default.
func (s *MeasurementService) Aggregate(filter models.MeasurementFilter) ([]aggregate.LocationAggregate, error) {
	defer s.metrics.ObserveQuery("aggregate", time.Now())

	epsilon := s.defaultEpsilon
	if filter.Epsilon != nil {
		epsilon = *filter.Epsilon
	}
	if !(epsilon >= 0) {
		return nil, ErrInvalidEpsilon
	}

	q, err := filter.ToQuery()
	if err != nil {
		s.recordValidationFailure(err)
		return nil, err
	}
	return aggregate.ByLocation(s.Layer().Query(q), epsilon), nil
}

func (s *MeasurementService) recordValidationFailure(err error) {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		s.metrics.ValidationFailure(verr.Kind)
	}
}
