package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/sdr-records-go/internal/database"
	"github.com/jengzang/sdr-records-go/internal/models"
)

const measurementColumns = `id, latitude, longitude, observed_at, frequency_hz, power_dbm, bandwidth_hz, snr_db,
	cell_token, callsign, mode, comment, recording_duration_s, created_at`

// MeasurementRepository handles database operations for measurements
type MeasurementRepository struct {
	db *sql.DB
}

// NewMeasurementRepository creates a new measurement repository
func NewMeasurementRepository(db *sql.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

// Insert stores rows in a single transaction and returns their ids in input order.
// Either every row is stored or none is.
func (r *MeasurementRepository) Insert(ctx context.Context, rows []models.MeasurementRow) ([]int64, error) {
	ids := make([]int64, 0, len(rows))
	if len(rows) == 0 {
		return ids, nil
	}

	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO measurements
			(latitude, longitude, observed_at, frequency_hz, power_dbm, bandwidth_hz, snr_db,
			 cell_token, callsign, mode, comment, recording_duration_s)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			res, err := stmt.ExecContext(ctx,
				row.Latitude, row.Longitude, row.ObservedAt, row.FrequencyHz, row.PowerDBm,
				row.BandwidthHz, row.SNRDB, row.CellToken, row.Callsign, string(row.Mode),
				row.Comment, row.RecordingDurationS,
			)
			if err != nil {
				return fmt.Errorf("failed to insert measurement %d: %w", i, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get inserted id: %w", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// List retrieves every measurement in insertion order
func (r *MeasurementRepository) List(ctx context.Context) ([]models.MeasurementRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+measurementColumns+` FROM measurements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	result := make([]models.MeasurementRow, 0)
	for rows.Next() {
		row, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurements: %w", err)
	}

	return result, nil
}

// GetByID retrieves a single measurement. Returns nil, nil when it does not exist.
func (r *MeasurementRepository) GetByID(ctx context.Context, id int64) (*models.MeasurementRow, error) {
	row, err := scanMeasurement(r.db.QueryRowContext(ctx, `SELECT `+measurementColumns+` FROM measurements WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}

	return &row, nil
}

// Count returns the number of stored measurements
func (r *MeasurementRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count measurements: %w", err)
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(s scanner) (models.MeasurementRow, error) {
	var (
		row      models.MeasurementRow
		callsign sql.NullString
		mode     sql.NullString
		comment  sql.NullString
	)
	err := s.Scan(
		&row.ID, &row.Latitude, &row.Longitude, &row.ObservedAt, &row.FrequencyHz,
		&row.PowerDBm, &row.BandwidthHz, &row.SNRDB, &row.CellToken,
		&callsign, &mode, &comment, &row.RecordingDurationS, &row.CreatedAt,
	)
	if err != nil {
		return row, err
	}

	row.Callsign = callsign.String
	row.Mode = models.ParseSignalMode(mode.String)
	row.Comment = comment.String
	return row, nil
}
