package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/sdr-records-go/internal/models"
	"github.com/jengzang/sdr-records-go/internal/validation"
)

// isolate keeps config.Load away from the developer's .env and environment
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{"CONFIG_FILE", "DB_PATH", "DEFAULT_EPSILON", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_FILE"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestRunRecordsMeasurement(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "records.db")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-db", db,
		"-lat", "40.7128", "-lon", "-74.0060",
		"-freq", "145500000", "-power", "-72.5", "-snr", "11",
		"-callsign", "W1AW", "-mode", "usb", "-comment", "test", "-duration", "30",
		"-time", "2024-01-01T12:00:00Z",
	}, &out)
	require.NoError(t, err)

	var row models.MeasurementRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &row))
	assert.Equal(t, int64(1), row.ID)
	assert.Equal(t, 40.7128, row.Latitude)
	assert.Equal(t, 145500000.0, row.FrequencyHz)
	assert.Equal(t, models.ModeUSB, row.Mode)
	assert.Equal(t, "W1AW", row.Callsign)
	assert.Equal(t, 30.0, row.RecordingDurationS)
}

func TestRunFromNMEA(t *testing.T) {
	dir := isolate(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-db", filepath.Join(dir, "records.db"),
		"-nmea", "$GPGLL,3723.2475,N,12158.3416,W,161229.487,A,A*41",
		"-freq", "7100000",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"mode": "UNKNOWN"`)
}

func TestRunRejectsInvalidInput(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "records.db")

	err := run(context.Background(), []string{"-db", db, "-lat", "91", "-lon", "0", "-freq", "1"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, validation.ErrInvalidLatitude)

	err = run(context.Background(), []string{"-db", db, "-lat", "0", "-lon", "0", "-freq", "0"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, validation.ErrInvalidFrequency)

	err = run(context.Background(), []string{"-db", db, "-lat", "0", "-lon", "0", "-freq", "1", "-duration", "-5"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, validation.ErrInvalidRecordingDuration)

	err = run(context.Background(), []string{"-db", db, "-freq", "1"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, models.ErrMissingLocation)

	err = run(context.Background(), []string{"-db", db, "-lat", "40", "-freq", "1"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, models.ErrMissingLocation)

	err = run(context.Background(), []string{"-db", db, "-lon", "-74", "-freq", "1"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, models.ErrMissingLocation)

	err = run(context.Background(), []string{"-db", db, "-lat", "0", "-lon", "0", "-freq", "1", "-power", "Inf"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, validation.ErrNonFiniteValue)

	err = run(context.Background(), []string{"-db", db, "-lat", "0", "-lon", "0", "-freq", "+Inf"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, validation.ErrInvalidFrequency)
}

func TestRunIssuesToken(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "station-secret")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"token", "-subject", "station-1", "-ttl", "1h"}, &out))

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("station-secret"), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	assert.Equal(t, "station-1", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	err = run(context.Background(), []string{"token", "-ttl", "0s"}, &bytes.Buffer{})
	assert.Error(t, err)
}
