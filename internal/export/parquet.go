// Package export writes measurements in columnar formats for offline analysis.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/jengzang/sdr-records-go/internal/measurement"
	"github.com/jengzang/sdr-records-go/internal/spatial"
)

// memFile collects the parquet output in memory
type memFile struct {
	buffer bytes.Buffer
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFile) Open(string) (source.ParquetFile, error)   { return m, nil }
func (m *memFile) Seek(int64, int) (int64, error)            { return int64(m.buffer.Len()), nil }
func (m *memFile) Read([]byte) (int, error)                  { return 0, io.EOF }
func (m *memFile) Write(b []byte) (int, error)               { return m.buffer.Write(b) }
func (m *memFile) Close() error                              { return nil }

// measurementRecord defines the parquet schema of one measurement
type measurementRecord struct {
	Latitude    float64 `parquet:"name=latitude, type=DOUBLE"`
	Longitude   float64 `parquet:"name=longitude, type=DOUBLE"`
	ObservedAt  int64   `parquet:"name=observed_at, type=INT64, convertedtype=TIMESTAMP_MICROS"`
	FrequencyHz float64 `parquet:"name=frequency_hz, type=DOUBLE"`
	PowerDBm    float64 `parquet:"name=power_dbm, type=DOUBLE"`
	BandwidthHz float64 `parquet:"name=bandwidth_hz, type=DOUBLE"`
	SNRDB       float64 `parquet:"name=snr_db, type=DOUBLE"`
	CellToken   string  `parquet:"name=cell_token, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// WriteParquet writes measurements to w as one snappy-compressed parquet file
// and returns the number of bytes written.
func WriteParquet(w io.Writer, measurements []measurement.Measurement) (int64, error) {
	mf := &memFile{}
	pw, err := writer.NewParquetWriter(mf, new(measurementRecord), 1)
	if err != nil {
		return 0, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, m := range measurements {
		loc := m.Location()
		rec := measurementRecord{
			Latitude:    loc.Latitude(),
			Longitude:   loc.Longitude(),
			ObservedAt:  m.Timestamp().UnixMicro(),
			FrequencyHz: m.FrequencyHz(),
			PowerDBm:    m.PowerDBm(),
			BandwidthHz: m.BandwidthHz(),
			SNRDB:       m.SNRDB(),
			CellToken:   loc.CellToken(spatial.DefaultCellLevel),
		}
		if err := pw.Write(rec); err != nil {
			return 0, fmt.Errorf("failed to write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return 0, fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return mf.buffer.WriteTo(w)
}
