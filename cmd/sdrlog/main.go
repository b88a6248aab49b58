// Command sdrlog records a single SDR measurement from the command line.
//
//	sdrlog -lat 40.71 -lon -74.00 -freq 145500000 -power -72 -mode fm
//	sdrlog token -subject station-1 -ttl 720h
//
// The token subcommand prints a bearer token for POST /api/v1/measurements,
// signed with the configured JWT secret.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jengzang/sdr-records-go/internal/config"
	"github.com/jengzang/sdr-records-go/internal/database"
	"github.com/jengzang/sdr-records-go/internal/logger"
	"github.com/jengzang/sdr-records-go/internal/middleware"
	"github.com/jengzang/sdr-records-go/internal/models"
	"github.com/jengzang/sdr-records-go/internal/repository"
	"github.com/jengzang/sdr-records-go/internal/service"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "sdrlog:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) > 0 && args[0] == "token" {
		return runToken(args[1:], stdout)
	}
	return runRecord(ctx, args, stdout)
}

func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sdrlog token", flag.ContinueOnError)
	var (
		subject = fs.String("subject", "sdrlog", "token subject, e.g. the station name")
		ttl     = fs.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", *ttl)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.UsesDefaultJWTSecret() {
		fmt.Fprintln(os.Stderr, "sdrlog: warning: signing with the default JWT secret; set JWT_SECRET")
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, *subject, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}

func runRecord(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sdrlog", flag.ContinueOnError)
	var (
		dbPath    = fs.String("db", "", "SQLite database path (default from DB_PATH / config)")
		lat       = fs.Float64("lat", 0, "latitude in degrees")
		lon       = fs.Float64("lon", 0, "longitude in degrees")
		sentence  = fs.String("nmea", "", "NMEA GGA/RMC/GLL sentence to take the position from")
		timestamp = fs.String("time", "", "RFC3339 observation time (default now)")
		freq      = fs.Float64("freq", 0, "frequency in Hz")
		power     = fs.Float64("power", 0, "power in dBm")
		bandwidth = fs.Float64("bandwidth", 0, "bandwidth in Hz")
		snr       = fs.Float64("snr", 0, "signal-to-noise ratio in dB")
		callsign  = fs.String("callsign", "", "station callsign")
		mode      = fs.String("mode", "", "signal mode: FM, AM, USB, LSB or CW")
		comment   = fs.String("comment", "", "free-form comment")
		duration  = fs.Float64("duration", 0, "recording duration in seconds")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["lat"] != set["lon"] {
		return fmt.Errorf("-lat and -lon must be given together: %w", models.ErrMissingLocation)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	log := logger.New(logger.Options{Level: "warn", Format: "text"})

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db, log.WithComponent("migrate")); err != nil {
		return err
	}

	in := models.MeasurementInput{
		NMEA:               *sentence,
		Timestamp:          *timestamp,
		FrequencyHz:        *freq,
		PowerDBm:           *power,
		BandwidthHz:        *bandwidth,
		SNRDB:              *snr,
		Callsign:           *callsign,
		Mode:               *mode,
		Comment:            *comment,
		RecordingDurationS: *duration,
	}
	if set["lat"] {
		in.Latitude, in.Longitude = lat, lon
	}

	svc := service.NewMeasurementService(repository.NewMeasurementRepository(db), service.Options{Logger: log})
	ids, err := svc.Ingest(ctx, []models.MeasurementInput{in})
	if err != nil {
		var ierr *service.IngestError
		if errors.As(err, &ierr) {
			return ierr.Err
		}
		return err
	}

	row, err := svc.GetByID(ctx, ids[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(row)
}
