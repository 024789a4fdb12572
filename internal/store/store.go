// Package store keeps analysis runs and their per-peak results in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/algo-gammaspec/measure/peak"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const defaultDirPerm = 0o755

// Config locates the database file.
type Config struct {
	Path string
}

// Validate rejects an empty path.
func (c Config) Validate() error {
	if c.Path == "" {
		return ErrInvalidPath
	}
	return nil
}

// Run describes one analyzed spectrum.
type Run struct {
	ID            int64
	Source        string
	CreatedAt     time.Time
	Samples       int
	TotalCounts   float64
	Window        int
	MinProminence float64
	Tolerance     float64
	Gain          float64
	Offset        float64
}

// PeakRow is a stored peak result. Bounds, Centroid and Fit are nil when
// the matching stage failed; Error holds the joined failure messages.
type PeakRow struct {
	Ordinal    int
	Index      int
	X          float64
	Prominence float64
	Bounds     *peak.Bounds
	Centroid   *peak.CentroidResult
	Fit        *peak.FitResult
	Error      string
}

// Store is a SQLite-backed result repository.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates the database directory and schema when missing.
func Open(cfg Config, log zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), defaultDirPerm); err != nil {
		return nil, fail(ErrInit, "create_directory", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal=WAL&_foreign_keys=1")
	if err != nil {
		return nil, fail(ErrInit, "open_database", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := migrate(db, log); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("path", cfg.Path).Int("schema_version", SchemaVersion).Msg("result store opened")
	return &Store{db: db, log: log}, nil
}

// SaveReport stores run and the peaks of report in one transaction and
// returns the new run ID.
func (s *Store) SaveReport(ctx context.Context, run Run, report peak.Report) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fail(ErrWrite, "begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				s.log.Debug().Err(err).Msg("rollback report")
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs
		(source, created_at, samples, total_counts, smooth_window, min_prominence, tolerance, cal_gain, cal_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Source, run.CreatedAt, run.Samples, run.TotalCounts, run.Window, run.MinProminence, run.Tolerance, run.Gain, run.Offset)
	if err != nil {
		return 0, fail(ErrWrite, "insert_run", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fail(ErrWrite, "run_id", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO peaks
		(run_id, ordinal, idx, x, prominence, left_idx, right_idx, centroid, centroid_err,
		 amplitude, amplitude_err, sigma, sigma_err, mu, mu_err, r_squared, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fail(ErrWrite, "prepare_peak", err)
	}
	defer stmt.Close()

	for i, p := range report.Peaks {
		if _, err := stmt.ExecContext(ctx, peakArgs(runID, i, p)...); err != nil {
			return 0, fail(ErrWrite, "insert_peak", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fail(ErrWrite, "commit", err)
	}
	committed = true

	s.log.Info().Int64("run", runID).Str("source", run.Source).Int("peaks", len(report.Peaks)).Msg("report stored")
	return runID, nil
}

func peakArgs(runID int64, ordinal int, p peak.PeakResult) []any {
	var (
		left, right                  sql.NullInt64
		centroid, centroidErr        sql.NullFloat64
		amp, ampErr, sigma, sigmaErr sql.NullFloat64
		mu, muErr, rSquared          sql.NullFloat64
		errText                      sql.NullString
	)
	if p.BoundsErr == nil {
		left = sql.NullInt64{Int64: int64(p.Bounds.Left), Valid: true}
		right = sql.NullInt64{Int64: int64(p.Bounds.Right), Valid: true}
	}
	if c := p.Centroid; c != nil {
		centroid = sql.NullFloat64{Float64: c.Value, Valid: true}
		centroidErr = sql.NullFloat64{Float64: c.Uncertainty, Valid: true}
	}
	if f := p.Fit; f != nil {
		amp = sql.NullFloat64{Float64: f.Amplitude, Valid: true}
		ampErr = sql.NullFloat64{Float64: f.AmplitudeErr, Valid: true}
		sigma = sql.NullFloat64{Float64: f.Sigma, Valid: true}
		sigmaErr = sql.NullFloat64{Float64: f.SigmaErr, Valid: true}
		mu = sql.NullFloat64{Float64: f.Mu, Valid: true}
		muErr = sql.NullFloat64{Float64: f.MuErr, Valid: true}
		rSquared = sql.NullFloat64{Float64: f.RSquared, Valid: true}
	}
	if err := p.Err(); err != nil {
		errText = sql.NullString{String: err.Error(), Valid: true}
	}

	return []any{runID, ordinal, p.Index, p.X, p.Prominence, left, right, centroid, centroidErr,
		amp, ampErr, sigma, sigmaErr, mu, muErr, rSquared, errText}
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, created_at, samples, total_counts, smooth_window,
		min_prominence, tolerance, cal_gain, cal_offset FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fail(ErrRead, "query_runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.CreatedAt, &r.Samples, &r.TotalCounts, &r.Window,
			&r.MinProminence, &r.Tolerance, &r.Gain, &r.Offset); err != nil {
			return nil, fail(ErrRead, "scan_run", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(ErrRead, "iterate_runs", err)
	}
	return runs, nil
}

// Peaks returns the peaks stored for runID in analysis order.
func (s *Store) Peaks(ctx context.Context, runID int64) ([]PeakRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ordinal, idx, x, prominence, left_idx, right_idx,
		centroid, centroid_err, amplitude, amplitude_err, sigma, sigma_err, mu, mu_err, r_squared, error
		FROM peaks WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fail(ErrRead, "query_peaks", err)
	}
	defer rows.Close()

	var out []PeakRow
	for rows.Next() {
		var (
			row                          PeakRow
			left, right                  sql.NullInt64
			centroid, centroidErr        sql.NullFloat64
			amp, ampErr, sigma, sigmaErr sql.NullFloat64
			mu, muErr, rSquared          sql.NullFloat64
			errText                      sql.NullString
		)
		if err := rows.Scan(&row.Ordinal, &row.Index, &row.X, &row.Prominence, &left, &right,
			&centroid, &centroidErr, &amp, &ampErr, &sigma, &sigmaErr, &mu, &muErr, &rSquared, &errText); err != nil {
			return nil, fail(ErrRead, "scan_peak", err)
		}
		if left.Valid && right.Valid {
			row.Bounds = &peak.Bounds{Left: int(left.Int64), Peak: row.Index, Right: int(right.Int64)}
		}
		if centroid.Valid {
			row.Centroid = &peak.CentroidResult{Value: centroid.Float64, Uncertainty: centroidErr.Float64}
		}
		if amp.Valid {
			row.Fit = &peak.FitResult{
				Amplitude: amp.Float64, AmplitudeErr: ampErr.Float64,
				Sigma: sigma.Float64, SigmaErr: sigmaErr.Float64,
				Mu: mu.Float64, MuErr: muErr.Float64,
				RSquared: rSquared.Float64,
			}
		}
		row.Error = errText.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(ErrRead, "iterate_peaks", err)
	}
	return out, nil
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fail(ErrClose, "checkpoint_wal", err)
	}
	if err := s.db.Close(); err != nil {
		return fail(ErrClose, "close_database", err)
	}
	s.log.Debug().Msg("result store closed")
	return nil
}
