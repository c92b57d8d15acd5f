// Package telemetry persists transmission outcomes and controller decisions in
// SQLite.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/satlink/go-controller/internal/channel"
	"github.com/danielpatrickdp/satlink/go-controller/internal/ecc"
	"github.com/danielpatrickdp/satlink/go-controller/internal/logging"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS telemetry_logs (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	snr_db        REAL NOT NULL,
	noise_type    TEXT NOT NULL,
	ecc_scheme    TEXT NOT NULL,
	ecc_success   INTEGER NOT NULL,
	channel_ber   REAL NOT NULL,
	ber_before    REAL NOT NULL,
	ber_after     REAL NOT NULL,
	ai_corrected  INTEGER NOT NULL,
	latency_ms    REAL NOT NULL,
	timestamp     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_telemetry_run ON telemetry_logs(run_id, timestamp);

CREATE TABLE IF NOT EXISTS decision_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	snr_db        REAL NOT NULL,
	scheme        TEXT NOT NULL,
	rule          INTEGER NOT NULL,
	reason        TEXT,
	stats_json    TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// timeLayout is fixed-width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// #region store-struct

// Store writes telemetry rows. It satisfies the transmission pipeline's sink.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region record

// Record inserts one transmission outcome. An empty ID gets a fresh UUID and
// a zero timestamp becomes now.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO telemetry_logs (id, run_id, snr_db, noise_type, ecc_scheme, ecc_success,
			channel_ber, ber_before, ber_after, ai_corrected, latency_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.SNRdB, string(rec.NoiseType), string(rec.ECCScheme), boolInt(rec.ECCSuccess),
		rec.ChannelBER, rec.BERBefore, rec.BERAfter, boolInt(rec.AICorrected), rec.LatencyMS,
		rec.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert telemetry: %w", err)
	}
	return nil
}

// LogDecision writes one controller decision to decision_log.
func (s *Store) LogDecision(entry logging.DecisionEntry) error {
	return logging.LogDecision(s.db, entry)
}

// #endregion record

// #region list

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, snr_db, noise_type, ecc_scheme, ecc_success,
			channel_ber, ber_before, ber_after, ai_corrected, latency_ms, timestamp
		 FROM telemetry_logs
		 WHERE (? = '' OR run_id = ?) AND (? = '' OR ecc_scheme = ?)
		 ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		f.RunID, f.RunID, string(f.Scheme), string(f.Scheme), f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list telemetry: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var noise, scheme, ts string
		var success, ai int
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.SNRdB, &noise, &scheme, &success,
			&rec.ChannelBER, &rec.BERBefore, &rec.BERAfter, &ai, &rec.LatencyMS, &ts); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.NoiseType = channel.NoiseType(noise)
		rec.ECCScheme = ecc.SchemeID(scheme)
		rec.ECCSuccess = success != 0
		rec.AICorrected = ai != 0
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list

// #region summary

// Summary aggregates records per scheme, optionally for one run.
func (s *Store) Summary(ctx context.Context, runID string) ([]SchemeSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ecc_scheme, COUNT(*), AVG(ecc_success), AVG(snr_db), AVG(ber_before),
			AVG(ber_after), SUM(ai_corrected), AVG(latency_ms)
		 FROM telemetry_logs
		 WHERE (? = '' OR run_id = ?)
		 GROUP BY ecc_scheme ORDER BY ecc_scheme`,
		runID, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize telemetry: %w", err)
	}
	defer rows.Close()

	var out []SchemeSummary
	for rows.Next() {
		var sum SchemeSummary
		var scheme string
		if err := rows.Scan(&scheme, &sum.Frames, &sum.SuccessRate, &sum.AvgSNR, &sum.AvgBERBefore,
			&sum.AvgBERAfter, &sum.AICorrections, &sum.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.Scheme = ecc.SchemeID(scheme)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// #endregion summary

// #region helpers
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
