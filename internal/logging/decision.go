// Package logging records controller decisions for later inspection.
package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-decision

// LogDecision writes an entry to the decision_log table.
func LogDecision(db *sql.DB, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO decision_log (run_id, snr_db, scheme, rule, reason, stats_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.SNRdB,
		entry.Scheme,
		entry.Rule,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.StatsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// EncodeRecord serializes a DecisionRecord for DecisionEntry.StatsJSON.
func EncodeRecord(rec DecisionRecord) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal decision record: %w", err)
	}
	return string(b), nil
}

// #endregion log-decision

// #region list-decisions

// ListDecisions returns the most recent entries, newest first. An empty runID
// matches every run.
func ListDecisions(db *sql.DB, runID string, limit int) ([]DecisionEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, snr_db, scheme, rule, reason, stats_json, created_at
		 FROM decision_log WHERE (? = '' OR run_id = ?)
		 ORDER BY id DESC LIMIT ?`, runID, runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var reason, stats sql.NullString
		var created string
		if err := rows.Scan(&e.RunID, &e.SNRdB, &e.Scheme, &e.Rule, &reason, &stats, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Reason = reason.String
		e.StatsJSON = stats.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list-decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
