package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/groan-lab/groan/internal/core/history"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// revisionArgs converts a record into insert arguments.
// A nil comment is stored as SQL NULL so the suppressed case survives a round trip.
func revisionArgs(rec history.Record) (ts time.Time, comment sql.NullString, err error) {
	ts, err = time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return time.Time{}, sql.NullString{}, fmt.Errorf("invalid revision timestamp %q: %w", rec.Timestamp, err)
	}
	if rec.Comment != nil {
		comment = sql.NullString{String: *rec.Comment, Valid: true}
	}
	return ts, comment, nil
}

// scanRevisionRow scans a revisions row back into the persisted record shape.
func scanRevisionRow(row scanner) (history.Record, error) {
	var (
		rec     history.Record
		ts      time.Time
		comment sql.NullString
	)
	if err := row.Scan(&ts, &rec.Size, &comment, &rec.CommentHidden); err != nil {
		return history.Record{}, fmt.Errorf("failed to scan revision row: %w", err)
	}

	rec.Timestamp = ts.UTC().Format(time.RFC3339)
	if comment.Valid {
		c := comment.String
		rec.Comment = &c
	}
	return rec, nil
}
