package trace

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/QuangTung97/buddysim/allocator"
)

// SQLiteReader reads a trace written by SQLiteWriter
type SQLiteReader struct {
	*sql.DB
	filename string
}

// NewSQLiteReader ...
func NewSQLiteReader(path string) *SQLiteReader {
	return &SQLiteReader{filename: path + ".sqlite3"}
}

// Init opens the database, which must already exist
func (r *SQLiteReader) Init() error {
	if _, err := os.Stat(r.filename); err != nil {
		return fmt.Errorf("trace %s: %w", r.filename, err)
	}

	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", r.filename, err)
	}
	r.DB = db
	return nil
}

// ListSessions returns the recorded session ids in order of first appearance
func (r *SQLiteReader) ListSessions() ([]string, error) {
	rows, err := r.Query(`SELECT session FROM steps GROUP BY session ORDER BY MIN(rowid)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ListSteps returns every step of a session ordered by generation then step
func (r *SQLiteReader) ListSteps(session string) ([]StepRecord, error) {
	rows, err := r.Query(`SELECT session, generation, step, kind, message, capacity, snapshot
		FROM steps WHERE session = ? ORDER BY generation, step`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StepRecord
	for rows.Next() {
		var s StepRecord
		err := rows.Scan(&s.Session, &s.Generation, &s.Step, &s.Kind, &s.Message, &s.Capacity, &s.Snapshot)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ListSegments returns the leaves of one stored snapshot in address order
func (r *SQLiteReader) ListSegments(session string, generation int, step int) ([]allocator.Segment, error) {
	rows, err := r.Query(`SELECT start, size, occupant, color_id FROM segments
		WHERE session = ? AND generation = ? AND step = ? ORDER BY start`,
		session, generation, step)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []allocator.Segment
	for rows.Next() {
		var seg allocator.Segment
		var name sql.NullString
		var color sql.NullInt64
		if err := rows.Scan(&seg.Start, &seg.Size, &name, &color); err != nil {
			return nil, err
		}
		if name.Valid {
			seg.Occupant = &allocator.Occupant{
				Name:    name.String,
				Size:    seg.Size,
				ColorID: int(color.Int64),
			}
		}
		result = append(result, seg)
	}
	return result, rows.Err()
}
