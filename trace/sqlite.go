package trace

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/QuangTung97/buddysim/allocator"
	"github.com/QuangTung97/buddysim/logger"
)

const defaultBatchSize = 10000

// SQLiteWriter exports history entries to a SQLite database.
// It is not safe for concurrent use.
type SQLiteWriter struct {
	*sql.DB
	stepStatement    *sql.Stmt
	segmentStatement *sql.Stmt

	dbName      string
	batchSize   int
	pending     []StepRecord
	generations map[string]int
}

// NewSQLiteWriter creates a writer for path + ".sqlite3". An empty path
// picks a unique name. Buffered records are flushed at exit.
func NewSQLiteWriter(path string) *SQLiteWriter {
	if path == "" {
		path = "buddysim_trace_" + xid.New().String()
	}

	w := &SQLiteWriter{
		dbName:      path,
		batchSize:   defaultBatchSize,
		generations: make(map[string]int),
	}

	atexit.Register(func() {
		if err := w.Flush(); err != nil {
			logger.L.Error("failed to flush trace", "db", w.FileName(), "error", err)
		}
	})

	return w
}

// WithBatchSize ...
func (w *SQLiteWriter) WithBatchSize(n int) *SQLiteWriter {
	w.batchSize = n
	return w
}

// FileName ...
func (w *SQLiteWriter) FileName() string {
	return w.dbName + ".sqlite3"
}

// Init creates the database file and the tables. The file must not exist.
func (w *SQLiteWriter) Init() error {
	filename := w.FileName()

	_, err := os.Stat(filename)
	if err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}
	w.DB = db

	if err := w.createTables(); err != nil {
		return err
	}
	return w.prepareStatements()
}

func (w *SQLiteWriter) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS steps (
			session    TEXT NOT NULL,
			generation INTEGER NOT NULL,
			step       INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			message    TEXT NOT NULL,
			capacity   INTEGER NOT NULL,
			snapshot   TEXT NOT NULL,
			PRIMARY KEY (session, generation, step)
		)`,
		`CREATE TABLE IF NOT EXISTS segments (
			session    TEXT NOT NULL,
			generation INTEGER NOT NULL,
			step       INTEGER NOT NULL,
			start      INTEGER NOT NULL,
			size       INTEGER NOT NULL,
			occupant   TEXT,
			color_id   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS segments_step ON segments (session, generation, step)`,
	}
	for _, s := range stmts {
		if _, err := w.Exec(s); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

func (w *SQLiteWriter) prepareStatements() error {
	var err error
	w.stepStatement, err = w.Prepare(`INSERT INTO steps
		(session, generation, step, kind, message, capacity, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare step statement: %w", err)
	}

	w.segmentStatement, err = w.Prepare(`INSERT INTO segments
		(session, generation, step, start, size, occupant, color_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare segment statement: %w", err)
	}
	return nil
}

// Hook returns a hook that records the entries of one session
func (w *SQLiteWriter) Hook(session string) allocator.Hook {
	return allocator.HookFunc(func(entry allocator.HistoryEntry) {
		if err := w.Write(session, entry); err != nil {
			logger.L.Error("failed to write trace", "session", session, "step", entry.Step, "error", err)
		}
	})
}

// Write buffers an entry, flushing when the batch is full
func (w *SQLiteWriter) Write(session string, entry allocator.HistoryEntry) error {
	gen, seen := w.generations[session]
	if entry.Step == 0 && seen {
		gen++
	}
	w.generations[session] = gen

	record, err := newStepRecord(session, gen, entry)
	if err != nil {
		return err
	}

	w.pending = append(w.pending, record)
	if len(w.pending) >= w.batchSize {
		return w.Flush()
	}
	return nil
}

// Flush writes all the buffered records in one transaction
func (w *SQLiteWriter) Flush() error {
	if len(w.pending) == 0 || w.DB == nil {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := w.insertPending(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trace: %w", err)
	}

	w.pending = nil
	return nil
}

func (w *SQLiteWriter) insertPending(tx *sql.Tx) error {
	stepStmt := tx.Stmt(w.stepStatement)
	segStmt := tx.Stmt(w.segmentStatement)

	for _, r := range w.pending {
		_, err := stepStmt.Exec(r.Session, r.Generation, r.Step, r.Kind, r.Message, r.Capacity, r.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to insert step %d: %w", r.Step, err)
		}

		for _, seg := range r.segments {
			var name sql.NullString
			var color sql.NullInt64
			if seg.Occupant != nil {
				name = sql.NullString{String: seg.Occupant.Name, Valid: true}
				color = sql.NullInt64{Int64: int64(seg.Occupant.ColorID), Valid: true}
			}
			_, err := segStmt.Exec(r.Session, r.Generation, r.Step, seg.Start, seg.Size, name, color)
			if err != nil {
				return fmt.Errorf("failed to insert segment of step %d: %w", r.Step, err)
			}
		}
	}
	return nil
}

// Close flushes and closes the database
func (w *SQLiteWriter) Close() error {
	if w.DB == nil {
		return nil
	}
	if err := w.Flush(); err != nil {
		return err
	}
	err := w.DB.Close()
	w.DB = nil
	return err
}
