package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteRecorder stores the history in a SQLite database, one row per entry.
type SqliteRecorder struct {
	db *sql.DB
}

func NewSqliteRecorder(path string) (*SqliteRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening history database: %w", err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to history database: %w", err)
	}

	createHistoryTable := `CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		message TEXT NOT NULL,
		notified INTEGER NOT NULL
	);`
	if _, err = db.Exec(createHistoryTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating history table: %w", err)
	}
	if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS history_ts ON history (ts);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating history index: %w", err)
	}

	return &SqliteRecorder{db: db}, nil
}

func (r *SqliteRecorder) Append(entry Entry) error {
	_, err := r.db.Exec(`INSERT INTO history (ts, message, notified) VALUES (?, ?, ?)`,
		entry.Ts.Format(KeyLayout), entry.Message, entry.Notified)
	return err
}

func (r *SqliteRecorder) Recent(n int) ([]Entry, error) {
	limit := n
	if limit <= 0 {
		// sqlite treats a negative limit as no limit
		limit = -1
	}
	rows, err := r.db.Query(`SELECT ts, message, notified FROM history ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recent []Entry
	for rows.Next() {
		var key, message string
		var notified bool
		if err = rows.Scan(&key, &message, &notified); err != nil {
			return nil, err
		}
		ts, err := time.ParseInLocation(KeyLayout, key, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid history timestamp %q: %w", key, err)
		}
		recent = append(recent, Entry{Ts: ts, Message: message, Notified: notified})
	}
	return recent, rows.Err()
}

func (r *SqliteRecorder) Close() error {
	return r.db.Close()
}
