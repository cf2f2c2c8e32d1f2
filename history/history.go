package history

import (
	"time"
)

// KeyLayout formats the timestamp keying each entry; it sorts chronologically as a string.
const KeyLayout = "2006-01-02 15:04:05.000"

// Entry is written once per processed event, whether or not a notification went out.
type Entry struct {
	Ts       time.Time
	Message  string
	Notified bool
}

type Recorder interface {
	Append(entry Entry) error
	// Recent returns at most n entries, newest first. n <= 0 returns everything.
	Recent(n int) ([]Entry, error)
	Close() error
}
