package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archiver appends every raw syslog line to a file per calendar day.
type Archiver struct {
	dir              string
	prependTimestamp bool
	appendNewLine    bool
}

func NewArchiver(dir string, prependTimestamp bool, appendNewLine bool) Archiver {
	return Archiver{
		dir:              dir,
		prependTimestamp: prependTimestamp,
		appendNewLine:    appendNewLine,
	}
}

func (a Archiver) FileName(now time.Time) string {
	return filepath.Join(a.dir, fmt.Sprintf("syslog-%v.log", now.Format(time.DateOnly)))
}

func (a Archiver) Write(line string, now time.Time) error {
	entry := line
	if a.prependTimestamp {
		entry = now.Format(time.TimeOnly) + "::: " + entry
	}
	if a.appendNewLine {
		entry += "\n"
	}

	f, err := os.OpenFile(a.FileName(now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = f.WriteString(entry)
	if err1 := f.Close(); err1 != nil && err == nil {
		err = err1
	}
	return err
}
