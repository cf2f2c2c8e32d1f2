package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// StampFunc extracts the creation time encoded in a file name.
type StampFunc func(name string) (time.Time, bool)

// Janitor removes files matching a glob once the time encoded in their name is older than maxAge.
type Janitor struct {
	logger  *slog.Logger
	pattern string
	stamp   StampFunc
	maxAge  time.Duration
	every   time.Duration
	now     func() time.Time
}

func NewJanitor(logger *slog.Logger, pattern string, stamp StampFunc, maxAge time.Duration, every time.Duration) (Janitor, error) {
	if _, err := filepath.Glob(pattern); err != nil {
		return Janitor{}, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Janitor{
		logger:  logger,
		pattern: pattern,
		stamp:   stamp,
		maxAge:  maxAge,
		every:   every,
		now:     time.Now,
	}, nil
}

var (
	archiveNameRe      = regexp.MustCompile(`syslog-(?P<date>[0-9]{4}-[0-9]{2}-[0-9]{2})\.log$`)
	notificationNameRe = regexp.MustCompile(`dhcpreact-(?P<timestamp>[0-9]{13})-[0-9]{3}-[0-9a-f]+\.json$`)
)

// NewArchiveJanitor purges daily archive files older than purgeAfterDays, checking hourly.
func NewArchiveJanitor(logger *slog.Logger, dir string, purgeAfterDays uint) (Janitor, error) {
	pattern := filepath.Join(dir, "syslog-????-??-??.log")
	maxAge := time.Duration(purgeAfterDays) * 24 * time.Hour
	return NewJanitor(logger, pattern, ArchiveStamp, maxAge, time.Hour)
}

// NewNotificationJanitor purges notification files older than delaySec, checking every delaySec.
func NewNotificationJanitor(logger *slog.Logger, dir string, delaySec uint) (Janitor, error) {
	pattern := filepath.Join(dir, "dhcpreact-?????????????-???-*.json")
	delay := time.Duration(delaySec) * time.Second
	return NewJanitor(logger, pattern, NotificationStamp, delay, delay)
}

func ArchiveStamp(name string) (time.Time, bool) {
	matches := archiveNameRe.FindStringSubmatch(name)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	// the file is complete at the end of its day
	day, err := time.ParseInLocation(time.DateOnly, matches[archiveNameRe.SubexpIndex("date")], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day.AddDate(0, 0, 1), true
}

func NotificationStamp(name string) (time.Time, bool) {
	matches := notificationNameRe.FindStringSubmatch(name)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(matches[notificationNameRe.SubexpIndex("timestamp")], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Start runs Cleanup every period until ctx is done.
func (j Janitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.Cleanup()
			}
		}
	}()
}

// Cleanup returns the number of files removed.
func (j Janitor) Cleanup() int {
	files, _ := filepath.Glob(j.pattern)
	boundary := j.now().Add(-j.maxAge)
	removed := 0
	for _, file := range files {
		ts, ok := j.stamp(filepath.Base(file))
		if !ok {
			// file globbed but not matched by regex
			continue
		}
		if ts.After(boundary) {
			// file is too fresh
			continue
		}
		if err := os.Remove(file); err != nil {
			j.logger.Error("unable to remove file", slog.String("file", file), slog.Any("error", err))
			continue
		}
		j.logger.Info("purged file", slog.String("file", file))
		removed++
	}
	return removed
}
