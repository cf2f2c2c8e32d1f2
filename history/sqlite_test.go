package history_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ipastusi/dhcpreact/history"
)

func Test_SqliteRecorder(t *testing.T) {
	t.Parallel()

	recorder, err := history.NewSqliteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	defer recorder.Close()

	base := time.Date(2025, 6, 14, 10, 0, 0, 0, time.Local)
	appended := []history.Entry{
		{Ts: base, Message: "first", Notified: true},
		{Ts: base, Message: "same time", Notified: false},
		{Ts: base.Add(1500 * time.Millisecond), Message: "latest", Notified: true},
	}
	for _, e := range appended {
		if err = recorder.Append(e); err != nil {
			t.Fatal("unexpected error:", err)
		}
	}

	recent, err := recorder.Recent(2)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	expected := []history.Entry{appended[2], appended[1]}
	if diff := cmp.Diff(expected, recent); diff != "" {
		t.Fatalf("unexpected recent entries: %v", diff)
	}

	all, err := recorder.Recent(-1)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(all) != 3 {
		t.Fatal("unexpected number of entries:", len(all))
	}
}
