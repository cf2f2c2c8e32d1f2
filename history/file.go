package history

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ipastusi/dhcpreact/state"
)

//go:embed schema.json
var rawSchema []byte

type entryJson struct {
	Message  string `json:"message"`
	Notified bool   `json:"notified"`
}

// UnmarshalJSON also accepts the older plain string form "<message>, Notified: True".
func (e *entryJson) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		const sep = ", Notified: "
		i := strings.LastIndex(text, sep)
		if i == -1 {
			*e = entryJson{Message: text}
			return nil
		}
		*e = entryJson{Message: text[:i], Notified: strings.EqualFold(text[i+len(sep):], "true")}
		return nil
	}

	type plain entryJson
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = entryJson(p)
	return nil
}

// FileRecorder keeps the history as one JSON object keyed by timestamp.
type FileRecorder struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewFileRecorder trims the oldest entries beyond maxEntries on append; 0 keeps everything.
func NewFileRecorder(path string, maxEntries int) *FileRecorder {
	return &FileRecorder{
		path:       path,
		maxEntries: maxEntries,
	}
}

func (r *FileRecorder) Append(entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	ts := entry.Ts
	key := ts.Format(KeyLayout)
	for {
		if _, exists := entries[key]; !exists {
			break
		}
		ts = ts.Add(time.Millisecond)
		key = ts.Format(KeyLayout)
	}
	entries[key] = entryJson{Message: entry.Message, Notified: entry.Notified}

	if r.maxEntries > 0 && len(entries) > r.maxEntries {
		keys := sortedKeys(entries)
		for _, old := range keys[:len(keys)-r.maxEntries] {
			delete(entries, old)
		}
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	return state.WriteFileAtomic(r.path, data)
}

func (r *FileRecorder) Recent(n int) ([]Entry, error) {
	r.mu.Lock()
	entries, err := r.load()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	keys := sortedKeys(entries)
	slices.Reverse(keys)
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}

	recent := make([]Entry, 0, len(keys))
	for _, key := range keys {
		ts, err := time.ParseInLocation(KeyLayout, key, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid history key %q: %w", key, err)
		}
		e := entries[key]
		recent = append(recent, Entry{Ts: ts, Message: e.Message, Notified: e.Notified})
	}
	return recent, nil
}

func (r *FileRecorder) Close() error {
	return nil
}

func (r *FileRecorder) load() (map[string]entryJson, error) {
	entries := map[string]entryJson{}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	} else if err != nil {
		return nil, err
	}
	if errs := state.Validate(rawSchema, data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid history file %v: %w", r.path, errors.Join(errs...))
	}
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func sortedKeys(entries map[string]entryJson) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
