package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSender writes each notification to its own JSON file for other tools to pick up.
type FileSender struct {
	dir string
}

func NewFileSender(dir string) FileSender {
	return FileSender{dir: dir}
}

func (s FileSender) Name() string { return "file" }

// FileName is unique per device, type and millisecond.
func (s FileSender) FileName(n Notification) string {
	return filepath.Join(s.dir, fmt.Sprintf("dhcpreact-%v-%v-%v.json", n.Ts, int(n.Type), macSuffix(n.Mac)))
}

// macSuffix keeps only the hex digits of mac, so router supplied text cannot leave the directory.
func macSuffix(mac string) string {
	suffix := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
			return r
		case r >= 'A' && r <= 'F':
			return r - 'A' + 'a'
		}
		return -1
	}, mac)
	if suffix == "" {
		return "0"
	}
	return suffix
}

func (s FileSender) Send(_ context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return syncWriteToFile(s.FileName(n), data)
}

func syncWriteToFile(filename string, data []byte) error {
	// put extra effort into making sure the notifications are delivered without delay
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|os.O_SYNC, 0644)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	if err1 := f.Close(); err1 != nil && err == nil {
		err = err1
	}
	return err
}
