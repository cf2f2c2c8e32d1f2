package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table maps MAC addresses to human-readable device names. It is read-only once loaded.
type Table struct {
	names map[string]string
}

func NewTable(names map[string]string) Table {
	table := Table{names: map[string]string{}}
	for mac, name := range names {
		if name == "" {
			continue
		}
		table.names[strings.ToUpper(mac)] = name
	}
	return table
}

// Name is case-insensitive on mac.
func (t Table) Name(mac string) (string, bool) {
	name, ok := t.names[strings.ToUpper(mac)]
	return name, ok
}

func (t Table) Len() int {
	return len(t.names)
}

// Load reads a CSV or XLSX table, chosen by file extension. A missing file yields an empty table.
func Load(path string, sheet string, macColumn string, nameColumn string) (Table, error) {
	if path == "" {
		return NewTable(nil), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return NewTable(nil), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FromXlsx(path, sheet, macColumn, nameColumn)
	default:
		f, err := os.Open(path)
		if err != nil {
			return Table{}, err
		}
		defer f.Close()
		return FromCsv(f, macColumn, nameColumn)
	}
}

func FromCsv(r io.Reader, macColumn string, nameColumn string) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, err
	}
	return fromRows(rows, macColumn, nameColumn)
}

// FromXlsx reads the named sheet, or the first one when sheet is empty.
func FromXlsx(path string, sheet string, macColumn string, nameColumn string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return NewTable(nil), nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, err
	}
	return fromRows(rows, macColumn, nameColumn)
}

// fromRows treats the first row as the header naming the columns.
func fromRows(rows [][]string, macColumn string, nameColumn string) (Table, error) {
	if len(rows) == 0 {
		return NewTable(nil), nil
	}

	header := rows[0]
	macIdx := slices.IndexFunc(header, func(h string) bool { return strings.TrimSpace(h) == macColumn })
	nameIdx := slices.IndexFunc(header, func(h string) bool { return strings.TrimSpace(h) == nameColumn })
	if macIdx == -1 {
		return Table{}, fmt.Errorf("column %q not found in lookup table header", macColumn)
	}
	if nameIdx == -1 {
		return Table{}, fmt.Errorf("column %q not found in lookup table header", nameColumn)
	}

	names := map[string]string{}
	for _, row := range rows[1:] {
		if macIdx >= len(row) || nameIdx >= len(row) {
			continue
		}
		mac := strings.TrimSpace(row[macIdx])
		name := strings.TrimSpace(row[nameIdx])
		// a blank name counts as not listed
		if mac == "" || name == "" {
			continue
		}
		names[mac] = name
	}
	return NewTable(names), nil
}
