package bus2sqlite

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func newFeedReader(r io.Reader) *csv.Reader {
	inputCSV := csv.NewReader(r)
	inputCSV.FieldsPerRecord = -1 // Arity is checked per record type
	inputCSV.LazyQuotes = true    // Stop names contain stray quotes
	return inputCSV
}

// countDataRows returns the number of records after the header.
func countDataRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	inputCSV := newFeedReader(f)
	inputCSV.ReuseRecord = true
	count := -1
	for {
		_, err := inputCSV.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return 0, csvErr(path, err)
		}
		count++
	}
	if count < 0 {
		return 0, malformed(filepath.Base(path), 1, "missing header row")
	}
	return count, nil
}

// eachDataRow calls fn for every record after the header with its 1-based
// starting line number.
func eachDataRow(path string, fn func(line int, row []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	inputCSV := newFeedReader(f)

	// Header
	if _, err := inputCSV.Read(); errors.Is(err, io.EOF) {
		return malformed(filepath.Base(path), 1, "missing header row")
	} else if err != nil {
		return csvErr(path, err)
	}

	// Rows
	for {
		row, err := inputCSV.Read()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return csvErr(path, err)
		}
		line, _ := inputCSV.FieldPos(0)
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func csvErr(path string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return malformed(filepath.Base(path), parseErr.StartLine, "%v", parseErr.Err)
	}
	return fmt.Errorf("read %s: %w", path, err)
}
