package data

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadCSV decodes CSV with a header row into records, auto-typing each cell.
//
// A cell is converted to float64 when it parses as one after trimming
// surrounding whitespace; an empty cell becomes nil; everything else is kept
// as the trimmed string. Rows shorter than the header leave the missing
// fields unset. ReadCSV does not close r.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := make(Record, len(header))
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			rec[header[i]] = autoType(cell)
		}
		records = append(records, rec)
	}
	return records, nil
}

func autoType(cell string) any {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// ReadJSON decodes an array of JSON objects into records.
// Numbers decode as float64, matching CSV auto-typing.
func ReadJSON(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return records, nil
}

// WriteJSON encodes records as a JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	return json.NewEncoder(w).Encode(records)
}

// Load reads a record file, choosing the decoder by extension:
// ".json" uses [ReadJSON], anything else [ReadCSV].
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	if strings.EqualFold(filepath.Ext(path), ".json") {
		records, err = ReadJSON(f)
	} else {
		records, err = ReadCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// LoadCSV reads a CSV record file regardless of its extension.
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
