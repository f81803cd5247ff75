package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// parseCSV reads catalog rows by header name, so column order does not
// matter. Short or malformed rows are skipped rather than failing the job.
func parseCSV(r io.Reader) ([]rawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty catalog file")
		}
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	columns := headerIndex(header)

	var records []rawRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read catalog row: %w", err)
		}
		records = append(records, recordFromRow(row, columns))
	}
	return records, nil
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func recordFromRow(row []string, columns map[string]int) rawRecord {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return rawRecord{
		ID:          field("id"),
		DisplayName: field("productdisplayname"),
		Description: field("description"),
		ArticleType: field("articletype"),
		BaseColour:  field("basecolour"),
		Gender:      field("gender"),
		Usage:       field("usage"),
		Season:      field("season"),
		Link:        field("link"),
	}
}
