// Package dataset reads points from and writes centroids to comma separated text.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed is returned for rows that cannot be parsed into a point.
var ErrMalformed = errors.New("malformed dataset")

// Read parses one point per row. Blank lines are skipped and every row must have the same width.
func Read(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var rows [][]float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: line %d: expected %d columns, got %d", ErrMalformed, perr.StartLine, len(rows[0]), len(record))
			}
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				line, col := cr.FieldPos(i)
				return nil, fmt.Errorf("%w: line %d column %d: %w", ErrMalformed, line, col, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Load reads the points stored in the file at path.
func Load(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Write prints one row per line, components joined by commas with fixed precision.
func Write(w io.Writer, rows [][]float64, precision int) error {
	var sb strings.Builder
	for _, row := range rows {
		sb.Reset()
		for i, v := range row {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatFloat(v, 'f', precision, 64))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
