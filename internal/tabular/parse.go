package tabular

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one normalized data row keyed by canonical column names.
type Row struct {
	Key  string             // value of the schema's key column
	Num  map[string]float64 // numeric columns
	Text map[string]string  // non-numeric, non-key columns
}

// Table is the normalized result of parsing one export file.
type Table struct {
	Path string
	Rows []Row
}

// Parse reads the export file at path and normalizes it against the schema.
//
// Row hygiene, in order:
//   - rows with an empty key cell are dropped
//   - numeric cells are coerced (thousands separators and % stripped);
//     a required numeric cell that will not coerce drops the row
//   - rows non-positive in a MustBePositive column are dropped
//
// An unmappable required column returns a *SchemaError; use errors.As to
// detect it and keep processing other files.
func Parse(path string, schema Schema) (*Table, error) {
	records, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file: %s", path)
	}

	mapping, serr := matchHeaders(schema, records[0])
	if serr != nil {
		serr.File = path
		return nil, serr
	}

	keyCol := schema.KeyColumn()
	table := &Table{Path: path}

rows:
	for _, rec := range records[1:] {
		row := Row{
			Num:  make(map[string]float64),
			Text: make(map[string]string),
		}

		for _, col := range schema.Columns {
			idx, mapped := mapping[col.Canonical]
			if !mapped {
				continue
			}

			var cell string
			if idx < len(rec) {
				cell = strings.TrimSpace(rec[idx])
			}

			switch {
			case col.Key:
				if cell == "" {
					continue rows
				}
				row.Key = cell

			case col.Numeric:
				val, ok := coerceNumber(cell)
				if !ok {
					if col.Required {
						continue rows
					}
					val = 0
				}
				if col.MustBePositive && val <= 0 {
					continue rows
				}
				row.Num[col.Canonical] = val

			default:
				row.Text[col.Canonical] = cell
			}
		}

		if keyCol != "" && row.Key == "" {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// coerceNumber parses a numeric export cell. Exports write amounts with
// thousands separators and occasionally a percent sign.
func coerceNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	s = strings.NewReplacer(",", "", "，", "", "%", "", " ", "").Replace(s)
	if s == "" || s == "-" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
