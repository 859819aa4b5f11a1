// Package tabular parses OMS export files into normalized tables.
//
// Export headers drift between OMS versions, so every logical column is
// declared with a list of accepted header variants. Variants are either
// exact (the header must equal the variant after trimming) or substring
// matches. Exact variants exist to keep lookalike headers apart: 总资产
// must never be satisfied by 昨日总资产.
package tabular

import (
	"fmt"
	"strings"
)

// Variant is one accepted source header spelling for a column.
type Variant struct {
	Text  string
	Exact bool
}

// Column declares one logical column of a schema.
type Column struct {
	Canonical      string
	Variants       []Variant
	Required       bool
	Numeric        bool
	Key            bool // the row identity column (unit name, symbol, ...)
	MustBePositive bool // rows with a non-positive value here are dropped
}

// Schema is an ordered set of column declarations for one export family.
type Schema struct {
	Name    string
	Columns []Column
}

// KeyColumn returns the schema's key column canonical name.
func (s Schema) KeyColumn() string {
	for _, c := range s.Columns {
		if c.Key {
			return c.Canonical
		}
	}
	return ""
}

// SchemaError reports that a required column could not be mapped to any
// header of the source file. It is scoped to a single file so a malformed
// export never aborts a whole batch.
type SchemaError struct {
	File   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: no header matches required column %q", e.File, e.Column)
}

// matchHeaders maps canonical column names to source header indexes.
// First matching variant wins and each source header is consumed at most
// once, so two columns can never claim the same header.
func matchHeaders(schema Schema, headers []string) (map[string]int, *SchemaError) {
	trimmed := make([]string, len(headers))
	for i, h := range headers {
		trimmed[i] = strings.TrimSpace(h)
	}

	used := make([]bool, len(headers))
	mapping := make(map[string]int, len(schema.Columns))

	for _, col := range schema.Columns {
		idx := -1
	variants:
		for _, v := range col.Variants {
			for i, h := range trimmed {
				if used[i] || h == "" {
					continue
				}
				if v.Exact {
					if h == v.Text {
						idx = i
						break variants
					}
				} else if strings.Contains(h, v.Text) {
					idx = i
					break variants
				}
			}
		}

		if idx == -1 {
			if col.Required {
				return nil, &SchemaError{Column: col.Canonical}
			}
			continue
		}

		used[idx] = true
		mapping[col.Canonical] = idx
	}

	return mapping, nil
}
