// Package dataset loads raw tabular training data. A dataset is a plain
// table of string cells keyed by column name; typing (numeric, boolean,
// categorical) happens later during preparation against a feature schema.
package dataset

import (
	"math"
	"strconv"
)

// Dataset is an in-memory table with a stable column order.
type Dataset struct {
	Columns []string
	Rows    []map[string]string
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether the named column exists in the table.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ParseFloat interprets a raw cell as a numeric value. Booleans map to
// 1/0. The second return is false when the cell is empty or not a finite
// number, which preparation treats as a missing value. Literal "NaN" and
// "Inf" tokens parse, but must never reach a feature matrix.
func ParseFloat(cell string) (float64, bool) {
	if cell == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	if b, err := strconv.ParseBool(cell); err == nil {
		if b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// ParseBool interprets a raw cell as a boolean flag. Numeric cells are
// truthy when non-zero. Empty or unparsable cells are false.
func ParseBool(cell string) bool {
	if b, err := strconv.ParseBool(cell); err == nil {
		return b
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v != 0 && !math.IsNaN(v)
	}
	return false
}
