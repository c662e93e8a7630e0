package pipeline

import (
	"fmt"
	"sort"

	"fittrack-ml/internal/dataset"
	"fittrack-ml/internal/schema"

	"github.com/rs/zerolog/log"
)

// PreparedMatrix is an aligned feature matrix and target vector with all
// categorical fields expanded and no missing values remaining.
type PreparedMatrix struct {
	// Columns is the expanded column order: numeric fields keep their
	// schema name, categorical fields become one "<field>_<level>"
	// indicator per level observed in the input.
	Columns []string
	// Levels records, per categorical field, the sorted closed set of
	// category labels seen during preparation. It is persisted in the
	// artifact so inference expands vectors identically.
	Levels map[string][]string
	X      [][]float64
	Y      []float64
}

// RowFilter decides whether a raw dataset row takes part in training.
type RowFilter func(row map[string]string) bool

// Prepare converts a raw dataset into a PreparedMatrix for the given
// schema and target column. Missing numeric values are imputed with the
// column median computed over the whole (filtered) input dataset, not the
// later training partition. That mirrors the reference behaviour and is a
// mild information leak across the train/test split; kept deliberately
// for metric parity.
func Prepare(ds *dataset.Dataset, s schema.FeatureSchema, target string, filter RowFilter) (*PreparedMatrix, error) {
	for _, f := range s.Fields {
		if !ds.HasColumn(f.Name) {
			return nil, fmt.Errorf("%w: feature column %q not in dataset", ErrSchemaMismatch, f.Name)
		}
	}
	if !ds.HasColumn(target) {
		return nil, fmt.Errorf("%w: %q", ErrMissingTarget, target)
	}

	rows := ds.Rows
	if filter != nil {
		kept := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			if filter(row) {
				kept = append(kept, row)
			}
		}
		log.Debug().Int("input", len(rows)).Int("kept", len(kept)).Msg("row filter applied")
		rows = kept
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows retained after filtering", ErrInsufficientData)
	}

	pm := &PreparedMatrix{Levels: make(map[string][]string)}

	// Column-major assembly: impute numerics, expand categoricals, both in
	// schema order so the expanded layout is stable.
	columns := make([][]float64, 0, s.Len())
	for _, f := range s.Fields {
		switch f.Kind {
		case schema.Categorical:
			levels := distinctLevels(rows, f.Name)
			pm.Levels[f.Name] = levels
			for _, level := range levels {
				col := make([]float64, len(rows))
				for i, row := range rows {
					if row[f.Name] == level {
						col[i] = 1
					}
				}
				columns = append(columns, col)
				pm.Columns = append(pm.Columns, f.Name+"_"+level)
			}
		default:
			col, err := imputedColumn(rows, f.Name)
			if err != nil {
				return nil, err
			}
			columns = append(columns, col)
			pm.Columns = append(pm.Columns, f.Name)
		}
	}

	pm.X = make([][]float64, len(rows))
	for i := range rows {
		vec := make([]float64, len(columns))
		for j, col := range columns {
			vec[j] = col[i]
		}
		pm.X[i] = vec
	}

	pm.Y = make([]float64, len(rows))
	for i, row := range rows {
		v, ok := dataset.ParseFloat(row[target])
		if !ok {
			return nil, fmt.Errorf("target column %q row %d is not numeric: %q", target, i, row[target])
		}
		pm.Y[i] = v
	}

	return pm, nil
}

// imputedColumn parses one numeric column, replacing missing cells with
// the column median over the parseable cells.
func imputedColumn(rows []map[string]string, name string) ([]float64, error) {
	col := make([]float64, len(rows))
	missing := make([]bool, len(rows))
	present := make([]float64, 0, len(rows))

	for i, row := range rows {
		v, ok := dataset.ParseFloat(row[name])
		if ok {
			col[i] = v
			present = append(present, v)
		} else {
			missing[i] = true
		}
	}

	if len(present) == 0 {
		return nil, fmt.Errorf("%w: column %q has no usable values", ErrInsufficientData, name)
	}

	med := median(present)
	for i := range col {
		if missing[i] {
			col[i] = med
		}
	}
	return col, nil
}

func distinctLevels(rows []map[string]string, name string) []string {
	seen := make(map[string]struct{})
	var levels []string
	for _, row := range rows {
		label := row[name]
		if label == "" {
			continue
		}
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			levels = append(levels, label)
		}
	}
	sort.Strings(levels)
	return levels
}

func median(values []float64) float64 {
	v := append([]float64(nil), values...)
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}
