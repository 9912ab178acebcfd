package data

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
)

// Record is one application data item.
type Record map[string]any

// Accessor maps a record to a quantitative value.
type Accessor func(Record) (float64, error)

// Field returns an accessor reading the named numeric field.
// Numeric strings are accepted so records that skipped auto-typing still plot.
func Field(name string) Accessor {
	return func(r Record) (float64, error) {
		v, ok := r[name]
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidAccessor, "field %q missing", name)
		}
		f, ok := toFloat(v)
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidAccessor, "field %q is not numeric: %v", name, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.New(errors.ErrCodeInvalidAccessor, "field %q is not finite: %v", name, f)
		}
		return f, nil
	}
}

// Map applies acc to every record. The error names the first failing index.
func Map(records []Record, acc Accessor) ([]float64, error) {
	out := make([]float64, len(records))
	for i, r := range records {
		v, err := acc(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidAccessor, err, "record %d", i)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New(errors.ErrCodeInvalidAccessor, "record %d: accessor returned %v", i, v)
		}
		out[i] = v
	}
	return out, nil
}

// FromPoints converts layout positions to records with "x" and "y" fields,
// keeping index alignment with the input.
func FromPoints(pts []geom.Point) []Record {
	out := make([]Record, len(pts))
	for i, p := range pts {
		out[i] = Record{"x": p.X, "y": p.Y}
	}
	return out
}

// Columns returns the sorted union of field names across records.
func Columns(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	slices.SortFunc(cols, cmp.Compare[string])
	return cols
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
