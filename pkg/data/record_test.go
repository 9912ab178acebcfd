package data

import (
	"math"
	"testing"

	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
)

func TestField(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		want    float64
		wantErr bool
	}{
		{"float", Record{"v": 2.5}, 2.5, false},
		{"int", Record{"v": 3}, 3, false},
		{"int64", Record{"v": int64(4)}, 4, false},
		{"numeric string", Record{"v": "7.5"}, 7.5, false},
		{"missing", Record{"w": 1.0}, 0, true},
		{"text", Record{"v": "abc"}, 0, true},
		{"nil", Record{"v": nil}, 0, true},
		{"nan", Record{"v": math.NaN()}, 0, true},
		{"inf", Record{"v": math.Inf(1)}, 0, true},
	}
	acc := Field("v")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := acc(tt.rec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Field() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidAccessor) {
				t.Errorf("Field() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidAccessor)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Field() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMap(t *testing.T) {
	records := []Record{{"x": 1.0}, {"x": 2.0}}
	got, err := Map(records, Field("x"))
	if err != nil {
		t.Fatalf("Map() error: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Map() = %v", got)
	}

	_, err = Map(records, func(Record) (float64, error) { return math.NaN(), nil })
	if !errors.Is(err, errors.ErrCodeInvalidAccessor) {
		t.Errorf("Map() with NaN accessor error = %v, want INVALID_ACCESSOR", err)
	}

	_, err = Map([]Record{{"x": 1.0}, {}}, Field("x"))
	if err == nil {
		t.Error("Map() should reject a record missing the field")
	}
}

func TestFromPoints(t *testing.T) {
	recs := FromPoints([]geom.Point{{X: 1, Y: 2}, {X: -1, Y: 0.5}})
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[1]["x"] != -1.0 || recs[1]["y"] != 0.5 {
		t.Errorf("record 1 = %v", recs[1])
	}
}

func TestColumns(t *testing.T) {
	cols := Columns([]Record{{"b": 1, "a": 2}, {"c": 3}})
	want := []string{"a", "b", "c"}
	if len(cols) != len(want) {
		t.Fatalf("Columns() = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("Columns()[%d] = %q, want %q", i, cols[i], want[i])
		}
	}
}
