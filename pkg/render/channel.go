package render

import (
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
)

// Kind identifies which variant a [Channel] holds.
type Kind uint8

const (
	KindConstant Kind = iota + 1
	KindArray
	KindMapper
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindArray:
		return "array"
	case KindMapper:
		return "mapper"
	default:
		return "unset"
	}
}

// Channel assigns a value of type V to every record. The zero Channel is
// unset and fails to resolve.
type Channel[V any] struct {
	kind     Kind
	constant V
	values   []V
	mapper   func(data.Record) V
}

// Constant applies v to every record.
func Constant[V any](v V) Channel[V] {
	return Channel[V]{kind: KindConstant, constant: v}
}

// Array assigns vs[i] to record i. The slice is copied.
func Array[V any](vs []V) Channel[V] {
	return Channel[V]{kind: KindArray, values: append([]V(nil), vs...)}
}

// Mapper derives each record's value from the record itself.
func Mapper[V any](fn func(data.Record) V) Channel[V] {
	return Channel[V]{kind: KindMapper, mapper: fn}
}

func (c Channel[V]) Kind() Kind { return c.kind }

// Resolve expands the channel to one value per record.
func (c Channel[V]) Resolve(records []data.Record) ([]V, error) {
	out := make([]V, len(records))
	switch c.kind {
	case KindConstant:
		for i := range out {
			out[i] = c.constant
		}
	case KindArray:
		if len(c.values) != len(records) {
			return nil, errors.New(errors.ErrCodeArrayLength,
				"array has %d values for %d records", len(c.values), len(records))
		}
		copy(out, c.values)
	case KindMapper:
		if c.mapper == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "mapper channel has no function")
		}
		for i, r := range records {
			out[i] = c.mapper(r)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "channel is unset")
	}
	return out, nil
}

// ColorAssignment assigns a fill color to every marker.
type ColorAssignment = Channel[Color]
