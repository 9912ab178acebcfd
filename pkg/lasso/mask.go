package lasso

// Mask holds one selection flag per marker index.
type Mask []bool

// Any reports whether at least one marker is selected.
func (m Mask) Any() bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

// Count returns the number of selected markers.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Indices returns the selected marker indices in ascending order.
func (m Mask) Indices() []int {
	var out []int
	for i, v := range m {
		if v {
			out = append(out, i)
		}
	}
	return out
}

func (m Mask) Clone() Mask {
	out := make(Mask, len(m))
	copy(out, m)
	return out
}
