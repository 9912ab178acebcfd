package data

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// Link connects two records by index.
type Link struct {
	Source, Target int
}

// MarshalJSON encodes the link as [source, target].
func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{l.Source, l.Target})
}

// UnmarshalJSON decodes a [source, target] pair.
func (l *Link) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("link: want 2 endpoints, got %d", len(pair))
	}
	l.Source, l.Target = pair[0], pair[1]
	return nil
}

// RandomLinks returns count links between uniformly chosen records in [0, n).
// The same seed always yields the same links. It returns nil when n is zero.
func RandomLinks(n, count int, seed int64) []Link {
	if n <= 0 || count <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	links := make([]Link, count)
	for i := range links {
		links[i] = Link{Source: rng.Intn(n), Target: rng.Intn(n)}
	}
	return links
}

// Indices returns [0, 1, ..., n-1], the node list sent alongside links.
func Indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
