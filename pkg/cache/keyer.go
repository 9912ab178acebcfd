package cache

import "fmt"

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a computed network layout. graphHash is a hash
	// of the node count and link list.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// RecordsKey identifies a dataset loaded from a named source.
	RecordsKey(source, name string) string
}

// LayoutKeyOpts holds the layout settings that change the result.
type LayoutKeyOpts struct {
	Engine     string `json:"engine"`
	Seed       int64  `json:"seed"`
	Iterations int    `json:"iterations,omitempty"`
}

// DefaultKeyer produces "layout:<sha256>" and "records:<source>:<name>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) RecordsKey(source, name string) string {
	return fmt.Sprintf("records:%s:%s", source, name)
}
