package data

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/lassoview/pkg/errors"
)

// Source resolves a dataset name to records.
type Source interface {
	Load(ctx context.Context, name string) ([]Record, error)
}

// DirSource loads datasets from files in a directory. The dataset name is the
// file name including its extension, e.g. "mtcars.csv".
type DirSource struct {
	Dir string
}

// Load reads Dir/name after validating that name cannot escape Dir.
func (s DirSource) Load(ctx context.Context, name string) ([]Record, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "dataset %q not found", name)
	}
	return Load(path)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, name string) ([]Record, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context, name string) ([]Record, error) {
	return f(ctx, name)
}

var (
	_ Source = DirSource{}
	_ Source = SourceFunc(nil)
)
