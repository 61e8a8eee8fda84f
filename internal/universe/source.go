// Package universe resolves the set of symbols a scan covers.
package universe

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the universe could not be resolved. This is fatal
// for a run: a partial universe would silently produce an incomplete report.
var ErrUnavailable = errors.New("symbol universe unavailable")

// Constituent is one member of the scanned universe.
type Constituent struct {
	Symbol string
	Name   string
}

// Source lists the current universe, ordered and deduplicated.
type Source interface {
	List(ctx context.Context) ([]Constituent, error)
	Name() string
}
