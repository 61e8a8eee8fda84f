package universe

import (
	"context"
	"fmt"
	"strings"
)

// StaticSource serves a fixed symbol list from configuration. Useful for
// small custom universes and for tests.
type StaticSource struct {
	symbols []string
}

// NewStaticSource creates a source over the given symbols.
func NewStaticSource(symbols []string) *StaticSource {
	return &StaticSource{symbols: symbols}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) List(_ context.Context) ([]Constituent, error) {
	if len(s.symbols) == 0 {
		return nil, fmt.Errorf("%w: static source has no symbols", ErrUnavailable)
	}
	members := make([]Constituent, 0, len(s.symbols))
	seen := make(map[string]bool)
	for _, sym := range s.symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		members = append(members, Constituent{Symbol: sym, Name: sym})
	}
	return members, nil
}
