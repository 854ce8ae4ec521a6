package settings

import (
	"context"
	"fmt"
)

// OpenStore returns the store for backend ("yaml", "sqlite" or "memory")
// and a function that releases it.
func OpenStore(ctx context.Context, backend, path string) (Store, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case "yaml":
		return NewFileStore(path), noop, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "memory":
		return NewMemoryStore(nil), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown settings backend %q", backend)
}
