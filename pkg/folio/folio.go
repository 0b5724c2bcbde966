// Package folio opens the persistence backend selected by a Config. The
// viewer opens one Store at startup and uses it for the process lifetime.
//
// Example:
//
//	store, err := folio.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: dataDir,
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
package folio

import (
	"fmt"

	"github.com/mesh-intelligence/folio/internal/null"
	"github.com/mesh-intelligence/folio/internal/plain"
	"github.com/mesh-intelligence/folio/internal/sqlite"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// Version is the folio release version.
const Version = "v0.3.0"

// Open validates cfg and opens the backend it names. On error no Store is
// returned.
func Open(cfg types.Config) (types.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case types.BackendNull:
		return null.New(), nil
	case types.BackendPlain:
		b, err := plain.Open(cfg.DataDir, cfg.GetSettleDelay())
		if err != nil {
			return nil, fmt.Errorf("opening plain store: %w", err)
		}
		return b, nil
	case types.BackendSQLite:
		b, err := sqlite.Open(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return b, nil
	default:
		return nil, types.ErrBackendUnknown
	}
}
