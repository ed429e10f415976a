// package repositories provides persistence layer implementations for the session and dashboard snapshots.
package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// NewTokenStore returns the [models.TokenStore] selected by driver.
//
// The sqlite driver stores tokens in db; the file driver stores them at path.
func NewTokenStore(driver string, db *sql.DB, path string) (models.TokenStore, error) {
	switch driver {
	case shared.StorageSQLite, "":
		if db == nil {
			return nil, fmt.Errorf("%w: sqlite token store requires a database", shared.ErrMissingConfig)
		}
		return NewTokenRepository(db), nil
	case shared.StorageFile:
		if path == "" {
			return nil, fmt.Errorf("%w: storage.token_file is required for the file driver", shared.ErrMissingConfig)
		}
		return NewTokenFile(path), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, driver)
	}
}
